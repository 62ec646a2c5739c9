package docs

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// HTMLConverter turns rendered Markdown into an HTML fragment. Heading IDs
// follow AnchorSlug so single-page anchors resolve. Raw HTML is not passed
// through.
type HTMLConverter struct {
	md goldmark.Markdown
}

// NewHTMLConverter creates a converter with the GFM extensions enabled
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Convert renders src to HTML
func (c *HTMLConverter) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(newAnchorIDs()))
	if err := c.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// anchorIDs generates heading IDs with AnchorSlug, suffixing repeats
type anchorIDs struct {
	seen map[string]int
}

func newAnchorIDs() *anchorIDs {
	return &anchorIDs{seen: make(map[string]int)}
}

func (a *anchorIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	id := AnchorSlug(string(value))
	if id == "" {
		id = "section"
	}
	n := a.seen[id]
	a.seen[id]++
	if n > 0 {
		id = fmt.Sprintf("%s-%d", id, n)
	}
	return []byte(id)
}

func (a *anchorIDs) Put(value []byte) {
	a.seen[string(value)]++
}
