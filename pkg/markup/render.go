package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// listItemPrefix matches rendered unordered and ordered list items
var listItemPrefix = regexp.MustCompile(`^(\* |\d+\. )`)

// Render produces the text for n at the given indentation together with the
// distinct link targets it references.
//
// When inlineLinks is set, links render as text(url) and are not collected.
// Otherwise they render as text[ref] and their targets are returned for
// Finalize to define.
func Render(n Node, indent int, inlineLinks bool) (string, Links) {
	switch v := n.(type) {
	case Element:
		return renderElement(v, indent, inlineLinks)
	case IndentedCollection:
		return renderIndented(v, indent, inlineLinks)
	case NonIndentedCollection:
		return renderNonIndented(v, indent, inlineLinks)
	}
	return "", nil
}

// Finalize renders n from indentation zero with reference-style links and
// appends one reference definition per distinct target.
func Finalize(n Node) string {
	text, links := Render(n, 0, false)
	if len(links) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, url := range links {
		fmt.Fprintf(&b, "[%s]: %s\n", RefID(url), url)
	}
	return b.String()
}

// FinalizeInline renders n with inline links; there is nothing to define
func FinalizeInline(n Node) string {
	text, _ := Render(n, 0, true)
	return text
}

func renderElement(e Element, indent int, inlineLinks bool) (string, Links) {
	var links Links

	text := e.Text
	if len(e.parts) > 0 {
		pieces := make([]string, 0, len(e.parts))
		for _, p := range e.parts {
			s, l := Render(p, 0, inlineLinks)
			pieces = append(pieces, s)
			links = links.Merge(l)
		}
		text = strings.Join(pieces, " ")
	}

	if url := e.Attrs.Link; url != "" {
		if inlineLinks {
			text += "(" + url + ")"
		} else {
			text += "[" + RefID(url) + "]"
			links = links.Add(url)
		}
	}

	if strings.Contains(text, "\n") {
		text = strings.ReplaceAll(text, "\n", "\n"+tabs(indent+e.Attrs.Indent))
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("\n", e.Attrs.NewlinePrefix))
	b.WriteString(tabs(e.Attrs.Indent))
	b.WriteString(text)
	if e.Type == Block {
		b.WriteString("\n")
	}

	if e.Child != nil {
		s, l := Render(e.Child, indent+1, inlineLinks)
		b.WriteString(s)
		links = links.Merge(l)
	}
	return b.String(), links
}

func renderIndented(c IndentedCollection, indent int, inlineLinks bool) (string, Links) {
	var (
		b      strings.Builder
		links  Links
		prefix = tabs(indent)
	)
	for _, child := range c {
		s, l := Render(child, indent, inlineLinks)
		if b.Len() == 0 || strings.HasSuffix(b.String(), "\n") {
			b.WriteString(prefix)
		}
		b.WriteString(s)
		links = links.Merge(l)
	}
	return b.String(), links
}

func renderNonIndented(c NonIndentedCollection, indent int, inlineLinks bool) (string, Links) {
	var (
		buf      bytes.Buffer
		links    Links
		prevList bool
	)
	for i, child := range c {
		s, l := Render(child, indent, inlineLinks)
		isList := listItemPrefix.MatchString(s)
		if i > 0 && prevList && isList {
			// keep adjacent items in one list
			for bytes.HasSuffix(buf.Bytes(), []byte("\n\n")) {
				buf.Truncate(buf.Len() - 1)
			}
		}
		buf.WriteString(s)
		buf.WriteString("\n")
		links = links.Merge(l)
		prevList = isList
	}
	return buf.String(), links
}

func tabs(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("\t", n)
}
