package docs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLConverter_HeadingIDs(t *testing.T) {
	c := NewHTMLConverter()

	out, err := c.Convert([]byte("# Foo.Bar\n\n## Foo.Bar\n\n## Global Functions\n"))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<h1 id="foo-bar">Foo.Bar</h1>`)
	assert.Contains(t, html, `<h2 id="foo-bar-1">Foo.Bar</h2>`)
	assert.Contains(t, html, `<h2 id="global-functions">Global Functions</h2>`)
}

func TestHTMLConverter_IDsArePerDocument(t *testing.T) {
	c := NewHTMLConverter()

	first, err := c.Convert([]byte("# Foo\n"))
	require.NoError(t, err)
	second, err := c.Convert([]byte("# Foo\n"))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestHTMLConverter_ReferenceLinks(t *testing.T) {
	c := NewHTMLConverter()

	out, err := c.Convert([]byte("* [Foo][1]\n\n[1]: classes/Foo.html\n"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<a href="classes/Foo.html">Foo</a>`)
}

func TestHTMLConverter_OmitsRawHTML(t *testing.T) {
	c := NewHTMLConverter()

	out, err := c.Convert([]byte("<script>alert(1)</script>\n"))
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(out), "<script>"))
}
