package docs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownLayout is returned for an unrecognised layout name
	ErrUnknownLayout = errors.New("unknown layout")
	// ErrUnknownFormat is returned for an unrecognised format name
	ErrUnknownFormat = errors.New("unknown format")
)

// Layout selects how entity pages are laid out
type Layout int

const (
	// MultiPage writes one page per entity under a per-kind folder
	MultiPage Layout = iota
	// SinglePage writes the index and every entity into one page
	SinglePage
)

func (l Layout) String() string {
	switch l {
	case MultiPage:
		return "multi-page"
	case SinglePage:
		return "single-page"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout parses a layout name
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multi-page", "multipage", "multi":
		return MultiPage, nil
	case "single-page", "singlepage", "single":
		return SinglePage, nil
	}
	return MultiPage, fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// MarshalText implements encoding.TextMarshaler
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Layout) UnmarshalText(text []byte) error {
	parsed, err := ParseLayout(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Format selects the output encoding of rendered pages
type Format int

const (
	Markdown Format = iota
	HTML
)

func (f Format) String() string {
	switch f {
	case Markdown:
		return "markdown"
	case HTML:
		return "html"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extension returns the file extension for pages in this format
func (f Format) Extension() string {
	if f == HTML {
		return ".html"
	}
	return ".md"
}

// ContentType returns the MIME type for pages in this format
func (f Format) ContentType() string {
	if f == HTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return Markdown, nil
	case "html":
		return HTML, nil
	}
	return Markdown, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// MarshalText implements encoding.TextMarshaler
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
