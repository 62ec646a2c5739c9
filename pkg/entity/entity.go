package entity

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// LazyAttribute marks declarations whose parsed declaration is unreliable
const LazyAttribute = "lazy"

// DeclarationPlaceholder is rendered when neither declaration string is present
const DeclarationPlaceholder = "Declaration unavailable"

// trailingAssignment matches the " =" fragment computed properties leak into declarations
var trailingAssignment = regexp.MustCompile(`\s+=$`)

// Entity represents documentation for a single declaration
type Entity struct {
	Title             string
	Access            AccessLevel
	Comment           string
	SourceFile        string
	Kind              Kind
	Children          []*Entity
	Attributes        []string
	DocDeclaration    string
	ParsedDeclaration string

	// Synthetic is set on containers fabricated by the external merge pass
	Synthetic bool
}

// NormalizeAttributes returns a sorted, de-duplicated copy of attrs
func NormalizeAttributes(attrs []string) []string {
	if len(attrs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(attrs))
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// HasAttribute reports whether the entity carries the named marker
func (e *Entity) HasAttribute(name string) bool {
	for _, a := range e.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// Declaration returns the effective declaration.
//
// The parsed-code declaration wins unless the entity is lazy, in which case
// the documentation declaration wins. Whichever is non-empty is used as a
// fallback, then the placeholder. A single trailing " =" is stripped.
func (e *Entity) Declaration() string {
	primary, secondary := e.ParsedDeclaration, e.DocDeclaration
	if e.HasAttribute(LazyAttribute) {
		primary, secondary = secondary, primary
	}
	decl := primary
	if decl == "" {
		decl = secondary
	}
	if decl == "" {
		decl = DeclarationPlaceholder
	}
	return trailingAssignment.ReplaceAllString(decl, "")
}

// Equal compares entities structurally. Extensions never take part.
func (e *Entity) Equal(other *Entity) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil {
		return false
	}
	if e.Title != other.Title ||
		e.Access != other.Access ||
		e.Comment != other.Comment ||
		e.SourceFile != other.SourceFile ||
		e.Kind != other.Kind ||
		e.Declaration() != other.Declaration() {
		return false
	}
	if len(e.Attributes) != len(other.Attributes) || len(e.Children) != len(other.Children) {
		return false
	}
	for i := range e.Attributes {
		if e.Attributes[i] != other.Attributes[i] {
			return false
		}
	}
	for i := range e.Children {
		if !e.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Hash returns a stable 64-bit digest over the same fields Equal compares
func (e *Entity) Hash() uint64 {
	d := xxhash.New()
	e.writeHash(d)
	return d.Sum64()
}

func (e *Entity) writeHash(d *xxhash.Digest) {
	field := func(s string) {
		d.WriteString(strconv.Itoa(len(s)))
		d.WriteString(":")
		d.WriteString(s)
	}
	field(e.Title)
	field(e.Access.String())
	field(e.Comment)
	field(e.SourceFile)
	field(e.Kind.String())
	field(strconv.FormatBool(e.Kind.IsOther()))
	field(e.Declaration())
	for _, a := range e.Attributes {
		field(a)
	}
	d.WriteString(strconv.Itoa(len(e.Children)))
	for _, c := range e.Children {
		c.writeHash(d)
	}
}

// Walk visits e and every descendant in pre-order. Returning false from fn
// skips the visited entity's children.
func (e *Entity) Walk(fn func(*Entity) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// VisibleChildren returns the children at or above the threshold
func (e *Entity) VisibleChildren(threshold AccessLevel) []*Entity {
	var out []*Entity
	for _, c := range e.Children {
		if c.Access.Visible(threshold) {
			out = append(out, c)
		}
	}
	return out
}
