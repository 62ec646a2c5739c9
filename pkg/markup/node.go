package markup

// Type distinguishes inline elements from block elements
type Type int

const (
	Inline Type = iota
	Block
)

func (t Type) String() string {
	if t == Block {
		return "block"
	}
	return "inline"
}

// Attributes modify how an Element renders
type Attributes struct {
	// Indent is the number of tabs in front of the element's text
	Indent int
	// Link is an optional link target rendered inline or as a reference
	Link string
	// NewlinePrefix is the number of line breaks emitted before the element
	NewlinePrefix int
}

// Node is a markup tree. It is implemented only by Element,
// IndentedCollection and NonIndentedCollection.
type Node interface {
	markupNode()
}

// Element is a piece of literal text with an optional child tree
type Element struct {
	Text  string
	Type  Type
	Attrs Attributes
	Child Node

	// parts, when set, replace Text with the space-joined rendering of
	// each part
	parts []Node
}

// IndentedCollection renders its nodes at the inherited indentation
type IndentedCollection []Node

// NonIndentedCollection renders its nodes as top-level siblings
type NonIndentedCollection []Node

func (Element) markupNode()               {}
func (IndentedCollection) markupNode()    {}
func (NonIndentedCollection) markupNode() {}

// Indented returns a copy of e with n more tabs of indentation
func (e Element) Indented(n int) Element {
	if n > 0 {
		e.Attrs.Indent += n
	}
	return e
}

// WithNewlinePrefix returns a copy of e preceded by n more line breaks
func (e Element) WithNewlinePrefix(n int) Element {
	if n > 0 {
		e.Attrs.NewlinePrefix += n
	}
	return e
}

// Append returns a new tree with more appended as siblings of n.
// Collections are concatenated; an element is wrapped together with more in
// an IndentedCollection.
func Append(n Node, more ...Node) Node {
	switch v := n.(type) {
	case IndentedCollection:
		out := make(IndentedCollection, 0, len(v)+len(more))
		out = append(out, v...)
		return append(out, more...)
	case NonIndentedCollection:
		out := make(NonIndentedCollection, 0, len(v)+len(more))
		out = append(out, v...)
		return append(out, more...)
	case Element:
		out := make(IndentedCollection, 0, len(more)+1)
		out = append(out, v)
		return append(out, more...)
	default:
		out := make(IndentedCollection, 0, len(more))
		return append(out, more...)
	}
}

// Equal compares two trees structurally
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Element:
		y, ok := b.(Element)
		if !ok {
			return false
		}
		if x.Text != y.Text || x.Type != y.Type || x.Attrs != y.Attrs {
			return false
		}
		return Equal(x.Child, y.Child) && equalNodes(x.parts, y.parts)
	case IndentedCollection:
		y, ok := b.(IndentedCollection)
		return ok && equalNodes(x, y)
	case NonIndentedCollection:
		y, ok := b.(NonIndentedCollection)
		return ok && equalNodes(x, y)
	}
	return false
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
