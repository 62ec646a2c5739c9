package markup

import "strconv"

// Document groups top-level blocks
func Document(children ...Node) NonIndentedCollection {
	return NonIndentedCollection(children)
}

// Header returns a heading block. The level is clamped to 1..6.
func Header(level int, text string) Element {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return Element{Text: hashes[:level] + " " + text, Type: Block}
}

const hashes = "######"

// Paragraph returns a block of plain text
func Paragraph(text string) Element {
	return Element{Text: text, Type: Block}
}

// ParagraphOf returns a block composed of inline parts joined by spaces.
// Links inside the parts are rendered in the same mode as the block.
func ParagraphOf(parts ...Node) Element {
	return Element{Type: Block, parts: parts}
}

// Text returns plain inline text
func Text(text string) Element {
	return Element{Text: text}
}

// UnorderedListItem returns a "* " list item. Children are nested one level
// deeper in an indented collection.
func UnorderedListItem(content Node, children ...Node) Element {
	return listItem("*", content, children)
}

// OrderedListItem returns a numbered list item
func OrderedListItem(n int, content Node, children ...Node) Element {
	return listItem(strconv.Itoa(n)+".", content, children)
}

func listItem(marker string, content Node, children []Node) Element {
	e := Element{Type: Block, parts: []Node{Text(marker), content}}
	if len(children) > 0 {
		e.Child = IndentedCollection(children)
	}
	return e
}

// CodeBlock returns a fenced code block tagged with lang
func CodeBlock(code, lang string) Element {
	return Element{Text: "```" + lang + "\n" + code + "\n```", Type: Block}
}

// InlineCode wraps text in backticks
func InlineCode(text string) Element {
	return Element{Text: "`" + text + "`"}
}

// Link returns an inline [text] pointing at url
func Link(text, url string) Element {
	return Element{Text: "[" + text + "]", Attrs: Attributes{Link: url}}
}

// Italic wraps text in single asterisks
func Italic(text string) Element {
	return Element{Text: "*" + text + "*"}
}

// Bold wraps text in double asterisks
func Bold(text string) Element {
	return Element{Text: "**" + text + "**"}
}

// BoldItalic wraps text in triple asterisks
func BoldItalic(text string) Element {
	return Element{Text: "***" + text + "***"}
}

// LineBreak is an empty block
func LineBreak() Element {
	return Element{Type: Block}
}

// HorizontalRule returns a thematic break
func HorizontalRule() Element {
	return Element{Text: "---", Type: Block}
}
