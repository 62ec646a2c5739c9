// Package markup assembles Markdown from a small recursive node tree.
//
// # Overview
//
// A Node is one of three shapes:
//
//   - Element: literal text with a type (Inline or Block), attributes
//     (indentation, link target, newline prefix) and an optional child tree
//   - IndentedCollection: siblings rendered at a shared, inherited indentation
//   - NonIndentedCollection: top-level siblings, one per line, with adjacent
//     list items kept contiguous
//
// Trees are immutable values. Builders return new values and Append never
// modifies its argument.
//
// # Links
//
// Links are threaded through rendering by value: Render returns the text and
// the distinct link targets referenced in it, and Finalize turns those into
// reference definitions. There is no shared registry, so independent
// documents can be rendered concurrently.
//
//	doc := markup.Document(
//		markup.Header(1, "Foo"),
//		markup.UnorderedListItem(markup.Link("Bar", "Bar.md")),
//	)
//	text := markup.Finalize(doc)
//	// # Foo
//	//
//	// * [Bar][1234]
//	//
//	// [1234]: Bar.md
package markup
