// Package docs renders a merged entity forest into documentation pages.
//
// # Overview
//
// A Renderer projects entities onto markup trees:
//
//   - EntityNode: title, kind, declaration, comment, visible members and the
//     members of attached extensions
//   - IndexNode: every visible entity grouped under one subheading per kind
//   - Entries: {name, type, path} triples for the docset lookup index
//
// A Generator turns a whole forest into a Site, rendering entity pages
// concurrently and consulting an optional PageCache.
//
// # Layouts
//
// MultiPage writes one page per entity at KindFolder/TitleSlug.ext and links
// the index to those paths. SinglePage writes one page holding the index
// followed by every entity, linked through same-page anchors.
//
// # Formats
//
// Markdown pages are the finalized markup with reference-style links. HTML
// pages are the same Markdown converted with goldmark; heading IDs use
// AnchorSlug so anchors resolve.
//
// # Usage Example
//
//	gen := docs.NewGenerator(docs.Options{
//		Layout:    docs.MultiPage,
//		Format:    docs.Markdown,
//		MinAccess: entity.Public,
//		Title:     "MyKit",
//	}, nil, logger, metrics)
//
//	site, err := gen.Generate(ctx, forest)
//	if err != nil {
//		return err
//	}
//	for _, page := range site.All() {
//		sink.Put(ctx, page.Path, page.Content, page.ContentType)
//	}
package docs
