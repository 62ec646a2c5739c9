package docs

import (
	"sort"

	"github.com/platinummonkey/sourcedocs/pkg/entity"
	"github.com/platinummonkey/sourcedocs/pkg/markup"
	"github.com/platinummonkey/sourcedocs/pkg/store"
)

// NoDocumentation is rendered in place of a missing comment
const NoDocumentation = "No documentation available."

// Renderer projects entities onto markup trees
type Renderer struct {
	Layout    Layout
	Format    Format
	MinAccess entity.AccessLevel
	// Forest supplies attached extensions. May be nil.
	Forest *store.Forest
	// Title, when set, heads the index
	Title string

	// paths overrides the multi-page path of an entity
	paths map[*entity.Entity]string
}

// EntityNode renders one entity: title, kind, declaration, comment, then
// its visible members and the members of its visible extensions.
func (r *Renderer) EntityNode(e *entity.Entity) markup.NonIndentedCollection {
	nodes := []markup.Node{
		markup.Header(1, e.Title),
		markup.ParagraphOf(markup.Italic(e.Kind.String())),
		markup.CodeBlock(e.Declaration(), "swift"),
		markup.Paragraph(commentOf(e)),
	}

	if members := e.VisibleChildren(r.MinAccess); len(members) > 0 {
		nodes = append(nodes, markup.Header(2, "Members"))
		for _, m := range members {
			nodes = append(nodes, memberItem(m))
		}
	}

	if r.Forest != nil {
		var extMembers []*entity.Entity
		for _, ext := range r.Forest.ExtensionsOf(e) {
			if ext.Access.Visible(r.MinAccess) {
				extMembers = append(extMembers, ext.VisibleChildren(r.MinAccess)...)
			}
		}
		if len(extMembers) > 0 {
			nodes = append(nodes, markup.Header(2, "Extensions"))
			for _, m := range extMembers {
				nodes = append(nodes, memberItem(m))
			}
		}
	}

	return markup.Document(nodes...)
}

func memberItem(e *entity.Entity) markup.Element {
	return markup.UnorderedListItem(markup.Bold(e.Title),
		markup.ParagraphOf(markup.Italic(e.Kind.String())),
		markup.CodeBlock(e.Declaration(), "swift"),
		markup.Paragraph(commentOf(e)),
	)
}

func commentOf(e *entity.Entity) string {
	if e.Comment == "" {
		return NoDocumentation
	}
	return e.Comment
}

// IndexNode lists the visible entities grouped under one subheading per
// kind label. Entities are stably sorted by label, so entities sharing a
// label keep their input order.
func (r *Renderer) IndexNode(entities []*entity.Entity) markup.NonIndentedCollection {
	sorted := make([]*entity.Entity, 0, len(entities))
	for _, e := range entities {
		if e.Access.Visible(r.MinAccess) {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Kind.DisplayName() < sorted[j].Kind.DisplayName()
	})

	var nodes []markup.Node
	if r.Title != "" {
		nodes = append(nodes, markup.Header(1, r.Title))
	}

	label := ""
	for i, e := range sorted {
		if display := e.Kind.DisplayName(); i == 0 || display != label {
			label = display
			nodes = append(nodes, markup.Header(2, label))
		}
		nodes = append(nodes, markup.UnorderedListItem(markup.Link(e.Title, r.LinkPath(e))))
	}
	return markup.Document(nodes...)
}

// LinkPath returns the link target of e for the renderer's layout
func (r *Renderer) LinkPath(e *entity.Entity) string {
	if r.Layout == SinglePage {
		return "#" + AnchorSlug(e.Title)
	}
	if p, ok := r.paths[e]; ok {
		return p
	}
	return PagePath(e, r.Format)
}

// Entry is one packaging triple for the docset lookup index
type Entry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// Entries returns the packaging triple of each visible entity
func (r *Renderer) Entries(entities []*entity.Entity) []Entry {
	out := make([]Entry, 0, len(entities))
	for _, e := range entities {
		if !e.Access.Visible(r.MinAccess) {
			continue
		}
		path := r.LinkPath(e)
		if r.Layout == SinglePage {
			path = IndexPath(r.Format) + path
		}
		out = append(out, Entry{
			Name: e.Title,
			Type: e.Kind.TypeLabel(),
			Path: path,
		})
	}
	return out
}
