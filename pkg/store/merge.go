package store

import (
	"github.com/platinummonkey/sourcedocs/pkg/entity"
)

// MergeOptions adjusts the two extension merge passes. The zero value keeps
// the historical behaviour: an extension attaches to every type sharing its
// title, and external groups list members in reverse encounter order.
type MergeOptions struct {
	// AttachOnce attaches an extension to the first matching type only
	AttachOnce bool
	// EncounterOrder keeps external group members in encounter order
	EncounterOrder bool
}

// MergeStats counts the attachments made by each pass
type MergeStats struct {
	Internal int
	External int
	// Ambiguous counts extensions whose title matched more than one type
	Ambiguous int
}

// Forest is the merged top-level entity list together with the extensions
// attached to each entity. A Forest is read-only once returned.
type Forest struct {
	entities   []*entity.Entity
	extensions map[*entity.Entity][]*entity.Entity
	stats      MergeStats
}

// Merge runs the internal then the external extension pass over entities.
// The input slice and the entities themselves are left untouched.
func Merge(entities []*entity.Entity, opts MergeOptions) *Forest {
	f := &Forest{
		entities:   append([]*entity.Entity(nil), entities...),
		extensions: make(map[*entity.Entity][]*entity.Entity),
	}
	f.stats.Internal = f.mergeInternal(opts)
	f.stats.External = f.mergeExternal(opts)
	return f
}

// Remerge runs both passes again over the merged result. Synthetic groups are
// never regrouped, so this leaves an already merged forest unchanged.
func (f *Forest) Remerge(opts MergeOptions) *Forest {
	out := &Forest{
		entities:   append([]*entity.Entity(nil), f.entities...),
		extensions: make(map[*entity.Entity][]*entity.Entity, len(f.extensions)),
	}
	for k, v := range f.extensions {
		out.extensions[k] = append([]*entity.Entity(nil), v...)
	}
	out.stats.Internal = out.mergeInternal(opts)
	out.stats.External = out.mergeExternal(opts)
	return out
}

// Entities returns the top-level entities in order
func (f *Forest) Entities() []*entity.Entity {
	return append([]*entity.Entity(nil), f.entities...)
}

// ExtensionsOf returns the extensions attached to e
func (f *Forest) ExtensionsOf(e *entity.Entity) []*entity.Entity {
	return f.extensions[e]
}

// Stats returns the attachment counts of the passes that built f
func (f *Forest) Stats() MergeStats {
	return f.stats
}

// Len returns the number of top-level entities
func (f *Forest) Len() int {
	return len(f.entities)
}

func isLooseExtension(e *entity.Entity) bool {
	return e.Kind == entity.Extension && !e.Synthetic
}

// mergeInternal attaches every top-level extension to each type anywhere in
// the forest with the same title, then drops the matched extensions from the
// top level.
func (f *Forest) mergeInternal(opts MergeOptions) int {
	targets := make(map[string][]*entity.Entity)
	for _, root := range f.entities {
		root.Walk(func(e *entity.Entity) bool {
			if e.Kind.IsTypeDeclaration() {
				targets[e.Title] = append(targets[e.Title], e)
			}
			return true
		})
	}

	attached := 0
	matched := make(map[*entity.Entity]bool)
	for _, ext := range f.entities {
		if !isLooseExtension(ext) {
			continue
		}
		found := targets[ext.Title]
		if len(found) == 0 {
			continue
		}
		if len(found) > 1 {
			f.stats.Ambiguous++
		}
		if opts.AttachOnce {
			found = found[:1]
		}
		for _, target := range found {
			f.extensions[target] = append(f.extensions[target], ext)
			attached++
		}
		matched[ext] = true
	}

	if len(matched) == 0 {
		return 0
	}
	kept := f.entities[:0]
	for _, e := range f.entities {
		if !matched[e] {
			kept = append(kept, e)
		}
	}
	f.entities = kept
	return attached
}

// mergeExternal moves the remaining extensions into one synthetic group per
// title. Each group is filled by repeatedly taking the last extension with
// that title, which leaves members in reverse encounter order.
func (f *Forest) mergeExternal(opts MergeOptions) int {
	var titles []string
	seen := make(map[string]bool)
	for _, e := range f.entities {
		if isLooseExtension(e) && !seen[e.Title] {
			seen[e.Title] = true
			titles = append(titles, e.Title)
		}
	}
	if len(titles) == 0 {
		return 0
	}

	groups := make(map[string]*entity.Entity)
	for _, e := range f.entities {
		if e.Synthetic && e.Kind == entity.Extension {
			groups[e.Title] = e
		}
	}

	var created []*entity.Entity
	attached := 0
	for _, title := range titles {
		group, ok := groups[title]
		if !ok {
			group = newExtensionGroup(title)
			groups[title] = group
			created = append(created, group)
		}

		var members []*entity.Entity
		for {
			idx := f.lastLooseExtension(title)
			if idx < 0 {
				break
			}
			members = append(members, f.entities[idx])
			f.entities = append(f.entities[:idx], f.entities[idx+1:]...)
		}
		if opts.EncounterOrder {
			for l, r := 0, len(members)-1; l < r; l, r = l+1, r-1 {
				members[l], members[r] = members[r], members[l]
			}
		}
		f.extensions[group] = append(f.extensions[group], members...)
		attached += len(members)
	}

	f.entities = append(f.entities, created...)
	return attached
}

func (f *Forest) lastLooseExtension(title string) int {
	for i := len(f.entities) - 1; i >= 0; i-- {
		if e := f.entities[i]; isLooseExtension(e) && e.Title == title {
			return i
		}
	}
	return -1
}

func newExtensionGroup(title string) *entity.Entity {
	return &entity.Entity{
		Title:     title,
		Access:    entity.Open,
		Comment:   "Extensions of " + title,
		Kind:      entity.Extension,
		Synthetic: true,
	}
}
