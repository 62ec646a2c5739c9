package store

import (
	"strings"

	"github.com/platinummonkey/sourcedocs/pkg/entity"
)

// Query filters a search. A nil Kind and an empty Title match everything.
type Query struct {
	Title     string
	Kind      *entity.Kind
	MinAccess entity.AccessLevel
}

// Search flattens every entity and descendant in pre-order and keeps those
// at or above MinAccess whose title contains Title (case-insensitive) and
// whose kind equals Kind.
func (f *Forest) Search(q Query) []*entity.Entity {
	needle := strings.ToLower(q.Title)

	var out []*entity.Entity
	for _, root := range f.entities {
		root.Walk(func(e *entity.Entity) bool {
			if !e.Access.Visible(q.MinAccess) {
				return true
			}
			if needle != "" && !strings.Contains(strings.ToLower(e.Title), needle) {
				return true
			}
			if q.Kind != nil && e.Kind != *q.Kind {
				return true
			}
			out = append(out, e)
			return true
		})
	}
	return out
}

// OfKind returns every entity of kind k regardless of access
func (f *Forest) OfKind(k entity.Kind) []*entity.Entity {
	return f.Search(Query{Kind: &k, MinAccess: entity.Private})
}

func (f *Forest) Classes() []*entity.Entity { return f.OfKind(entity.Class) }
func (f *Forest) Structs() []*entity.Entity { return f.OfKind(entity.Struct) }
func (f *Forest) Enums() []*entity.Entity { return f.OfKind(entity.Enum) }
func (f *Forest) Protocols() []*entity.Entity { return f.OfKind(entity.Protocol) }
func (f *Forest) Extensions() []*entity.Entity { return f.OfKind(entity.Extension) }
func (f *Forest) GlobalFunctions() []*entity.Entity { return f.OfKind(entity.GlobalFunction) }
func (f *Forest) TypeAliases() []*entity.Entity { return f.OfKind(entity.TypeAlias) }

// TopLevelIndex concatenates the per-kind lists in index order
func (f *Forest) TopLevelIndex() []*entity.Entity {
	var out []*entity.Entity
	for _, k := range entity.IndexKinds {
		out = append(out, f.OfKind(k)...)
	}
	return out
}

// VisibleIndex is TopLevelIndex restricted to entities at or above min
func (f *Forest) VisibleIndex(min entity.AccessLevel) []*entity.Entity {
	var out []*entity.Entity
	for _, e := range f.TopLevelIndex() {
		if e.Access.Visible(min) {
			out = append(out, e)
		}
	}
	return out
}
