package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/sourcedocs/pkg/entity"
)

func ent(kind entity.Kind, title string, children ...*entity.Entity) *entity.Entity {
	return &entity.Entity{Title: title, Kind: kind, Access: entity.Public, Children: children}
}

func ext(title, comment string) *entity.Entity {
	e := ent(entity.Extension, title)
	e.Comment = comment
	return e
}

func titles(entities []*entity.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Title)
	}
	return out
}

func comments(entities []*entity.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Comment)
	}
	return out
}

func TestMerge_ExternalGroupsInReverseOrder(t *testing.T) {
	first, second := ext("String", "first"), ext("String", "second")

	forest := Merge([]*entity.Entity{first, second}, MergeOptions{})
	top := forest.Entities()
	require.Len(t, top, 1)

	group := top[0]
	assert.Equal(t, "String", group.Title)
	assert.Equal(t, entity.Extension, group.Kind)
	assert.Equal(t, entity.Open, group.Access)
	assert.Equal(t, "Extensions of String", group.Comment)
	assert.True(t, group.Synthetic)
	assert.Empty(t, group.ParsedDeclaration)
	assert.Empty(t, group.Attributes)

	assert.Equal(t, []string{"second", "first"}, comments(forest.ExtensionsOf(group)))
	assert.Equal(t, MergeStats{External: 2}, forest.Stats())
}

func TestMerge_ExternalEncounterOrder(t *testing.T) {
	forest := Merge([]*entity.Entity{ext("String", "first"), ext("String", "second")}, MergeOptions{EncounterOrder: true})
	top := forest.Entities()
	require.Len(t, top, 1)
	assert.Equal(t, []string{"first", "second"}, comments(forest.ExtensionsOf(top[0])))
}

func TestMerge_ExternalGroupsKeepFirstSeenTitleOrder(t *testing.T) {
	input := []*entity.Entity{
		ext("Y", "y1"),
		ent(entity.Class, "A"),
		ext("X", "x1"),
		ext("Y", "y2"),
	}

	forest := Merge(input, MergeOptions{})
	top := forest.Entities()
	assert.Equal(t, []string{"A", "Y", "X"}, titles(top))
	assert.Equal(t, []string{"y2", "y1"}, comments(forest.ExtensionsOf(top[1])))
	assert.Equal(t, []string{"x1"}, comments(forest.ExtensionsOf(top[2])))
}

func TestMerge_Internal(t *testing.T) {
	foo := ent(entity.Class, "Foo")
	inner := ent(entity.Struct, "Outer.Inner")
	outer := ent(entity.Enum, "Outer", inner)
	baz := ent(entity.Struct, "Baz")
	fooExt := ext("Foo", "foo ext")
	innerExt := ext("Outer.Inner", "inner ext")
	loose := ext("Int", "int ext")

	input := []*entity.Entity{foo, fooExt, outer, loose, baz, innerExt}
	forest := Merge(input, MergeOptions{})

	assert.Equal(t, []string{"Foo", "Outer", "Baz", "Int"}, titles(forest.Entities()))
	assert.Equal(t, []*entity.Entity{fooExt}, forest.ExtensionsOf(foo))
	assert.Equal(t, []*entity.Entity{innerExt}, forest.ExtensionsOf(inner), "nested types receive extensions")
	assert.Empty(t, forest.ExtensionsOf(outer))
	assert.Equal(t, MergeStats{Internal: 2, External: 1}, forest.Stats())

	assert.Len(t, input, 6, "input is not modified")
	assert.Same(t, fooExt, input[1])
}

func TestMerge_InternalIgnoresNonTypeKinds(t *testing.T) {
	fn := ent(entity.GlobalFunction, "Foo")
	alias := ent(entity.TypeAlias, "Foo")
	fooExt := ext("Foo", "")

	forest := Merge([]*entity.Entity{fn, alias, fooExt}, MergeOptions{})
	top := forest.Entities()
	require.Len(t, top, 3)
	assert.True(t, top[2].Synthetic)
	assert.Empty(t, forest.ExtensionsOf(fn))
	assert.Empty(t, forest.ExtensionsOf(alias))
}

func TestMerge_DuplicateTitles(t *testing.T) {
	a := ent(entity.Class, "Foo")
	b := ent(entity.Struct, "Foo")
	fooExt := ext("Foo", "")

	t.Run("attaches once per match", func(t *testing.T) {
		forest := Merge([]*entity.Entity{a, b, fooExt}, MergeOptions{})
		assert.Equal(t, []string{"Foo", "Foo"}, titles(forest.Entities()))
		assert.Equal(t, []*entity.Entity{fooExt}, forest.ExtensionsOf(a))
		assert.Equal(t, []*entity.Entity{fooExt}, forest.ExtensionsOf(b))
		assert.Equal(t, 2, forest.Stats().Internal)
		assert.Equal(t, 1, forest.Stats().Ambiguous)
	})

	t.Run("attach once", func(t *testing.T) {
		forest := Merge([]*entity.Entity{a, b, fooExt}, MergeOptions{AttachOnce: true})
		assert.Equal(t, []*entity.Entity{fooExt}, forest.ExtensionsOf(a))
		assert.Empty(t, forest.ExtensionsOf(b))
	})
}

func TestMerge_Idempotent(t *testing.T) {
	foo := ent(entity.Class, "Foo")
	input := []*entity.Entity{
		foo,
		ext("Foo", "a"),
		ext("String", "b"),
		ent(entity.Struct, "Bar"),
		ext("String", "c"),
		ext("Int", "d"),
	}

	for _, opts := range []MergeOptions{{}, {AttachOnce: true, EncounterOrder: true}} {
		once := Merge(input, opts)
		twice := once.Remerge(opts)

		assert.Equal(t, once.Entities(), twice.Entities())
		for _, e := range once.Entities() {
			assert.Equal(t, once.ExtensionsOf(e), twice.ExtensionsOf(e))
		}
		assert.Equal(t, once.ExtensionsOf(foo), twice.ExtensionsOf(foo))
		assert.Equal(t, MergeStats{}, twice.Stats())
	}
}

func TestMerge_RemainingExtensionsAreDistinct(t *testing.T) {
	input := []*entity.Entity{
		ent(entity.Protocol, "P"),
		ext("P", ""),
		ext("Q", ""),
		ext("Q", ""),
		ext("R", ""),
	}
	forest := Merge(input, MergeOptions{})

	seen := make(map[string]bool)
	for _, e := range forest.Entities() {
		if e.Kind != entity.Extension {
			continue
		}
		assert.False(t, seen[e.Title], "duplicate group %s", e.Title)
		assert.NotEqual(t, "P", e.Title)
		seen[e.Title] = true
	}
	assert.Equal(t, map[string]bool{"Q": true, "R": true}, seen)
}

func TestMerge_Empty(t *testing.T) {
	forest := Merge(nil, MergeOptions{})
	assert.Equal(t, 0, forest.Len())
	assert.Empty(t, forest.Entities())
	assert.Empty(t, forest.TopLevelIndex())
}
