// Package entity defines the documentation tree model.
//
// # Overview
//
// An Entity is one documentable construct (class, struct, enum, protocol,
// extension, global function, type alias or any other declaration kind the
// parser reports). Entities are built once during ingestion and never mutated
// afterwards; extensions are attached by the merge passes in pkg/store, which
// keep them in a separate identity map instead of on the node itself.
//
// # Access Model
//
// AccessLevel is totally ordered:
//
//	Private < FilePrivate < Internal < Public < Open
//
// An entity is visible at threshold T iff its level is >= T:
//
//	if e.Access.Visible(entity.Public) {
//		// render it
//	}
//
// Kind is a closed set of known declaration kinds plus an open variant that
// carries the parser's raw label:
//
//	entity.ParseKind("source.lang.swift.decl.class")     // entity.Class
//	entity.ParseKind("source.lang.swift.decl.var.instance") // entity.Other("source.lang.swift.decl.var.instance")
//
// # Declarations
//
// Entity.Declaration derives the effective declaration from the documentation
// and parsed-code declaration strings (see its doc comment for the rules).
//
// # Related Packages
//
//   - pkg/store: ingestion, extension merging and search
//   - pkg/docs: rendering entities to markup
package entity
