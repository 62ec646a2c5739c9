// Package docset maintains the lookup database used by documentation
// browsers: a SQLite searchIndex table of (name, type, path) rows with a
// unique index over all three columns.
package docset
