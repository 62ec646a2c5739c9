package docset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/sourcedocs/pkg/docs"
)

var tracer = otel.Tracer("sourcedocs/docset")

// Index writes packaging entries into a docset lookup database.
type Index struct {
	db *sql.DB
}

// Open creates (or reuses) the SQLite database at path and ensures the
// searchIndex table exists. Parent directories are created as needed.
func Open(path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create docset directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docset index: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	idx, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

// New wraps an existing database handle.
func New(db *sql.DB) (*Index, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	idx := &Index{db: db}
	if err := idx.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure searchIndex table: %w", err)
	}
	return idx, nil
}

// ensureTable creates the searchIndex table if it doesn't exist
func (i *Index) ensureTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS searchIndex (
		id INTEGER PRIMARY KEY,
		name TEXT,
		type TEXT,
		path TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS anchor ON searchIndex (name, type, path);
	`

	_, err := i.db.Exec(query)
	return err
}

// DB returns the underlying handle, used by readiness checks.
func (i *Index) DB() *sql.DB {
	return i.db
}

// Write replaces the index contents with entries in a single transaction.
// Duplicate entries collapse into one row.
func (i *Index) Write(ctx context.Context, entries []docs.Entry) (err error) {
	ctx, span := tracer.Start(ctx, "Docset.Write",
		trace.WithAttributes(attribute.Int("docset.entries", len(entries))),
	)
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to write docset index")
			return
		}
		span.SetStatus(codes.Ok, "docset index written")
	}()

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM searchIndex`); err != nil {
		return fmt.Errorf("failed to clear searchIndex: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO searchIndex (name, type, path) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err = stmt.ExecContext(ctx, e.Name, e.Type, e.Path); err != nil {
			return fmt.Errorf("failed to insert %q: %w", e.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit docset index: %w", err)
	}
	return nil
}

// Lookup returns entries whose name starts with prefix, ordered by name.
func (i *Index) Lookup(ctx context.Context, prefix string) ([]docs.Entry, error) {
	rows, err := i.db.QueryContext(ctx,
		`SELECT name, type, path FROM searchIndex WHERE name LIKE ? ESCAPE '\' ORDER BY name, type, path`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query searchIndex: %w", err)
	}
	defer rows.Close()

	var entries []docs.Entry
	for rows.Next() {
		var e docs.Entry
		if err := rows.Scan(&e.Name, &e.Type, &e.Path); err != nil {
			return nil, fmt.Errorf("failed to scan searchIndex row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of rows in the index.
func (i *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := i.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM searchIndex`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count searchIndex: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (i *Index) Close() error {
	return i.db.Close()
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
