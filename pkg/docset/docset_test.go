package docset

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/sourcedocs/pkg/docs"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestNew(t *testing.T) {
	t.Run("nil db", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("creates table", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS searchIndex").WillReturnResult(sqlmock.NewResult(0, 0))

		idx, err := New(db)
		require.NoError(t, err)
		assert.NotNil(t, idx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("table error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS searchIndex").WillReturnError(errors.New("disk full"))

		_, err := New(db)
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestIndex_Write_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS searchIndex").WillReturnResult(sqlmock.NewResult(0, 0))
	idx, err := New(db)
	require.NoError(t, err)

	t.Run("commits", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM searchIndex").WillReturnResult(sqlmock.NewResult(0, 3))
		prep := mock.ExpectPrepare("INSERT OR IGNORE INTO searchIndex")
		prep.ExpectExec().WithArgs("Foo", "Class", "classes/Foo.md").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := idx.Write(context.Background(), []docs.Entry{{Name: "Foo", Type: "Class", Path: "classes/Foo.md"}})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on insert failure", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM searchIndex").WillReturnResult(sqlmock.NewResult(0, 0))
		prep := mock.ExpectPrepare("INSERT OR IGNORE INTO searchIndex")
		prep.ExpectExec().WithArgs("Foo", "Class", "classes/Foo.md").WillReturnError(errors.New("locked"))
		mock.ExpectRollback()

		err := idx.Write(context.Background(), []docs.Entry{{Name: "Foo", Type: "Class", Path: "classes/Foo.md"}})
		assert.ErrorContains(t, err, "locked")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIndex_SQLite(t *testing.T) {
	ctx := context.Background()
	idx, err := Open(filepath.Join(t.TempDir(), "Contents", "Resources", "docSet.dsidx"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	entries := []docs.Entry{
		{Name: "Foo", Type: "Class", Path: "classes/Foo.md"},
		{Name: "Foo.Bar", Type: "Struct", Path: "structs/Foo-Bar.md"},
		{Name: "Foo", Type: "Class", Path: "classes/Foo.md"},
		{Name: "under_score", Type: "Function", Path: "global-functions/under_score.md"},
	}
	require.NoError(t, idx.Write(ctx, entries))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "duplicate entries collapse")

	got, err := idx.Lookup(ctx, "Foo")
	require.NoError(t, err)
	assert.Equal(t, entries[:2], got)

	got, err = idx.Lookup(ctx, "under_")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = idx.Lookup(ctx, "unde%")
	require.NoError(t, err)
	assert.Empty(t, got, "wildcards are literal")

	require.NoError(t, idx.Write(ctx, entries[:1]))
	n, err = idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "write replaces previous contents")
}
