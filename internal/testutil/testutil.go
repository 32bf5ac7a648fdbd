// Package testutil provides shared test helpers for setting up databases and
// the services on top of them.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/starford/notesapi/internal/storage"
	"github.com/starford/notesapi/pkg/database"
)

// TestDB opens a SQLite database in a temp dir with the schema applied. It
// is closed automatically.
func TestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Options{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "notesapi-test.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.EnsureSchema(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	return db
}

// TestStores returns SQL gateways over a fresh TestDB.
func TestStores(t *testing.T) (*database.DB, *storage.Users, *storage.Notes) {
	t.Helper()
	db := TestDB(t)
	return db, storage.NewUsers(db), storage.NewNotes(db)
}
