package storage

import (
	"context"
	"fmt"

	"github.com/starford/notesapi/pkg/database"
)

var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS users (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	email    TEXT NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME
)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id)`,
}

var postgresSchema = []string{`
CREATE TABLE IF NOT EXISTS users (
	id       BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	username VARCHAR(50)  NOT NULL,
	email    VARCHAR(100) NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS notes (
	id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title      VARCHAR(200) NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id)`,
}

// EnsureSchema creates the users and notes tables when they are missing.
// Deleting a user cascades to its notes.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	stmts := sqliteSchema
	if db.Driver() == database.DriverPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("storage: apply schema: %w", err)
		}
	}
	return nil
}
