// Package storage implements the user and note gateways on top of a
// relational store. Absence is never an error here: lookups return nil and
// writes return the number of affected rows.
package storage

import (
	"context"
	"time"

	"github.com/starford/notesapi/internal/models"
)

// UserStore is the gateway for users.
type UserStore interface {
	// ListUsers returns users by ascending id; page nil means all of them.
	ListUsers(ctx context.Context, page *models.PageRequest) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	// GetUser returns nil, nil when the user does not exist.
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) (int64, error)
	UpdateUser(ctx context.Context, id int64, in models.UserInput) (int64, error)
	DeleteUser(ctx context.Context, id int64) (int64, error)
}

// NoteStore is the gateway for notes. Every call is scoped by owner.
type NoteStore interface {
	// ListNotes returns the user's notes, most recently created first.
	ListNotes(ctx context.Context, userID int64, page *models.PageRequest) ([]models.Note, error)
	CountNotes(ctx context.Context, userID int64) (int64, error)
	// GetNote returns nil, nil when no note matches both ids.
	GetNote(ctx context.Context, userID, noteID int64) (*models.Note, error)
	CreateNote(ctx context.Context, userID int64, in models.NoteInput, createdAt time.Time) (int64, error)
	UpdateNote(ctx context.Context, userID, noteID int64, in models.NoteInput, updatedAt time.Time) (int64, error)
	DeleteNote(ctx context.Context, userID, noteID int64) (int64, error)
}

// Verify the SQL gateways satisfy the interfaces at compile time.
var (
	_ UserStore = (*Users)(nil)
	_ NoteStore = (*Notes)(nil)
)
