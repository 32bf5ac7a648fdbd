package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/notesapi/internal/models"
	"github.com/starford/notesapi/pkg/database"
)

const noteColumns = `id, user_id, title, content, created_at, updated_at`

// Notes is the SQL note gateway.
type Notes struct {
	db *database.DB
}

// NewNotes creates a note gateway.
func NewNotes(db *database.DB) *Notes {
	return &Notes{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (models.Note, error) {
	var (
		n       models.Note
		updated sql.NullTime
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &updated); err != nil {
		return models.Note{}, err
	}
	n.CreatedAt = n.CreatedAt.UTC()
	if updated.Valid {
		t := updated.Time.UTC()
		n.UpdatedAt = &t
	}
	return n, nil
}

// ListNotes returns the user's notes, newest first, one page or all of them.
func (s *Notes) ListNotes(ctx context.Context, userID int64, page *models.PageRequest) ([]models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ?
		ORDER BY created_at DESC, updated_at DESC NULLS LAST, id DESC`
	args := []any{userID}
	if page != nil {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Size, page.Offset())
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list notes: %w", err)
	}
	defer rows.Close()

	out := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CountNotes returns the number of notes the user owns.
func (s *Notes) CountNotes(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count notes: %w", err)
	}
	return n, nil
}

// GetNote returns the note, or nil when the user owns no note with that id.
func (s *Notes) GetNote(ctx context.Context, userID, noteID int64) (*models.Note, error) {
	n, err := scanNote(s.db.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND id = ?`,
		userID, noteID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get note: %w", err)
	}
	return &n, nil
}

// CreateNote inserts a note for the user and returns its id.
func (s *Notes) CreateNote(ctx context.Context, userID int64, in models.NoteInput, createdAt time.Time) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO notes (user_id, title, content, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		userID, in.Title, in.Content, createdAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage: create note: %w", err)
	}
	return id, nil
}

// UpdateNote replaces title and content, sets updated_at and returns the
// affected rows.
func (s *Notes) UpdateNote(ctx context.Context, userID, noteID int64, in models.NoteInput, updatedAt time.Time) (int64, error) {
	res, err := s.db.Exec(ctx,
		`UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
		in.Title, in.Content, updatedAt.UTC(), userID, noteID,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: update note: %w", err)
	}
	return affected(res)
}

// DeleteNote removes the note and returns the affected rows.
func (s *Notes) DeleteNote(ctx context.Context, userID, noteID int64) (int64, error) {
	res, err := s.db.Exec(ctx, `DELETE FROM notes WHERE user_id = ? AND id = ?`, userID, noteID)
	if err != nil {
		return 0, fmt.Errorf("storage: delete note: %w", err)
	}
	return affected(res)
}
