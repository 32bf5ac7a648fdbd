package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/notesapi/internal/models"
	"github.com/starford/notesapi/pkg/database"
)

// Users is the SQL user gateway.
type Users struct {
	db *database.DB
}

// NewUsers creates a user gateway.
func NewUsers(db *database.DB) *Users {
	return &Users{db: db}
}

// ListUsers returns users by ascending id, one page or all of them.
func (s *Users) ListUsers(ctx context.Context, page *models.PageRequest) ([]models.User, error) {
	query := `SELECT id, username, email FROM users ORDER BY id ASC`
	var args []any
	if page != nil {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Size, page.Offset())
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, fmt.Errorf("storage: scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CountUsers returns the number of users.
func (s *Users) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count users: %w", err)
	}
	return n, nil
}

// GetUser returns the user, or nil when it does not exist.
func (s *Users) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx, `SELECT id, username, email FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a user and returns its id.
func (s *Users) CreateUser(ctx context.Context, in models.UserInput) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (username, email) VALUES (?, ?) RETURNING id`,
		in.Username, in.Email,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage: create user: %w", err)
	}
	return id, nil
}

// UpdateUser replaces username and email and returns the affected rows.
func (s *Users) UpdateUser(ctx context.Context, id int64, in models.UserInput) (int64, error) {
	res, err := s.db.Exec(ctx,
		`UPDATE users SET username = ?, email = ? WHERE id = ?`,
		in.Username, in.Email, id,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: update user: %w", err)
	}
	return affected(res)
}

// DeleteUser removes a user and its notes and returns the affected rows.
func (s *Users) DeleteUser(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("storage: delete user: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: rows affected: %w", err)
	}
	return n, nil
}
