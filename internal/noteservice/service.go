// Package noteservice holds the business rules for notes. Every note is
// reached through its owner; a note under another owner does not exist.
package noteservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/notesapi/internal/apperr"
	"github.com/starford/notesapi/internal/models"
)

// Event kinds published after successful writes.
const (
	EventCreated = "note.created"
	EventUpdated = "note.updated"
	EventDeleted = "note.deleted"
)

type noteStore interface {
	ListNotes(ctx context.Context, userID int64, page *models.PageRequest) ([]models.Note, error)
	CountNotes(ctx context.Context, userID int64) (int64, error)
	GetNote(ctx context.Context, userID, noteID int64) (*models.Note, error)
	CreateNote(ctx context.Context, userID int64, in models.NoteInput, createdAt time.Time) (int64, error)
	UpdateNote(ctx context.Context, userID, noteID int64, in models.NoteInput, updatedAt time.Time) (int64, error)
	DeleteNote(ctx context.Context, userID, noteID int64) (int64, error)
}

type userLookup interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type txRunner interface {
	RunInTx(ctx context.Context, f func(context.Context) error) error
	RunInReadTx(ctx context.Context, f func(context.Context) error) error
}

type publisher interface {
	PublishChange(kind string, data any)
}

// Option configures a Service.
type Option func(*Service)

// WithTx makes owner checks and the reads or writes that follow them run in
// one transaction.
func WithTx(tx txRunner) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithPublisher sets where change events go.
func WithPublisher(p publisher) Option {
	return func(s *Service) {
		s.pub = p
	}
}

// WithClock overrides time.Now for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service implements note operations.
type Service struct {
	users userLookup
	notes noteStore
	tx    txRunner
	pub   publisher
	now   func() time.Time
}

// NewService creates a note service.
func NewService(users userLookup, notes noteStore, opts ...Option) *Service {
	s := &Service{
		users: users,
		notes: notes,
		tx:    noTx{},
		pub:   noPublisher{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListNotes returns the owner's notes, newest first. The owner must exist.
func (s *Service) ListNotes(ctx context.Context, userID int64, page *models.PageRequest) (*models.ItemsResponse[models.Note], error) {
	resp := &models.ItemsResponse[models.Note]{Items: []models.Note{}}

	err := s.tx.RunInReadTx(ctx, func(ctx context.Context) error {
		if err := s.requireUser(ctx, userID); err != nil {
			return err
		}

		notes, err := s.notes.ListNotes(ctx, userID, page)
		if err != nil {
			return fmt.Errorf("list notes: %w", err)
		}
		if notes != nil {
			resp.Items = notes
		}
		if page == nil {
			return nil
		}

		total, err := s.notes.CountNotes(ctx, userID)
		if err != nil {
			return fmt.Errorf("count notes: %w", err)
		}
		resp.PaginationInfo = &models.PaginationInfo{
			Page:         page.Page,
			Size:         page.Size,
			TotalRecords: total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetNote returns the note or apperr.ErrNotFound.
func (s *Service) GetNote(ctx context.Context, userID, noteID int64) (*models.Note, error) {
	n, err := s.notes.GetNote(ctx, userID, noteID)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	if n == nil {
		return nil, fmt.Errorf("note %d of user %d: %w", noteID, userID, apperr.ErrNotFound)
	}
	return n, nil
}

// CreateNote stores an already validated note for an existing owner and
// returns its id.
func (s *Service) CreateNote(ctx context.Context, userID int64, in models.NoteInput) (int64, error) {
	createdAt := s.stamp()

	var id int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireUser(ctx, userID); err != nil {
			return err
		}

		var err error
		id, err = s.notes.CreateNote(ctx, userID, in, createdAt)
		if err != nil {
			return fmt.Errorf("create note: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.pub.PublishChange(EventCreated, map[string]int64{"user_id": userID, "id": id})
	return id, nil
}

// UpdateNote replaces title and content and stamps the update time.
func (s *Service) UpdateNote(ctx context.Context, userID, noteID int64, in models.NoteInput) error {
	n, err := s.notes.UpdateNote(ctx, userID, noteID, in, s.stamp())
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("note %d of user %d: %w", noteID, userID, apperr.ErrNotFound)
	}
	s.pub.PublishChange(EventUpdated, map[string]int64{"user_id": userID, "id": noteID})
	return nil
}

// DeleteNote removes the note.
func (s *Service) DeleteNote(ctx context.Context, userID, noteID int64) error {
	n, err := s.notes.DeleteNote(ctx, userID, noteID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("note %d of user %d: %w", noteID, userID, apperr.ErrNotFound)
	}
	s.pub.PublishChange(EventDeleted, map[string]int64{"user_id": userID, "id": noteID})
	return nil
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get owner: %w", err)
	}
	if u == nil {
		return fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
	}
	return nil
}

// stamp returns the current time in UTC at the precision both SQLite and
// PostgreSQL keep.
func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

type noTx struct{}

func (noTx) RunInTx(ctx context.Context, f func(context.Context) error) error { return f(ctx) }

func (noTx) RunInReadTx(ctx context.Context, f func(context.Context) error) error { return f(ctx) }

type noPublisher struct{}

func (noPublisher) PublishChange(string, any) {}
