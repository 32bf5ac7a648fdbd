// Package userservice holds the business rules for users.
package userservice

import (
	"context"
	"fmt"

	"github.com/starford/notesapi/internal/apperr"
	"github.com/starford/notesapi/internal/models"
)

// Event kinds published after successful writes.
const (
	EventCreated = "user.created"
	EventUpdated = "user.updated"
	EventDeleted = "user.deleted"
)

type userStore interface {
	ListUsers(ctx context.Context, page *models.PageRequest) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) (int64, error)
	UpdateUser(ctx context.Context, id int64, in models.UserInput) (int64, error)
	DeleteUser(ctx context.Context, id int64) (int64, error)
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

// WithTx makes multi-step reads run inside one transaction.
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

// Service implements user operations. It keeps no state between calls.
type Service struct {
	store userStore
	tx    txRunner
	pub   publisher
}

// NewService creates a user service.
func NewService(store userStore, opts ...Option) *Service {
	s := &Service{store: store, tx: noTx{}, pub: noPublisher{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUsers returns users by ascending id. Pagination info is attached only
// when page is non-nil.
func (s *Service) ListUsers(ctx context.Context, page *models.PageRequest) (*models.ItemsResponse[models.User], error) {
	resp := &models.ItemsResponse[models.User]{Items: []models.User{}}

	err := s.tx.RunInReadTx(ctx, func(ctx context.Context) error {
		users, err := s.store.ListUsers(ctx, page)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if users != nil {
			resp.Items = users
		}
		if page == nil {
			return nil
		}

		total, err := s.store.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
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

// GetUser returns the user or apperr.ErrNotFound.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
	}
	return u, nil
}

// CreateUser stores an already validated user and returns its id.
func (s *Service) CreateUser(ctx context.Context, in models.UserInput) (int64, error) {
	id, err := s.store.CreateUser(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	s.pub.PublishChange(EventCreated, map[string]int64{"id": id})
	return id, nil
}

// UpdateUser replaces username and email. Zero affected rows is
// apperr.ErrNotFound.
func (s *Service) UpdateUser(ctx context.Context, id int64, in models.UserInput) error {
	n, err := s.store.UpdateUser(ctx, id, in)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
	}
	s.pub.PublishChange(EventUpdated, map[string]int64{"id": id})
	return nil
}

// DeleteUser removes the user and, through the schema, its notes.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	n, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
	}
	s.pub.PublishChange(EventDeleted, map[string]int64{"id": id})
	return nil
}

type noTx struct{}

func (noTx) RunInTx(ctx context.Context, f func(context.Context) error) error { return f(ctx) }

func (noTx) RunInReadTx(ctx context.Context, f func(context.Context) error) error { return f(ctx) }

type noPublisher struct{}

func (noPublisher) PublishChange(string, any) {}
