package userservice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/starford/notesapi/internal/apperr"
	"github.com/starford/notesapi/internal/models"
)

var ctxArg = mock.Anything

// MockUserStore is a mock implementation of userStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) ListUsers(ctx context.Context, page *models.PageRequest) ([]models.User, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserStore) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) CreateUser(ctx context.Context, in models.UserInput) (int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserStore) UpdateUser(ctx context.Context, id int64, in models.UserInput) (int64, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserStore) DeleteUser(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) PublishChange(kind string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind)
}

type countingTx struct{ calls, readCalls int }

func (c *countingTx) RunInTx(ctx context.Context, f func(context.Context) error) error {
	c.calls++
	return f(ctx)
}

func (c *countingTx) RunInReadTx(ctx context.Context, f func(context.Context) error) error {
	c.readCalls++
	return f(ctx)
}

func TestListUsers_WithPage(t *testing.T) {
	store := new(MockUserStore)
	tx := &countingTx{}
	svc := NewService(store, WithTx(tx))

	page := &models.PageRequest{Page: 2, Size: 1}
	store.On("ListUsers", ctxArg, page).Return([]models.User{{ID: 2, Username: "b", Email: "b@x"}}, nil)
	store.On("CountUsers", ctxArg).Return(int64(3), nil)

	resp, err := svc.ListUsers(context.Background(), page)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	require.NotNil(t, resp.PaginationInfo)
	assert.Equal(t, models.PaginationInfo{Page: 2, Size: 1, TotalRecords: 3}, *resp.PaginationInfo)
	assert.Equal(t, 1, tx.readCalls, "data and count read in one transaction")
	assert.Zero(t, tx.calls, "listing needs no write transaction")
	store.AssertExpectations(t)
}

func TestListUsers_WithoutPage(t *testing.T) {
	store := new(MockUserStore)
	svc := NewService(store)

	store.On("ListUsers", ctxArg, (*models.PageRequest)(nil)).Return(nil, nil)

	resp, err := svc.ListUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, resp.Items, "items is never nil")
	assert.Empty(t, resp.Items)
	assert.Nil(t, resp.PaginationInfo)
	store.AssertNotCalled(t, "CountUsers", ctxArg)
}

func TestListUsers_StoreError(t *testing.T) {
	store := new(MockUserStore)
	svc := NewService(store)
	boom := errors.New("db down")

	store.On("ListUsers", ctxArg, (*models.PageRequest)(nil)).Return(nil, boom)

	_, err := svc.ListUsers(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetUser(t *testing.T) {
	store := new(MockUserStore)
	svc := NewService(store)

	store.On("GetUser", ctxArg, int64(1)).Return(&models.User{ID: 1, Username: "alice", Email: "a@x.com"}, nil)
	store.On("GetUser", ctxArg, int64(2)).Return(nil, nil)

	u, err := svc.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.GetUser(context.Background(), 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateUser_PublishesEvent(t *testing.T) {
	store := new(MockUserStore)
	rec := &recorder{}
	svc := NewService(store, WithPublisher(rec))

	in := models.UserInput{Username: "alice", Email: "a@x.com"}
	store.On("CreateUser", ctxArg, in).Return(int64(7), nil)

	id, err := svc.CreateUser(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, []string{EventCreated}, rec.events)
}

func TestUpdateUser_ZeroRowsIsNotFound(t *testing.T) {
	store := new(MockUserStore)
	rec := &recorder{}
	svc := NewService(store, WithPublisher(rec))

	in := models.UserInput{Username: "x", Email: "y"}
	store.On("UpdateUser", ctxArg, int64(9), in).Return(int64(0), nil)
	store.On("UpdateUser", ctxArg, int64(1), in).Return(int64(1), nil)

	err := svc.UpdateUser(context.Background(), 9, in)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, rec.events, "no event on failed update")

	require.NoError(t, svc.UpdateUser(context.Background(), 1, in))
	assert.Equal(t, []string{EventUpdated}, rec.events)
}

func TestDeleteUser(t *testing.T) {
	store := new(MockUserStore)
	svc := NewService(store)

	store.On("DeleteUser", ctxArg, int64(1)).Return(int64(1), nil)
	store.On("DeleteUser", ctxArg, int64(2)).Return(int64(0), nil)
	store.On("DeleteUser", ctxArg, int64(3)).Return(int64(0), errors.New("locked"))

	assert.NoError(t, svc.DeleteUser(context.Background(), 1))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), 2), apperr.ErrNotFound)

	err := svc.DeleteUser(context.Background(), 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)
}
