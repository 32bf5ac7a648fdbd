package noteservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/starford/notesapi/internal/apperr"
	"github.com/starford/notesapi/internal/models"
)

var (
	ctxArg   = mock.Anything
	timeArg  = mock.AnythingOfType("time.Time")
	fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.FixedZone("X", 3*3600))
)

// MockNoteStore is a mock implementation of noteStore.
type MockNoteStore struct {
	mock.Mock
}

func (m *MockNoteStore) ListNotes(ctx context.Context, userID int64, page *models.PageRequest) ([]models.Note, error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockNoteStore) CountNotes(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoteStore) GetNote(ctx context.Context, userID, noteID int64) (*models.Note, error) {
	args := m.Called(ctx, userID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteStore) CreateNote(ctx context.Context, userID int64, in models.NoteInput, createdAt time.Time) (int64, error) {
	args := m.Called(ctx, userID, in, createdAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoteStore) UpdateNote(ctx context.Context, userID, noteID int64, in models.NoteInput, updatedAt time.Time) (int64, error) {
	args := m.Called(ctx, userID, noteID, in, updatedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoteStore) DeleteNote(ctx context.Context, userID, noteID int64) (int64, error) {
	args := m.Called(ctx, userID, noteID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUsers is a mock implementation of userLookup.
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type recorder struct {
	events []string
}

func (r *recorder) PublishChange(kind string, _ any) {
	r.events = append(r.events, kind)
}

func newTestService(opts ...Option) (*Service, *MockUsers, *MockNoteStore) {
	users := new(MockUsers)
	notes := new(MockNoteStore)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(users, notes, opts...), users, notes
}

func TestListNotes_OwnerMissing(t *testing.T) {
	svc, users, notes := newTestService()
	users.On("GetUser", ctxArg, int64(5)).Return(nil, nil)

	_, err := svc.ListNotes(context.Background(), 5, &models.PageRequest{Page: 1, Size: 10})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	notes.AssertNotCalled(t, "ListNotes", ctxArg, mock.Anything, mock.Anything)
}

func TestListNotes_Paged(t *testing.T) {
	svc, users, notes := newTestService()
	page := &models.PageRequest{Page: 1, Size: 10}

	users.On("GetUser", ctxArg, int64(1)).Return(&models.User{ID: 1}, nil)
	notes.On("ListNotes", ctxArg, int64(1), page).Return([]models.Note{{ID: 1, UserID: 1}}, nil)
	notes.On("CountNotes", ctxArg, int64(1)).Return(int64(1), nil)

	resp, err := svc.ListNotes(context.Background(), 1, page)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, &models.PaginationInfo{Page: 1, Size: 10, TotalRecords: 1}, resp.PaginationInfo)
}

func TestListNotes_Unpaged(t *testing.T) {
	svc, users, notes := newTestService()

	users.On("GetUser", ctxArg, int64(1)).Return(&models.User{ID: 1}, nil)
	notes.On("ListNotes", ctxArg, int64(1), (*models.PageRequest)(nil)).Return([]models.Note{}, nil)

	resp, err := svc.ListNotes(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Nil(t, resp.PaginationInfo)
	notes.AssertNotCalled(t, "CountNotes", ctxArg, int64(1))
}

func TestGetNote_NotFound(t *testing.T) {
	svc, _, notes := newTestService()
	notes.On("GetNote", ctxArg, int64(2), int64(1)).Return(nil, nil)

	_, err := svc.GetNote(context.Background(), 2, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateNote_StampsUTC(t *testing.T) {
	rec := &recorder{}
	svc, users, notes := newTestService(WithPublisher(rec))
	in := models.NoteInput{Title: "t", Content: "c"}
	want := fixedNow.UTC().Truncate(time.Microsecond)

	users.On("GetUser", ctxArg, int64(1)).Return(&models.User{ID: 1}, nil)
	notes.On("CreateNote", ctxArg, int64(1), in, want).Return(int64(11), nil)

	id, err := svc.CreateNote(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, []string{EventCreated}, rec.events)
	notes.AssertExpectations(t)
}

func TestCreateNote_OwnerMissing(t *testing.T) {
	rec := &recorder{}
	svc, users, notes := newTestService(WithPublisher(rec))
	users.On("GetUser", ctxArg, int64(999)).Return(nil, nil)

	_, err := svc.CreateNote(context.Background(), 999, models.NoteInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	notes.AssertNotCalled(t, "CreateNote", ctxArg, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, rec.events)
}

func TestCreateNote_OwnerLookupFails(t *testing.T) {
	svc, users, _ := newTestService()
	boom := errors.New("db down")
	users.On("GetUser", ctxArg, int64(1)).Return(nil, boom)

	_, err := svc.CreateNote(context.Background(), 1, models.NoteInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateNote(t *testing.T) {
	svc, _, notes := newTestService()
	in := models.NoteInput{Title: "t", Content: "c"}

	notes.On("UpdateNote", ctxArg, int64(1), int64(1), in, timeArg).Return(int64(1), nil)
	notes.On("UpdateNote", ctxArg, int64(2), int64(1), in, timeArg).Return(int64(0), nil)

	require.NoError(t, svc.UpdateNote(context.Background(), 1, 1, in))
	assert.ErrorIs(t, svc.UpdateNote(context.Background(), 2, 1, in), apperr.ErrNotFound)

	stamped := notes.Calls[0].Arguments.Get(4).(time.Time)
	assert.Equal(t, time.UTC, stamped.Location())
}

func TestDeleteNote(t *testing.T) {
	svc, _, notes := newTestService()

	notes.On("DeleteNote", ctxArg, int64(1), int64(1)).Return(int64(1), nil)
	notes.On("DeleteNote", ctxArg, int64(1), int64(2)).Return(int64(0), nil)

	assert.NoError(t, svc.DeleteNote(context.Background(), 1, 1))
	assert.ErrorIs(t, svc.DeleteNote(context.Background(), 1, 2), apperr.ErrNotFound)
}
