package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notesapi/internal/models"
	"github.com/starford/notesapi/internal/testutil"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestUsers_CRUD(t *testing.T) {
	ctx := context.Background()
	_, users, _ := testutil.TestStores(t)

	id, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	u, err := users.GetUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, models.User{ID: 1, Username: "alice", Email: "a@x.com"}, *u)

	n, err := users.UpdateUser(ctx, id, models.UserInput{Username: "alicia", Email: "b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err = users.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.Username)

	n, err = users.DeleteUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err = users.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, u, "absent user is nil, not an error")
}

func TestUsers_MissingRowsAffectNothing(t *testing.T) {
	ctx := context.Background()
	_, users, _ := testutil.TestStores(t)

	n, err := users.UpdateUser(ctx, 42, models.UserInput{Username: "x", Email: "y"})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = users.DeleteUser(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUsers_ListAndCount(t *testing.T) {
	ctx := context.Background()
	_, users, _ := testutil.TestStores(t)

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		_, err := users.CreateUser(ctx, models.UserInput{Username: name, Email: name + "@x.com"})
		require.NoError(t, err)
	}

	all, err := users.ListUsers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID, "ascending id order")
	}

	page, err := users.ListUsers(ctx, &models.PageRequest{Page: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].Username)
	assert.Equal(t, "d", page[1].Username)

	last, err := users.ListUsers(ctx, &models.PageRequest{Page: 3, Size: 2})
	require.NoError(t, err)
	assert.Len(t, last, 1)

	beyond, err := users.ListUsers(ctx, &models.PageRequest{Page: 10, Size: 2})
	require.NoError(t, err)
	assert.NotNil(t, beyond)
	assert.Empty(t, beyond)

	total, err := users.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestNotes_ScopedByOwner(t *testing.T) {
	ctx := context.Background()
	_, users, notes := testutil.TestStores(t)

	alice, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	bob, err := users.CreateUser(ctx, models.UserInput{Username: "bob", Email: "b@x.com"})
	require.NoError(t, err)

	noteID, err := notes.CreateNote(ctx, alice, models.NoteInput{Title: "t", Content: "c"}, t0)
	require.NoError(t, err)

	got, err := notes.GetNote(ctx, alice, noteID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice, got.UserID)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, "c", got.Content)
	assert.True(t, got.CreatedAt.Equal(t0), "created_at = %v", got.CreatedAt)
	assert.Nil(t, got.UpdatedAt)

	other, err := notes.GetNote(ctx, bob, noteID)
	require.NoError(t, err)
	assert.Nil(t, other, "note must not be visible through another owner")

	n, err := notes.UpdateNote(ctx, bob, noteID, models.NoteInput{Title: "x", Content: "y"}, t0)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = notes.DeleteNote(ctx, bob, noteID)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := notes.CountNotes(ctx, bob)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotes_UpdateSetsTimestamp(t *testing.T) {
	ctx := context.Background()
	_, users, notes := testutil.TestStores(t)

	uid, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	nid, err := notes.CreateNote(ctx, uid, models.NoteInput{Title: "t", Content: "c"}, t0)
	require.NoError(t, err)

	updatedAt := t0.Add(time.Hour + 123*time.Microsecond)
	n, err := notes.UpdateNote(ctx, uid, nid, models.NoteInput{Title: "t2", Content: "c2"}, updatedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := notes.GetNote(ctx, uid, nid)
	require.NoError(t, err)
	assert.Equal(t, "t2", got.Title)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.Equal(updatedAt), "updated_at = %v", got.UpdatedAt)
	assert.Equal(t, time.UTC, got.UpdatedAt.Location())
}

func TestNotes_ListOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	_, users, notes := testutil.TestStores(t)

	uid, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	other, err := users.CreateUser(ctx, models.UserInput{Username: "bob", Email: "b@x.com"})
	require.NoError(t, err)

	var ids []int64
	for i := range 4 {
		id, err := notes.CreateNote(ctx, uid, models.NoteInput{Title: "t", Content: "c"}, t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err = notes.CreateNote(ctx, other, models.NoteInput{Title: "b", Content: "b"}, t0)
	require.NoError(t, err)

	all, err := notes.ListNotes(ctx, uid, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ids[3], all[0].ID, "newest first")
	assert.Equal(t, ids[0], all[3].ID)

	page, err := notes.ListNotes(ctx, uid, &models.PageRequest{Page: 2, Size: 3})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)

	count, err := notes.CountNotes(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestNotes_ListTieBreaksOnUpdate(t *testing.T) {
	ctx := context.Background()
	_, users, notes := testutil.TestStores(t)

	uid, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	first, err := notes.CreateNote(ctx, uid, models.NoteInput{Title: "1", Content: "c"}, t0)
	require.NoError(t, err)
	second, err := notes.CreateNote(ctx, uid, models.NoteInput{Title: "2", Content: "c"}, t0)
	require.NoError(t, err)

	_, err = notes.UpdateNote(ctx, uid, first, models.NoteInput{Title: "1", Content: "c2"}, t0.Add(time.Minute))
	require.NoError(t, err)

	all, err := notes.ListNotes(ctx, uid, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first, all[0].ID, "same creation time: updated note first")
	assert.Equal(t, second, all[1].ID)
}

func TestDeleteUserCascadesNotes(t *testing.T) {
	ctx := context.Background()
	_, users, notes := testutil.TestStores(t)

	uid, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	_, err = notes.CreateNote(ctx, uid, models.NoteInput{Title: "t", Content: "c"}, t0)
	require.NoError(t, err)

	_, err = users.DeleteUser(ctx, uid)
	require.NoError(t, err)

	count, err := notes.CountNotes(ctx, uid)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateNote_UnknownOwnerRejectedByForeignKey(t *testing.T) {
	ctx := context.Background()
	_, _, notes := testutil.TestStores(t)

	_, err := notes.CreateNote(ctx, 999, models.NoteInput{Title: "t", Content: "c"}, t0)
	assert.Error(t, err)
}
