package internal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/notesapi/internal/models"
	"github.com/starford/notesapi/internal/sse"
	"github.com/starford/notesapi/internal/testutil"
)

func TestReloadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app:\n  log_level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	level := new(slog.LevelVar)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reloadLogLevel(path, level, log)
	if level.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level.Level())
	}

	// An invalid file keeps the current level.
	if err := os.WriteFile(path, []byte("app:\n  http:\n    port: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	reloadLogLevel(path, level, log)
	if level.Level() != slog.LevelDebug {
		t.Errorf("level changed on invalid config: %v", level.Level())
	}
}

func TestNewServicesPublishChanges(t *testing.T) {
	db := testutil.TestDB(t)
	broker := sse.NewBroker(0)
	defer broker.Close()
	ch := broker.Subscribe()

	users, notes := newServices(db, broker)
	ctx := context.Background()
	uid, err := users.CreateUser(ctx, models.UserInput{Username: "alice", Email: "a@x.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := notes.CreateNote(ctx, uid, models.NoteInput{Title: "t", Content: "c"}); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"event: user.created", "event: note.created"} {
		select {
		case msg := <-ch:
			if !strings.Contains(string(msg), want) {
				t.Errorf("got %q, want %q", msg, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s", want)
		}
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("Run without config should fail")
	}
}
