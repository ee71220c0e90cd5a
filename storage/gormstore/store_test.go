package gormstore

import (
	"context"
	"errors"
	"testing"

	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/storage/storagetest"
)

// setupTestStore opens an in-memory SQLite database for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:", false)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) (user.Repository, task.Repository) {
		s := setupTestStore(t)
		return s.Users(), s.Tasks()
	})
}

func TestStore_WithinTx_RollsBack(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	errAbort := errors.New("abort")

	err := store.WithinTx(ctx, func(users user.Repository, tasks task.Repository) error {
		alice, err := users.Save(ctx, user.User{Identity: "alice"})
		if err != nil {
			return err
		}
		if _, err := tasks.Save(ctx, task.Task{Text: "buy milk", Creator: alice}); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("expected abort error, got %v", err)
	}

	exists, err := store.Users().ExistsByIdentity(ctx, "alice")
	if err != nil {
		t.Fatalf("ExistsByIdentity() error = %v", err)
	}
	if exists {
		t.Error("expected user insert to be rolled back")
	}
}

func TestStore_WithinTx_Commits(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var created task.Task
	err := store.WithinTx(ctx, func(users user.Repository, tasks task.Repository) error {
		alice, err := users.Save(ctx, user.User{Identity: "alice"})
		if err != nil {
			return err
		}
		created, err = tasks.Save(ctx, task.Task{Text: "buy milk", Creator: alice})
		return err
	})
	if err != nil {
		t.Fatalf("WithinTx() error = %v", err)
	}

	got, err := store.Tasks().Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Creator.Identity != "alice" {
		t.Errorf("expected creator %q, got %q", "alice", got.Creator.Identity)
	}
}

func TestStore_Health(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if store.Driver() != "sqlite" {
		t.Errorf("expected driver %q, got %q", "sqlite", store.Driver())
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "tasks.db", want: "tasks.db?_foreign_keys=on"},
		{path: ":memory:", want: ":memory:?_foreign_keys=on"},
		{path: "file:tasks.db?cache=shared", want: "file:tasks.db?cache=shared&_foreign_keys=on"},
	}
	for _, tt := range tests {
		if got := dsn(tt.path); got != tt.want {
			t.Errorf("dsn(%q): expected %q, got %q", tt.path, tt.want, got)
		}
	}
}
