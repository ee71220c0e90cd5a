package task

import (
	"context"

	"github.com/example/task-tracker/domain/user"
)

// Repository persists tasks. Missing tasks fail with ErrNotFound.
type Repository interface {
	// Save inserts t when t.ID is zero, otherwise persists its text and done
	// fields. The returned task carries a fully resolved creator.
	Save(ctx context.Context, t Task) (Task, error)
	Get(ctx context.Context, id int64) (Task, error)
	// ListByUser returns the creator's tasks in insertion order. Each call
	// returns a fresh slice.
	ListByUser(ctx context.Context, creator user.User) ([]Task, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
