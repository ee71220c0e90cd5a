package task

import (
	"strings"

	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/user"
)

// Task is a todo item owned by its creator. ID is zero until persisted.
type Task struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Done    bool      `json:"done"`
	Creator user.User `json:"creator"`
}

// New returns an open, unsaved task for a persisted creator.
func New(text string, creator user.User) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, failure.NewValidationError("text", "is required")
	}
	if !creator.Persisted() {
		return Task{}, failure.NewValidationError("user_id", "creator must be a persisted user")
	}
	return Task{Text: text, Creator: creator}, nil
}

// MarkDone returns a copy of t with Done set.
func (t Task) MarkDone() Task {
	t.Done = true
	return t
}

// Reopen returns a copy of t with Done cleared.
func (t Task) Reopen() Task {
	t.Done = false
	return t
}

// WithDone returns a copy of t in the given state.
func (t Task) WithDone(done bool) Task {
	if done {
		return t.MarkDone()
	}
	return t.Reopen()
}
