// Package events declares the domain events the tracker publishes after a
// change has been committed.
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// UserRegisteredEvent is emitted when a user is registered.
type UserRegisteredEvent struct {
	UserID       int64     `json:"user_id"`
	Identity     string    `json:"identity"`
	RegisteredAt time.Time `json:"registered_at"`
}

// UserRegisteredV1 subject: events.tracker.v1.user-registered
var UserRegisteredV1 = helper.EventDefinition[UserRegisteredEvent](
	"tracker", "UserRegistered", "v1",
)

// UserDeletedEvent is emitted when a user and the user's tasks are removed.
type UserDeletedEvent struct {
	UserID    int64     `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// UserDeletedV1 subject: events.tracker.v1.user-deleted
var UserDeletedV1 = helper.EventDefinition[UserDeletedEvent](
	"tracker", "UserDeleted", "v1",
)

// TaskCreatedEvent is emitted when a new task is created.
type TaskCreatedEvent struct {
	TaskID    int64     `json:"task_id"`
	Text      string    `json:"text"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedV1 subject: events.tracker.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"tracker", "TaskCreated", "v1",
)

// TaskStatusChangedEvent is emitted on every mark-done or reopen, including
// repeated ones.
type TaskStatusChangedEvent struct {
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Done      bool      `json:"done"`
	ChangedAt time.Time `json:"changed_at"`
}

// TaskStatusChangedV1 subject: events.tracker.v1.task-status-changed
var TaskStatusChangedV1 = helper.EventDefinition[TaskStatusChangedEvent](
	"tracker", "TaskStatusChanged", "v1",
)

// TaskDeletedEvent is emitted when a task is deleted on request. Tasks removed
// along with their creator are covered by UserDeletedEvent.
type TaskDeletedEvent struct {
	TaskID    int64     `json:"task_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 subject: events.tracker.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"tracker", "TaskDeleted", "v1",
)
