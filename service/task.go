package service

import (
	"context"

	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

// TaskService creates tasks and moves them between open and done.
type TaskService struct {
	users user.Repository
	tasks task.Repository
}

// NewTaskService creates a TaskService. users is needed to resolve creators.
func NewTaskService(users user.Repository, tasks task.Repository) *TaskService {
	return &TaskService{users: users, tasks: tasks}
}

// CreateTask creates an open task for the user with userID. It fails with
// user.ErrNotFound when there is no such user.
func (s *TaskService) CreateTask(ctx context.Context, userID int64, text string) (task.Task, error) {
	creator, err := s.users.Get(ctx, userID)
	if err != nil {
		return task.Task{}, err
	}

	t, err := task.New(text, creator)
	if err != nil {
		return task.Task{}, err
	}
	return s.tasks.Save(ctx, t)
}

// CreateTaskForIdentity resolves identity to a user and creates the task.
func (s *TaskService) CreateTaskForIdentity(ctx context.Context, identity, text string) (task.Task, error) {
	userID, err := s.users.IDByIdentity(ctx, identity)
	if err != nil {
		return task.Task{}, err
	}
	return s.CreateTask(ctx, userID, text)
}

// MarkDone sets the task done. Marking a done task again is a no-op.
func (s *TaskService) MarkDone(ctx context.Context, id int64) (task.Task, error) {
	return s.setDone(ctx, id, true)
}

// Reopen clears the done flag. Reopening an open task is a no-op.
func (s *TaskService) Reopen(ctx context.Context, id int64) (task.Task, error) {
	return s.setDone(ctx, id, false)
}

func (s *TaskService) setDone(ctx context.Context, id int64, done bool) (task.Task, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	return s.tasks.Save(ctx, t.WithDone(done))
}

// ListUserTasks returns the user's tasks in creation order. It fails with
// user.ErrNotFound for an unknown user rather than returning an empty list.
func (s *TaskService) ListUserTasks(ctx context.Context, userID int64) ([]task.Task, error) {
	creator, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.tasks.ListByUser(ctx, creator)
}

// GetTask returns the task with id or task.ErrNotFound.
func (s *TaskService) GetTask(ctx context.Context, id int64) (task.Task, error) {
	return s.tasks.Get(ctx, id)
}

// DeleteTask reports whether a task was removed.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) (bool, error) {
	return s.tasks.Delete(ctx, id)
}
