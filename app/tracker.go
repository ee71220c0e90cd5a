// Package app composes the services into the facade the boundary talks to.
package app

import (
	"context"

	"github.com/example/task-tracker/command"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/service"
)

// Tracker groups the user and task operations. It holds no data of its own.
type Tracker struct {
	Users *Users
	Tasks *Tasks
}

// New wires a Tracker from ready services.
func New(users *service.UserService, tasks *service.TaskService) *Tracker {
	return &Tracker{
		Users: &Users{svc: users},
		Tasks: &Tasks{svc: tasks},
	}
}

// NewFromRepositories builds the services over users and tasks and wires a
// Tracker from them.
func NewFromRepositories(users user.Repository, tasks task.Repository) *Tracker {
	return New(service.NewUserService(users), service.NewTaskService(users, tasks))
}

// Users forwards to service.UserService.
type Users struct {
	svc *service.UserService
}

func (u *Users) Register(ctx context.Context, cmd command.RegisterUser) (user.User, error) {
	return u.svc.RegisterUser(ctx, cmd.Identity)
}

func (u *Users) Get(ctx context.Context, id int64) (user.User, error) {
	return u.svc.GetUser(ctx, id)
}

func (u *Users) Delete(ctx context.Context, id int64) (bool, error) {
	return u.svc.DeleteUser(ctx, id)
}

func (u *Users) ResolveID(ctx context.Context, identity string) (int64, error) {
	return u.svc.ResolveID(ctx, identity)
}

// Tasks forwards to service.TaskService.
type Tasks struct {
	svc *service.TaskService
}

// Create resolves the creator by id or by identity, whichever cmd names.
func (t *Tasks) Create(ctx context.Context, cmd command.CreateTask) (task.Task, error) {
	if cmd.ByIdentity() {
		return t.svc.CreateTaskForIdentity(ctx, cmd.Identity, cmd.Text)
	}
	return t.svc.CreateTask(ctx, cmd.UserID, cmd.Text)
}

func (t *Tasks) MarkDone(ctx context.Context, id int64) (task.Task, error) {
	return t.svc.MarkDone(ctx, id)
}

func (t *Tasks) Reopen(ctx context.Context, id int64) (task.Task, error) {
	return t.svc.Reopen(ctx, id)
}

// SetStatus marks the task done or reopens it.
func (t *Tasks) SetStatus(ctx context.Context, cmd command.SetStatus) (task.Task, error) {
	if cmd.Done {
		return t.MarkDone(ctx, cmd.TaskID)
	}
	return t.Reopen(ctx, cmd.TaskID)
}

func (t *Tasks) List(ctx context.Context, userID int64) ([]task.Task, error) {
	return t.svc.ListUserTasks(ctx, userID)
}

func (t *Tasks) Get(ctx context.Context, id int64) (task.Task, error) {
	return t.svc.GetTask(ctx, id)
}

func (t *Tasks) Delete(ctx context.Context, id int64) (bool, error) {
	return t.svc.DeleteTask(ctx, id)
}
