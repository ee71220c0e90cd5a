package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TrackerPort is how other modules reach the tracker. Domain failures come
// back as *ServiceError, which errors.Is matches against the domain sentinels.
type TrackerPort interface {
	RegisterUser(ctx context.Context, req RegisterUserRequest) (UserView, error)
	GetUser(ctx context.Context, userID int64) (UserView, error)
	ResolveUser(ctx context.Context, identity string) (int64, error)
	DeleteUser(ctx context.Context, userID int64) (bool, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (TaskView, error)
	ListTasks(ctx context.Context, userID int64) ([]TaskView, error)
	GetTask(ctx context.Context, taskID int64) (TaskView, error)
	SetTaskStatus(ctx context.Context, req SetTaskStatusRequest) (TaskView, error)
	DeleteTask(ctx context.Context, taskID int64) (bool, error)
}

// trackerAdapter wraps ServiceContainer for type-safe cross-module calls.
type trackerAdapter struct {
	container mono.ServiceContainer
}

// NewTrackerAdapter creates a TrackerPort over the tracker module's container,
// as received via SetDependencyServiceContainer.
func NewTrackerAdapter(container mono.ServiceContainer) TrackerPort {
	if container == nil {
		panic("tracker adapter requires non-nil ServiceContainer")
	}
	return &trackerAdapter{container: container}
}

func (a *trackerAdapter) RegisterUser(ctx context.Context, req RegisterUserRequest) (UserView, error) {
	var resp UserResponse
	if err := call(ctx, a.container, "register-user", &req, &resp); err != nil {
		return UserView{}, err
	}
	return unwrapUser(resp)
}

func (a *trackerAdapter) GetUser(ctx context.Context, userID int64) (UserView, error) {
	req := GetUserRequest{UserID: userID}
	var resp UserResponse
	if err := call(ctx, a.container, "get-user", &req, &resp); err != nil {
		return UserView{}, err
	}
	return unwrapUser(resp)
}

func (a *trackerAdapter) ResolveUser(ctx context.Context, identity string) (int64, error) {
	req := ResolveUserRequest{Identity: identity}
	var resp ResolveUserResponse
	if err := call(ctx, a.container, "resolve-user", &req, &resp); err != nil {
		return 0, err
	}
	if resp.Error != nil {
		return 0, resp.Error
	}
	return resp.UserID, nil
}

func (a *trackerAdapter) DeleteUser(ctx context.Context, userID int64) (bool, error) {
	req := DeleteUserRequest{UserID: userID}
	var resp DeleteResponse
	if err := call(ctx, a.container, "delete-user", &req, &resp); err != nil {
		return false, err
	}
	return unwrapDelete(resp)
}

func (a *trackerAdapter) CreateTask(ctx context.Context, req CreateTaskRequest) (TaskView, error) {
	var resp TaskResponse
	if err := call(ctx, a.container, "create-task", &req, &resp); err != nil {
		return TaskView{}, err
	}
	return unwrapTask(resp)
}

func (a *trackerAdapter) ListTasks(ctx context.Context, userID int64) ([]TaskView, error) {
	req := ListTasksRequest{UserID: userID}
	var resp ListTasksResponse
	if err := call(ctx, a.container, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	return unwrapTasks(resp)
}

func (a *trackerAdapter) GetTask(ctx context.Context, taskID int64) (TaskView, error) {
	req := GetTaskRequest{TaskID: taskID}
	var resp TaskResponse
	if err := call(ctx, a.container, "get-task", &req, &resp); err != nil {
		return TaskView{}, err
	}
	return unwrapTask(resp)
}

func (a *trackerAdapter) SetTaskStatus(ctx context.Context, req SetTaskStatusRequest) (TaskView, error) {
	var resp TaskResponse
	if err := call(ctx, a.container, "set-task-status", &req, &resp); err != nil {
		return TaskView{}, err
	}
	return unwrapTask(resp)
}

func (a *trackerAdapter) DeleteTask(ctx context.Context, taskID int64) (bool, error) {
	req := DeleteTaskRequest{TaskID: taskID}
	var resp DeleteResponse
	if err := call(ctx, a.container, "delete-task", &req, &resp); err != nil {
		return false, err
	}
	return unwrapDelete(resp)
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// The unwrap helpers return the reply's error only when set, so a nil
// *ServiceError never becomes a non-nil error.

func unwrapUser(resp UserResponse) (UserView, error) {
	if resp.Error != nil {
		return UserView{}, resp.Error
	}
	if resp.User == nil {
		return UserView{}, errors.New("empty user reply")
	}
	return *resp.User, nil
}

func unwrapTask(resp TaskResponse) (TaskView, error) {
	if resp.Error != nil {
		return TaskView{}, resp.Error
	}
	if resp.Task == nil {
		return TaskView{}, errors.New("empty task reply")
	}
	return *resp.Task, nil
}

func unwrapTasks(resp ListTasksResponse) ([]TaskView, error) {
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Tasks == nil {
		return []TaskView{}, nil
	}
	return resp.Tasks, nil
}

func unwrapDelete(resp DeleteResponse) (bool, error) {
	if resp.Error != nil {
		return false, resp.Error
	}
	return resp.Success, nil
}
