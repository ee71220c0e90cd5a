package tracker

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-monolith/mono"

	"github.com/example/task-tracker/app"
	"github.com/example/task-tracker/command"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/events"
)

// registerUser handles the register-user service request.
func (m *TrackerModule) registerUser(ctx context.Context, req RegisterUserRequest, _ *mono.Msg) (UserResponse, error) {
	cmd, err := command.ParseRegisterUser(m.kind, command.RegisterUserInput(req))
	if err != nil {
		return userFailure(err, "")
	}

	var u user.User
	err = m.run(ctx, func(tr *app.Tracker) error {
		u, err = tr.Users.Register(ctx, cmd)
		return err
	})
	if err != nil {
		// The unique index can still reject a registration that raced past
		// the existence check.
		return userFailure(err, CodeDuplicateIdentity)
	}

	m.emit("UserRegistered", func(bus mono.EventBus) error {
		return events.UserRegisteredV1.Publish(bus, events.UserRegisteredEvent{
			UserID:       u.ID,
			Identity:     u.Identity,
			RegisteredAt: time.Now(),
		}, nil)
	})

	view := m.userView(u)
	return UserResponse{User: &view}, nil
}

// getUser handles the get-user service request.
func (m *TrackerModule) getUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (UserResponse, error) {
	if err := command.CheckID("user_id", req.UserID); err != nil {
		return userFailure(err, "")
	}

	var u user.User
	err := m.run(ctx, func(tr *app.Tracker) error {
		var err error
		u, err = tr.Users.Get(ctx, req.UserID)
		return err
	})
	if err != nil {
		return userFailure(err, "")
	}

	view := m.userView(u)
	return UserResponse{User: &view}, nil
}

// resolveUser handles the resolve-user service request.
func (m *TrackerModule) resolveUser(ctx context.Context, req ResolveUserRequest, _ *mono.Msg) (ResolveUserResponse, error) {
	identity, err := user.ParseIdentity(m.kind, req.Identity)
	if err != nil {
		se, err := asServiceError(err, "")
		return ResolveUserResponse{Error: se}, err
	}

	var id int64
	err = m.run(ctx, func(tr *app.Tracker) error {
		id, err = tr.Users.ResolveID(ctx, identity)
		return err
	})
	if err != nil {
		se, err := asServiceError(err, "")
		return ResolveUserResponse{Error: se}, err
	}
	return ResolveUserResponse{UserID: id}, nil
}

// deleteUser handles the delete-user service request. The user's tasks are
// removed with it.
func (m *TrackerModule) deleteUser(ctx context.Context, req DeleteUserRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := command.CheckID("user_id", req.UserID); err != nil {
		return deleteFailure(err)
	}

	var deleted bool
	err := m.run(ctx, func(tr *app.Tracker) error {
		var err error
		deleted, err = tr.Users.Delete(ctx, req.UserID)
		return err
	})
	if err != nil {
		return deleteFailure(err)
	}

	if deleted {
		m.emit("UserDeleted", func(bus mono.EventBus) error {
			return events.UserDeletedV1.Publish(bus, events.UserDeletedEvent{
				UserID:    req.UserID,
				DeletedAt: time.Now(),
			}, nil)
		})
	}
	return DeleteResponse{Success: deleted}, nil
}

// createTask handles the create-task service request.
func (m *TrackerModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	cmd, err := command.ParseCreateTask(m.kind, command.CreateTaskInput(req))
	if err != nil {
		return taskFailure(err, "")
	}

	var t task.Task
	err = m.run(ctx, func(tr *app.Tracker) error {
		t, err = tr.Tasks.Create(ctx, cmd)
		return err
	})
	if err != nil {
		// A foreign key violation means the creator vanished mid-request.
		return taskFailure(err, CodeUserNotFound)
	}

	m.emit("TaskCreated", func(bus mono.EventBus) error {
		return events.TaskCreatedV1.Publish(bus, events.TaskCreatedEvent{
			TaskID:    t.ID,
			Text:      t.Text,
			UserID:    t.Creator.ID,
			CreatedAt: time.Now(),
		}, nil)
	})

	view := m.taskView(t)
	return TaskResponse{Task: &view}, nil
}

// listTasks handles the list-tasks service request.
func (m *TrackerModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	if err := command.CheckID("user_id", req.UserID); err != nil {
		se, err := asServiceError(err, "")
		return ListTasksResponse{Error: se}, err
	}

	var tasks []task.Task
	err := m.run(ctx, func(tr *app.Tracker) error {
		var err error
		tasks, err = tr.Tasks.List(ctx, req.UserID)
		return err
	})
	if err != nil {
		se, err := asServiceError(err, "")
		return ListTasksResponse{Error: se}, err
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, m.taskView(t))
	}
	return ListTasksResponse{Tasks: views}, nil
}

// getTask handles the get-task service request.
func (m *TrackerModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := command.CheckID("task_id", req.TaskID); err != nil {
		return taskFailure(err, "")
	}

	var t task.Task
	err := m.run(ctx, func(tr *app.Tracker) error {
		var err error
		t, err = tr.Tasks.Get(ctx, req.TaskID)
		return err
	})
	if err != nil {
		return taskFailure(err, "")
	}

	view := m.taskView(t)
	return TaskResponse{Task: &view}, nil
}

// setTaskStatus handles the set-task-status service request.
func (m *TrackerModule) setTaskStatus(ctx context.Context, req SetTaskStatusRequest, _ *mono.Msg) (TaskResponse, error) {
	cmd, err := command.ParseSetStatus(req.TaskID, command.SetStatusInput{Done: req.Done})
	if err != nil {
		return taskFailure(err, "")
	}

	var t task.Task
	err = m.run(ctx, func(tr *app.Tracker) error {
		t, err = tr.Tasks.SetStatus(ctx, cmd)
		return err
	})
	if err != nil {
		return taskFailure(err, "")
	}

	m.emit("TaskStatusChanged", func(bus mono.EventBus) error {
		return events.TaskStatusChangedV1.Publish(bus, events.TaskStatusChangedEvent{
			TaskID:    t.ID,
			UserID:    t.Creator.ID,
			Done:      t.Done,
			ChangedAt: time.Now(),
		}, nil)
	})

	view := m.taskView(t)
	return TaskResponse{Task: &view}, nil
}

// deleteTask handles the delete-task service request.
func (m *TrackerModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := command.CheckID("task_id", req.TaskID); err != nil {
		return deleteFailure(err)
	}

	var deleted bool
	err := m.run(ctx, func(tr *app.Tracker) error {
		var err error
		deleted, err = tr.Tasks.Delete(ctx, req.TaskID)
		return err
	})
	if err != nil {
		return deleteFailure(err)
	}

	if deleted {
		m.emit("TaskDeleted", func(bus mono.EventBus) error {
			return events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{
				TaskID:    req.TaskID,
				DeletedAt: time.Now(),
			}, nil)
		})
	}
	return DeleteResponse{Success: deleted}, nil
}

// run hands fn a Tracker from the provider.
func (m *TrackerModule) run(ctx context.Context, fn func(*app.Tracker) error) error {
	if m.provider == nil {
		return errNotStarted
	}
	return m.provider.Do(ctx, fn)
}

// emit publishes after the change is committed. Publishing is best-effort;
// a failure is logged and the operation still succeeds.
func (m *TrackerModule) emit(name string, publish func(mono.EventBus) error) {
	if m.eventBus == nil {
		return
	}
	if err := publish(m.eventBus); err != nil {
		log.Printf("[tracker] Warning: failed to publish %s event: %v", name, err)
	}
}

func (m *TrackerModule) userView(u user.User) UserView {
	view := UserView{ID: u.ID}
	if m.kind == user.KindTelegram {
		if id, err := strconv.ParseInt(u.Identity, 10, 64); err == nil {
			view.TelegramID = id
			return view
		}
	}
	view.Nickname = u.Identity
	return view
}

func (m *TrackerModule) taskView(t task.Task) TaskView {
	return TaskView{
		ID:      t.ID,
		Text:    t.Text,
		Done:    t.Done,
		Creator: m.userView(t.Creator),
	}
}

func userFailure(err error, onIntegrity string) (UserResponse, error) {
	se, err := asServiceError(err, onIntegrity)
	return UserResponse{Error: se}, err
}

func taskFailure(err error, onIntegrity string) (TaskResponse, error) {
	se, err := asServiceError(err, onIntegrity)
	return TaskResponse{Error: se}, err
}

func deleteFailure(err error) (DeleteResponse, error) {
	se, err := asServiceError(err, "")
	return DeleteResponse{Error: se}, err
}
