package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

// clientModule depends on the tracker only to receive its service container.
type clientModule struct {
	container mono.ServiceContainer
}

func (c *clientModule) Name() string                  { return "tracker-client" }
func (c *clientModule) Dependencies() []string        { return []string{"tracker"} }
func (c *clientModule) Start(_ context.Context) error { return nil }
func (c *clientModule) Stop(_ context.Context) error  { return nil }

func (c *clientModule) SetDependencyServiceContainer(_ string, container mono.ServiceContainer) {
	c.container = container
}

// startBusAdapter runs a mono application with a memory-backed tracker and
// returns a TrackerPort that talks to it over the bus.
func startBusAdapter(t *testing.T) TrackerPort {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
	)
	require.NoError(t, err)

	client := &clientModule{}
	require.NoError(t, app.Register(NewModule(testConfig(config.DBMemory, user.KindTelegram))))
	require.NoError(t, app.Register(client))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	require.NotNil(t, client.container, "tracker container was not injected")
	return NewTrackerAdapter(client.container)
}

func TestTrackerAdapter_OverBus(t *testing.T) {
	port := startBusAdapter(t)
	ctx := context.Background()

	registered, err := port.RegisterUser(ctx, RegisterUserRequest{TelegramID: ptr(int64(1001))})
	require.NoError(t, err)
	assert.Equal(t, int64(1001), registered.TelegramID)

	t.Run("duplicate identity", func(t *testing.T) {
		_, err := port.RegisterUser(ctx, RegisterUserRequest{TelegramID: ptr(int64(1001))})
		require.Error(t, err)
		assert.True(t, errors.Is(err, user.ErrDuplicateIdentity), "got %v", err)

		var se *ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, CodeDuplicateIdentity, se.Code)
	})

	t.Run("validation fields survive", func(t *testing.T) {
		_, err := port.RegisterUser(ctx, RegisterUserRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, failure.ErrValidation))

		var se *ServiceError
		require.True(t, errors.As(err, &se))
		assert.Contains(t, se.Fields, "telegram_id")
	})

	t.Run("task for unknown user", func(t *testing.T) {
		_, err := port.CreateTask(ctx, CreateTaskRequest{UserID: ptr(int64(999999)), Text: "buy milk"})
		assert.True(t, errors.Is(err, user.ErrNotFound), "got %v", err)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		tasks, err := port.ListTasks(ctx, registered.ID)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("task lifecycle", func(t *testing.T) {
		created, err := port.CreateTask(ctx, CreateTaskRequest{TelegramID: ptr(int64(1001)), Text: "buy milk"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, created.Creator.ID)

		done, err := port.SetTaskStatus(ctx, SetTaskStatusRequest{TaskID: created.ID, Done: ptr(true)})
		require.NoError(t, err)
		assert.True(t, done.Done)

		deleted, err := port.DeleteTask(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = port.GetTask(ctx, created.ID)
		assert.True(t, errors.Is(err, task.ErrNotFound), "got %v", err)

		deleted, err = port.DeleteTask(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("resolve and delete user", func(t *testing.T) {
		id, err := port.ResolveUser(ctx, "1001")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, id)

		deleted, err := port.DeleteUser(ctx, id)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = port.GetUser(ctx, id)
		assert.True(t, errors.Is(err, user.ErrNotFound), "got %v", err)
	})
}

// roundTrip sends v through JSON the way replies cross the bus.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestUnwrap_AfterJSON(t *testing.T) {
	t.Run("user error", func(t *testing.T) {
		resp := roundTrip(t, UserResponse{Error: &ServiceError{Code: CodeDuplicateIdentity, Message: "identity already registered"}})
		_, err := unwrapUser(resp)
		assert.True(t, errors.Is(err, user.ErrDuplicateIdentity))
	})

	t.Run("user value", func(t *testing.T) {
		resp := roundTrip(t, UserResponse{User: &UserView{ID: 3, TelegramID: 42}})
		got, err := unwrapUser(resp)
		require.NoError(t, err)
		assert.Equal(t, UserView{ID: 3, TelegramID: 42}, got)
	})

	t.Run("empty user reply", func(t *testing.T) {
		_, err := unwrapUser(roundTrip(t, UserResponse{}))
		require.Error(t, err)
		var se *ServiceError
		assert.False(t, errors.As(err, &se))
	})

	t.Run("task error", func(t *testing.T) {
		resp := roundTrip(t, TaskResponse{Error: &ServiceError{Code: CodeUserNotFound, Message: "user not found"}})
		_, err := unwrapTask(resp)
		assert.True(t, errors.Is(err, user.ErrNotFound))
	})

	t.Run("validation fields", func(t *testing.T) {
		resp := roundTrip(t, TaskResponse{Error: &ServiceError{
			Code:    CodeValidation,
			Message: "validation failed",
			Fields:  map[string]string{"text": "is required"},
		}})
		_, err := unwrapTask(resp)
		var se *ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, map[string]string{"text": "is required"}, se.Fields)
		assert.True(t, errors.Is(err, failure.ErrValidation))
	})

	t.Run("nil task list", func(t *testing.T) {
		tasks, err := unwrapTasks(roundTrip(t, ListTasksResponse{}))
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("task list error", func(t *testing.T) {
		resp := roundTrip(t, ListTasksResponse{Error: &ServiceError{Code: CodeUserNotFound, Message: "user not found"}})
		_, err := unwrapTasks(resp)
		assert.True(t, errors.Is(err, user.ErrNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := unwrapDelete(roundTrip(t, DeleteResponse{Success: true}))
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = unwrapDelete(roundTrip(t, DeleteResponse{Error: &ServiceError{Code: CodeTaskNotFound, Message: "task not found"}}))
		assert.True(t, errors.Is(err, task.ErrNotFound))
	})
}
