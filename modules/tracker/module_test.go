package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

func ptr[T any](v T) *T {
	return &v
}

func testConfig(dbType string, kind user.IdentityKind) config.Config {
	return config.Config{
		DBType:          dbType,
		DBPath:          ":memory:",
		IdentityKind:    string(kind),
		ActivityLimit:   10,
		ShutdownTimeout: time.Second,
	}
}

// startModule starts a TrackerModule without an event bus.
func startModule(t *testing.T, cfg config.Config) *TrackerModule {
	t.Helper()
	m := NewModule(cfg)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop(context.Background()) })
	return m
}

func TestTrackerModule_Scenario(t *testing.T) {
	for _, dbType := range []string{config.DBMemory, config.DBSQLite} {
		t.Run(dbType, func(t *testing.T) {
			m := startModule(t, testConfig(dbType, user.KindTelegram))
			ctx := context.Background()

			reg, err := m.registerUser(ctx, RegisterUserRequest{TelegramID: ptr(int64(1001))}, nil)
			require.NoError(t, err)
			require.Nil(t, reg.Error)
			require.NotNil(t, reg.User)
			assert.Equal(t, int64(1001), reg.User.TelegramID)
			assert.Empty(t, reg.User.Nickname)

			created, err := m.createTask(ctx, CreateTaskRequest{TelegramID: ptr(int64(1001)), Text: "buy milk"}, nil)
			require.NoError(t, err)
			require.Nil(t, created.Error)
			assert.Equal(t, "buy milk", created.Task.Text)
			assert.False(t, created.Task.Done)
			assert.Equal(t, reg.User.ID, created.Task.Creator.ID)

			status, err := m.setTaskStatus(ctx, SetTaskStatusRequest{TaskID: created.Task.ID, Done: ptr(true)}, nil)
			require.NoError(t, err)
			require.Nil(t, status.Error)
			assert.True(t, status.Task.Done)

			list, err := m.listTasks(ctx, ListTasksRequest{UserID: reg.User.ID}, nil)
			require.NoError(t, err)
			require.Len(t, list.Tasks, 1)
			assert.True(t, list.Tasks[0].Done)

			deleted, err := m.deleteUser(ctx, DeleteUserRequest{UserID: reg.User.ID}, nil)
			require.NoError(t, err)
			assert.True(t, deleted.Success)

			got, err := m.getTask(ctx, GetTaskRequest{TaskID: created.Task.ID}, nil)
			require.NoError(t, err)
			require.NotNil(t, got.Error)
			assert.Equal(t, CodeTaskNotFound, got.Error.Code)
		})
	}
}

func TestTrackerModule_ErrorCodes(t *testing.T) {
	m := startModule(t, testConfig(config.DBMemory, user.KindNickname))
	ctx := context.Background()

	_, err := m.registerUser(ctx, RegisterUserRequest{Nickname: ptr("alice")}, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() (*ServiceError, error)
		want string
	}{
		{
			name: "duplicate identity",
			call: func() (*ServiceError, error) {
				resp, err := m.registerUser(ctx, RegisterUserRequest{Nickname: ptr("alice")}, nil)
				return resp.Error, err
			},
			want: CodeDuplicateIdentity,
		},
		{
			name: "register without identity",
			call: func() (*ServiceError, error) {
				resp, err := m.registerUser(ctx, RegisterUserRequest{}, nil)
				return resp.Error, err
			},
			want: CodeValidation,
		},
		{
			name: "task for unknown user",
			call: func() (*ServiceError, error) {
				resp, err := m.createTask(ctx, CreateTaskRequest{UserID: ptr(int64(999999)), Text: "buy milk"}, nil)
				return resp.Error, err
			},
			want: CodeUserNotFound,
		},
		{
			name: "task for unknown identity",
			call: func() (*ServiceError, error) {
				resp, err := m.createTask(ctx, CreateTaskRequest{Nickname: ptr("bob"), Text: "buy milk"}, nil)
				return resp.Error, err
			},
			want: CodeUserNotFound,
		},
		{
			name: "task without creator",
			call: func() (*ServiceError, error) {
				resp, err := m.createTask(ctx, CreateTaskRequest{Text: "buy milk"}, nil)
				return resp.Error, err
			},
			want: CodeValidation,
		},
		{
			name: "list for unknown user",
			call: func() (*ServiceError, error) {
				resp, err := m.listTasks(ctx, ListTasksRequest{UserID: 999999}, nil)
				return resp.Error, err
			},
			want: CodeUserNotFound,
		},
		{
			name: "status of unknown task",
			call: func() (*ServiceError, error) {
				resp, err := m.setTaskStatus(ctx, SetTaskStatusRequest{TaskID: 999999, Done: ptr(false)}, nil)
				return resp.Error, err
			},
			want: CodeTaskNotFound,
		},
		{
			name: "status without done",
			call: func() (*ServiceError, error) {
				resp, err := m.setTaskStatus(ctx, SetTaskStatusRequest{TaskID: 1}, nil)
				return resp.Error, err
			},
			want: CodeValidation,
		},
		{
			name: "resolve unknown identity",
			call: func() (*ServiceError, error) {
				resp, err := m.resolveUser(ctx, ResolveUserRequest{Identity: "bob"}, nil)
				return resp.Error, err
			},
			want: CodeUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se, err := tt.call()
			require.NoError(t, err, "domain failures travel in the reply")
			require.NotNil(t, se)
			assert.Equal(t, tt.want, se.Code)
		})
	}
}

func TestTrackerModule_DeleteAbsentIsNotAnError(t *testing.T) {
	m := startModule(t, testConfig(config.DBMemory, user.KindTelegram))
	ctx := context.Background()

	resp, err := m.deleteTask(ctx, DeleteTaskRequest{TaskID: 42}, nil)
	require.NoError(t, err)
	assert.Nil(t, resp.Error)
	assert.False(t, resp.Success)

	userResp, err := m.deleteUser(ctx, DeleteUserRequest{UserID: 42}, nil)
	require.NoError(t, err)
	assert.Nil(t, userResp.Error)
	assert.False(t, userResp.Success)
}

func TestTrackerModule_NotStarted(t *testing.T) {
	m := NewModule(testConfig(config.DBMemory, user.KindTelegram))

	_, err := m.getUser(context.Background(), GetUserRequest{UserID: 1}, nil)
	assert.ErrorIs(t, err, errNotStarted)

	health := m.Health(context.Background())
	assert.False(t, health.Healthy)
}

func TestTrackerModule_Health(t *testing.T) {
	m := startModule(t, testConfig(config.DBSQLite, user.KindTelegram))

	health := m.Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Equal(t, "sqlite", health.Details["driver"])
	assert.Equal(t, ":memory:", health.Details["path"])
}

func TestServiceError_Is(t *testing.T) {
	tests := []struct {
		code   string
		target error
	}{
		{CodeValidation, failure.ErrValidation},
		{CodeDuplicateIdentity, user.ErrDuplicateIdentity},
		{CodeUserNotFound, user.ErrNotFound},
		{CodeTaskNotFound, task.ErrNotFound},
	}
	for _, tt := range tests {
		var err error = &ServiceError{Code: tt.code, Message: "x"}
		assert.True(t, errors.Is(err, tt.target), tt.code)
		assert.False(t, errors.Is(err, failure.ErrIntegrity), tt.code)
	}
}

func TestServiceError_Error(t *testing.T) {
	se := &ServiceError{
		Code:    CodeValidation,
		Message: "validation failed",
		Fields:  map[string]string{"user_id": "must be positive", "text": "is required"},
	}
	assert.Equal(t, "validation failed: text: is required; user_id: must be positive", se.Error())

	plain := &ServiceError{Code: CodeTaskNotFound, Message: "task not found"}
	assert.Equal(t, "task not found", plain.Error())
}

func TestAsServiceError(t *testing.T) {
	se, err := asServiceError(failure.NewValidationError("text", "is required"), "")
	require.NoError(t, err)
	assert.Equal(t, CodeValidation, se.Code)
	assert.Equal(t, map[string]string{"text": "is required"}, se.Fields)

	se, err = asServiceError(failure.ErrIntegrity, CodeDuplicateIdentity)
	require.NoError(t, err)
	assert.Equal(t, CodeDuplicateIdentity, se.Code)

	errDown := errors.New("connection refused")
	se, err = asServiceError(errDown, CodeUserNotFound)
	assert.Nil(t, se)
	assert.ErrorIs(t, err, errDown)

	se, err = asServiceError(failure.ErrIntegrity, "")
	assert.Nil(t, se, "integrity without a mapping is an internal error")
	assert.ErrorIs(t, err, failure.ErrIntegrity)
}

func TestUserView_ByKind(t *testing.T) {
	telegram := NewModule(testConfig(config.DBMemory, user.KindTelegram))
	nickname := NewModule(testConfig(config.DBMemory, user.KindNickname))

	assert.Equal(t, UserView{ID: 1, TelegramID: 42}, telegram.userView(user.User{ID: 1, Identity: "42"}))
	assert.Equal(t, UserView{ID: 1, Nickname: "alice"}, nickname.userView(user.User{ID: 1, Identity: "alice"}))
}
