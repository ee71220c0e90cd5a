package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/storage/memory"
)

func newServices() (*UserService, *TaskService) {
	store := memory.NewStore()
	return NewUserService(store.Users()), NewTaskService(store.Users(), store.Tasks())
}

func TestUserService_RegisterUser(t *testing.T) {
	users, _ := newServices()
	ctx := context.Background()

	alice, err := users.RegisterUser(ctx, "alice")
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)
	assert.Equal(t, "alice", alice.Identity)

	got, err := users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = users.RegisterUser(ctx, "alice")
	assert.ErrorIs(t, err, user.ErrDuplicateIdentity)

	_, err = users.RegisterUser(ctx, "")
	assert.ErrorIs(t, err, failure.ErrValidation)
}

func TestUserService_DeleteUser(t *testing.T) {
	users, tasks := newServices()
	ctx := context.Background()
	alice, err := users.RegisterUser(ctx, "alice")
	require.NoError(t, err)
	created, err := tasks.CreateTask(ctx, alice.ID, "buy milk")
	require.NoError(t, err)

	deleted, err := users.DeleteUser(ctx, 999999)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = users.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = users.GetUser(ctx, alice.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = tasks.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, task.ErrNotFound, "tasks go with their creator")
}

func TestUserService_ResolveID(t *testing.T) {
	users, _ := newServices()
	ctx := context.Background()
	alice, err := users.RegisterUser(ctx, "123456")
	require.NoError(t, err)

	id, err := users.ResolveID(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, id)

	_, err = users.ResolveID(ctx, "654321")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestTaskService_CreateTask(t *testing.T) {
	users, tasks := newServices()
	ctx := context.Background()
	alice, err := users.RegisterUser(ctx, "alice")
	require.NoError(t, err)

	t.Run("for registered user", func(t *testing.T) {
		created, err := tasks.CreateTask(ctx, alice.ID, "buy milk")
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "buy milk", created.Text)
		assert.False(t, created.Done)
		assert.Equal(t, "alice", created.Creator.Identity)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := tasks.CreateTask(ctx, 999999, "buy milk")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("blank text", func(t *testing.T) {
		_, err := tasks.CreateTask(ctx, alice.ID, "   ")
		assert.ErrorIs(t, err, failure.ErrValidation)
	})

	t.Run("by identity", func(t *testing.T) {
		created, err := tasks.CreateTaskForIdentity(ctx, "alice", "walk dog")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, created.Creator.ID)

		_, err = tasks.CreateTaskForIdentity(ctx, "bob", "walk dog")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}

func TestTaskService_StatusChanges(t *testing.T) {
	users, tasks := newServices()
	ctx := context.Background()
	alice, err := users.RegisterUser(ctx, "alice")
	require.NoError(t, err)
	created, err := tasks.CreateTask(ctx, alice.ID, "buy milk")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := tasks.MarkDone(ctx, created.ID)
		require.NoError(t, err)
		got, err := tasks.GetTask(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, got.Done, "mark done, pass %d", i+1)
	}

	for i := 0; i < 2; i++ {
		reopened, err := tasks.Reopen(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, reopened.Done)
		got, err := tasks.GetTask(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, got.Done, "reopen, pass %d", i+1)
	}

	_, err = tasks.MarkDone(ctx, 999999)
	assert.ErrorIs(t, err, task.ErrNotFound)
	_, err = tasks.Reopen(ctx, 999999)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestTaskService_ListUserTasks(t *testing.T) {
	users, tasks := newServices()
	ctx := context.Background()
	alice, err := users.RegisterUser(ctx, "alice")
	require.NoError(t, err)
	bob, err := users.RegisterUser(ctx, "bob")
	require.NoError(t, err)

	var want []string
	for _, text := range []string{"one", "two", "three"} {
		_, err := tasks.CreateTask(ctx, alice.ID, text)
		require.NoError(t, err)
		want = append(want, text)
		_, err = tasks.CreateTask(ctx, bob.ID, "bob "+text)
		require.NoError(t, err)
	}

	list, err := tasks.ListUserTasks(ctx, alice.ID)
	require.NoError(t, err)
	var got []string
	for _, tk := range list {
		assert.Equal(t, alice.ID, tk.Creator.ID)
		got = append(got, tk.Text)
	}
	assert.Equal(t, want, got)

	_, err = tasks.ListUserTasks(ctx, 999999)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestTaskService_DeleteTask(t *testing.T) {
	users, tasks := newServices()
	ctx := context.Background()
	alice, err := users.RegisterUser(ctx, "alice")
	require.NoError(t, err)
	created, err := tasks.CreateTask(ctx, alice.ID, "buy milk")
	require.NoError(t, err)

	deleted, err := tasks.DeleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = tasks.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)

	deleted, err = tasks.DeleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

// brokenUsers fails every call with err.
type brokenUsers struct {
	user.Repository
	err error
}

func (b brokenUsers) ExistsByIdentity(context.Context, string) (bool, error) { return false, b.err }
func (b brokenUsers) Get(context.Context, int64) (user.User, error)          { return user.User{}, b.err }

func TestServices_PropagateRepositoryErrors(t *testing.T) {
	errDown := errors.New("connection refused")
	repo := brokenUsers{err: errDown}
	ctx := context.Background()

	_, err := NewUserService(repo).RegisterUser(ctx, "alice")
	assert.ErrorIs(t, err, errDown)

	_, err = NewTaskService(repo, memory.NewStore().Tasks()).CreateTask(ctx, 1, "buy milk")
	assert.ErrorIs(t, err, errDown)
}
