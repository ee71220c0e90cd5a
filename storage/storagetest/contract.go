// Package storagetest is a behavioural suite every repository pair must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

// Factory returns repositories over a fresh, empty store.
type Factory func(t *testing.T) (user.Repository, task.Repository)

// Run executes the full contract against repositories produced by newRepos.
func Run(t *testing.T, newRepos Factory) {
	t.Run("UserSaveAssignsID", func(t *testing.T) { testUserSaveAssignsID(t, newRepos) })
	t.Run("UserUniqueIdentity", func(t *testing.T) { testUserUniqueIdentity(t, newRepos) })
	t.Run("UserLookups", func(t *testing.T) { testUserLookups(t, newRepos) })
	t.Run("UserDelete", func(t *testing.T) { testUserDelete(t, newRepos) })
	t.Run("UserDeleteCascades", func(t *testing.T) { testUserDeleteCascades(t, newRepos) })
	t.Run("TaskSaveAndGet", func(t *testing.T) { testTaskSaveAndGet(t, newRepos) })
	t.Run("TaskUpdate", func(t *testing.T) { testTaskUpdate(t, newRepos) })
	t.Run("TaskUnknownCreator", func(t *testing.T) { testTaskUnknownCreator(t, newRepos) })
	t.Run("TaskListByUser", func(t *testing.T) { testTaskListByUser(t, newRepos) })
	t.Run("TaskDelete", func(t *testing.T) { testTaskDelete(t, newRepos) })
}

func mustUser(t *testing.T, users user.Repository, identity string) user.User {
	t.Helper()
	u, err := users.Save(context.Background(), user.User{Identity: identity})
	require.NoError(t, err)
	return u
}

func mustTask(t *testing.T, tasks task.Repository, creator user.User, text string) task.Task {
	t.Helper()
	tk, err := tasks.Save(context.Background(), task.Task{Text: text, Creator: creator})
	require.NoError(t, err)
	return tk
}

func testUserSaveAssignsID(t *testing.T, newRepos Factory) {
	users, _ := newRepos(t)
	ctx := context.Background()

	first := mustUser(t, users, "alice")
	second := mustUser(t, users, "bob")

	assert.NotZero(t, first.ID)
	assert.NotZero(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "alice", first.Identity)

	again, err := users.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, again, "saving a persisted user is a no-op")

	_, err = users.Save(ctx, user.User{ID: 4242, Identity: "ghost"})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func testUserUniqueIdentity(t *testing.T, newRepos Factory) {
	users, _ := newRepos(t)

	mustUser(t, users, "alice")
	_, err := users.Save(context.Background(), user.User{Identity: "alice"})
	assert.ErrorIs(t, err, failure.ErrIntegrity)
}

func testUserLookups(t *testing.T, newRepos Factory) {
	users, _ := newRepos(t)
	ctx := context.Background()
	alice := mustUser(t, users, "alice")

	got, err := users.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = users.Get(ctx, alice.ID+100)
	assert.ErrorIs(t, err, user.ErrNotFound)

	exists, err := users.ExistsByIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = users.ExistsByIdentity(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, exists)

	id, err := users.IDByIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, id)

	_, err = users.IDByIdentity(ctx, "carol")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func testUserDelete(t *testing.T, newRepos Factory) {
	users, _ := newRepos(t)
	ctx := context.Background()
	alice := mustUser(t, users, "alice")

	deleted, err := users.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = users.Get(ctx, alice.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)

	deleted, err = users.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "deleting an absent user reports false")

	// The identity is free again once its owner is gone.
	mustUser(t, users, "alice")
}

func testUserDeleteCascades(t *testing.T, newRepos Factory) {
	users, tasks := newRepos(t)
	ctx := context.Background()
	alice := mustUser(t, users, "alice")
	bob := mustUser(t, users, "bob")
	aliceTask := mustTask(t, tasks, alice, "buy milk")
	bobTask := mustTask(t, tasks, bob, "walk dog")

	_, err := users.Delete(ctx, alice.ID)
	require.NoError(t, err)

	_, err = tasks.Get(ctx, aliceTask.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)

	kept, err := tasks.Get(ctx, bobTask.ID)
	require.NoError(t, err)
	assert.Equal(t, bobTask, kept)
}

func testTaskSaveAndGet(t *testing.T, newRepos Factory) {
	users, tasks := newRepos(t)
	ctx := context.Background()
	alice := mustUser(t, users, "alice")

	saved := mustTask(t, tasks, alice, "buy milk")
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "buy milk", saved.Text)
	assert.False(t, saved.Done)
	assert.Equal(t, alice, saved.Creator)

	got, err := tasks.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.Equal(t, "alice", got.Creator.Identity, "creator is resolved eagerly")

	_, err = tasks.Get(ctx, saved.ID+100)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func testTaskUpdate(t *testing.T, newRepos Factory) {
	users, tasks := newRepos(t)
	ctx := context.Background()
	alice := mustUser(t, users, "alice")
	saved := mustTask(t, tasks, alice, "buy milk")

	saved.Text = "buy oat milk"
	updated, err := tasks.Save(ctx, saved.MarkDone())
	require.NoError(t, err)
	assert.True(t, updated.Done)
	assert.Equal(t, "buy oat milk", updated.Text)
	assert.Equal(t, saved.ID, updated.ID)

	got, err := tasks.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, got.Done)

	reopened, err := tasks.Save(ctx, got.Reopen())
	require.NoError(t, err)
	assert.False(t, reopened.Done)

	_, err = tasks.Save(ctx, task.Task{ID: saved.ID + 100, Text: "x", Creator: alice})
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func testTaskUnknownCreator(t *testing.T, newRepos Factory) {
	_, tasks := newRepos(t)

	_, err := tasks.Save(context.Background(), task.Task{Text: "orphan", Creator: user.User{ID: 999999, Identity: "ghost"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrIntegrity), "expected integrity error, got %v", err)
}

func testTaskListByUser(t *testing.T, newRepos Factory) {
	users, tasks := newRepos(t)
	ctx := context.Background()
	alice := mustUser(t, users, "alice")
	bob := mustUser(t, users, "bob")

	first := mustTask(t, tasks, alice, "first")
	mustTask(t, tasks, bob, "bob's")
	second := mustTask(t, tasks, alice, "second")
	third := mustTask(t, tasks, alice, "third")

	list, err := tasks.ListByUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []task.Task{first, second, third}, list)

	again, err := tasks.ListByUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, list, again, "listing is restartable")

	carol := mustUser(t, users, "carol")
	empty, err := tasks.ListByUser(ctx, carol)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testTaskDelete(t *testing.T, newRepos Factory) {
	users, tasks := newRepos(t)
	ctx := context.Background()
	alice := mustUser(t, users, "alice")
	saved := mustTask(t, tasks, alice, "buy milk")

	deleted, err := tasks.Delete(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = tasks.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)

	deleted, err = tasks.Delete(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
