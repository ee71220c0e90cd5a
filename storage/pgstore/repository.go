package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

const (
	insertUserQuery       = `INSERT INTO users (identity_value) VALUES ($1) RETURNING id`
	getUserQuery          = `SELECT id, identity_value FROM users WHERE id = $1`
	userExistsQuery       = `SELECT EXISTS (SELECT 1 FROM users WHERE identity_value = $1)`
	userIDByIdentityQuery = `SELECT id FROM users WHERE identity_value = $1`
	deleteUserQuery       = `DELETE FROM users WHERE id = $1`

	insertTaskQuery    = `INSERT INTO tasks (text, done, user_id) VALUES ($1, $2, $3) RETURNING id`
	updateTaskQuery    = `UPDATE tasks SET text = $1, done = $2 WHERE id = $3`
	getTaskQuery       = selectTasks + ` WHERE t.id = $1`
	listUserTasksQuery = selectTasks + ` WHERE t.user_id = $1 ORDER BY t.id`
	deleteTaskQuery    = `DELETE FROM tasks WHERE id = $1`
)

// selectTasks loads tasks with their creator in one round trip.
const selectTasks = `SELECT t.id, t.text, t.done, u.id AS user_id, u.identity_value
FROM tasks t JOIN users u ON u.id = t.user_id`

type userRow struct {
	ID       int64  `db:"id"`
	Identity string `db:"identity_value"`
}

func (r userRow) toDomain() user.User {
	return user.User{ID: r.ID, Identity: r.Identity}
}

type taskRow struct {
	ID       int64  `db:"id"`
	Text     string `db:"text"`
	Done     bool   `db:"done"`
	UserID   int64  `db:"user_id"`
	Identity string `db:"identity_value"`
}

func (r taskRow) toDomain() task.Task {
	return task.Task{
		ID:      r.ID,
		Text:    r.Text,
		Done:    r.Done,
		Creator: user.User{ID: r.UserID, Identity: r.Identity},
	}
}

// UserRepository implements user.Repository with sqlx. db is either the pool
// or a transaction.
type UserRepository struct {
	db sqlx.ExtContext
}

var _ user.Repository = (*UserRepository)(nil)

// Save inserts a new user. A persisted user is only checked for existence.
func (r *UserRepository) Save(ctx context.Context, u user.User) (user.User, error) {
	if u.Persisted() {
		return r.Get(ctx, u.ID)
	}

	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, insertUserQuery, u.Identity); err != nil {
		if isPgIntegrityError(err) {
			return user.User{}, fmt.Errorf("%w: %v", failure.ErrIntegrity, err)
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = id
	return u, nil
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id int64) (user.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.db, &row, getUserQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return row.toDomain(), nil
}

// ExistsByIdentity checks if a user with identity exists.
func (r *UserRepository) ExistsByIdentity(ctx context.Context, identity string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, userExistsQuery, identity); err != nil {
		return false, fmt.Errorf("failed to check identity: %w", err)
	}
	return exists, nil
}

// IDByIdentity resolves an identity to the internal user id.
func (r *UserRepository) IDByIdentity(ctx context.Context, identity string) (int64, error) {
	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, userIDByIdentityQuery, identity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, user.ErrNotFound
		}
		return 0, fmt.Errorf("failed to find user by identity: %w", err)
	}
	return id, nil
}

// Delete removes a user. ON DELETE CASCADE removes the user's tasks.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return execDelete(ctx, r.db, deleteUserQuery, id, "user")
}

// TaskRepository implements task.Repository with sqlx.
type TaskRepository struct {
	db sqlx.ExtContext
}

var _ task.Repository = (*TaskRepository)(nil)

// Save inserts a task when its ID is zero and updates text and done otherwise.
func (r *TaskRepository) Save(ctx context.Context, t task.Task) (task.Task, error) {
	if t.ID == 0 {
		var id int64
		if err := sqlx.GetContext(ctx, r.db, &id, insertTaskQuery, t.Text, t.Done, t.Creator.ID); err != nil {
			if isPgIntegrityError(err) {
				return task.Task{}, fmt.Errorf("%w: %v", failure.ErrIntegrity, err)
			}
			return task.Task{}, fmt.Errorf("failed to create task: %w", err)
		}
		return r.Get(ctx, id)
	}

	result, err := r.db.ExecContext(ctx, updateTaskQuery, t.Text, t.Done, t.ID)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return r.Get(ctx, t.ID)
}

// Get retrieves a task by ID with its creator joined in.
func (r *TaskRepository) Get(ctx context.Context, id int64) (task.Task, error) {
	var row taskRow
	if err := sqlx.GetContext(ctx, r.db, &row, getTaskQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("failed to find task: %w", err)
	}
	return row.toDomain(), nil
}

// ListByUser returns the creator's tasks ordered by ID.
func (r *TaskRepository) ListByUser(ctx context.Context, creator user.User) ([]task.Task, error) {
	var rows []taskRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, listUserTasksQuery, creator.ID); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toDomain())
	}
	return tasks, nil
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return execDelete(ctx, r.db, deleteTaskQuery, id, "task")
}

func execDelete(ctx context.Context, db sqlx.ExecerContext, query string, id int64, what string) (bool, error) {
	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", what, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", what, err)
	}
	return n > 0, nil
}
