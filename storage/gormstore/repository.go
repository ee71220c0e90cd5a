package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

// UserRepository implements user.Repository with GORM.
type UserRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*UserRepository)(nil)

// Save inserts a new user. A persisted user is only checked for existence.
func (r *UserRepository) Save(ctx context.Context, u user.User) (user.User, error) {
	if u.Persisted() {
		return r.Get(ctx, u.ID)
	}

	rec := userRecord{Identity: u.Identity}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isIntegrity(err) {
			return user.User{}, fmt.Errorf("%w: %v", failure.ErrIntegrity, err)
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return rec.toDomain(), nil
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id int64) (user.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return rec.toDomain(), nil
}

// ExistsByIdentity checks if a user with identity exists.
func (r *UserRepository) ExistsByIdentity(ctx context.Context, identity string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userRecord{}).
		Where("identity_value = ?", identity).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check identity: %w", err)
	}
	return count > 0, nil
}

// IDByIdentity resolves an identity to the internal user id.
func (r *UserRepository) IDByIdentity(ctx context.Context, identity string) (int64, error) {
	var rec userRecord
	err := r.db.WithContext(ctx).Select("id").First(&rec, "identity_value = ?", identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, user.ErrNotFound
		}
		return 0, fmt.Errorf("failed to find user by identity: %w", err)
	}
	return rec.ID, nil
}

// Delete removes a user. The foreign key removes the user's tasks.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&userRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return result.RowsAffected > 0, nil
}

// TaskRepository implements task.Repository with GORM.
type TaskRepository struct {
	db *gorm.DB
}

var _ task.Repository = (*TaskRepository)(nil)

// Save inserts a task when its ID is zero and updates text and done otherwise.
func (r *TaskRepository) Save(ctx context.Context, t task.Task) (task.Task, error) {
	db := r.db.WithContext(ctx)

	if t.ID == 0 {
		rec := taskRecord{Text: t.Text, Done: t.Done, UserID: t.Creator.ID}
		if err := db.Omit(clause.Associations).Create(&rec).Error; err != nil {
			if isIntegrity(err) {
				return task.Task{}, fmt.Errorf("%w: %v", failure.ErrIntegrity, err)
			}
			return task.Task{}, fmt.Errorf("failed to create task: %w", err)
		}
		return r.Get(ctx, rec.ID)
	}

	// A map so that done=false is written too.
	result := db.Model(&taskRecord{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{"text": t.Text, "done": t.Done})
	if err := result.Error; err != nil {
		return task.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return r.Get(ctx, t.ID)
}

// Get retrieves a task by ID with its creator loaded.
func (r *TaskRepository) Get(ctx context.Context, id int64) (task.Task, error) {
	var rec taskRecord
	if err := r.db.WithContext(ctx).Preload("Creator").First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("failed to find task: %w", err)
	}
	return rec.toDomain(), nil
}

// ListByUser returns the creator's tasks ordered by ID.
func (r *TaskRepository) ListByUser(ctx context.Context, creator user.User) ([]task.Task, error) {
	var recs []taskRecord
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("user_id = ?", creator.ID).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]task.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, rec.toDomain())
	}
	return tasks, nil
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return result.RowsAffected > 0, nil
}
