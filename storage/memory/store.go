// Package memory keeps users and tasks in process memory. A Store owns its
// data; nothing is shared between Store instances.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

// Store holds users and tasks keyed by id, remembering insertion order.
type Store struct {
	mu sync.RWMutex

	users      map[int64]user.User
	userOrder  []int64
	nextUserID int64

	tasks      map[int64]taskRow
	taskOrder  []int64
	nextTaskID int64
}

// taskRow stores the creator by id so a task never holds a stale user copy.
type taskRow struct {
	id     int64
	text   string
	done   bool
	userID int64
}

// NewStore creates an empty store. IDs start at 1.
func NewStore() *Store {
	return &Store{
		users:      make(map[int64]user.User),
		nextUserID: 1,
		tasks:      make(map[int64]taskRow),
		nextTaskID: 1,
	}
}

// Users returns the store's user repository.
func (s *Store) Users() user.Repository {
	return &UserRepository{store: s}
}

// Tasks returns the store's task repository.
func (s *Store) Tasks() task.Repository {
	return &TaskRepository{store: s}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// Driver names the backend.
func (s *Store) Driver() string {
	return "memory"
}

// UserRepository implements user.Repository on a Store.
type UserRepository struct {
	store *Store
}

var _ user.Repository = (*UserRepository)(nil)

// Save inserts a new user or confirms an existing one.
func (r *UserRepository) Save(_ context.Context, u user.User) (user.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Persisted() {
		if _, ok := s.users[u.ID]; !ok {
			return user.User{}, user.ErrNotFound
		}
		return s.users[u.ID], nil
	}

	// Acts as the unique index on identity.
	for _, existing := range s.users {
		if existing.Identity == u.Identity {
			return user.User{}, fmt.Errorf("%w: users.identity_value %q", failure.ErrIntegrity, u.Identity)
		}
	}

	u.ID = s.nextUserID
	s.nextUserID++
	s.users[u.ID] = u
	s.userOrder = append(s.userOrder, u.ID)
	return u, nil
}

// Get finds a user by ID.
func (r *UserRepository) Get(_ context.Context, id int64) (user.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// ExistsByIdentity checks if a user with identity exists.
func (r *UserRepository) ExistsByIdentity(_ context.Context, identity string) (bool, error) {
	_, ok := r.store.userIDByIdentity(identity)
	return ok, nil
}

// IDByIdentity resolves an identity to the internal user id.
func (r *UserRepository) IDByIdentity(_ context.Context, identity string) (int64, error) {
	id, ok := r.store.userIDByIdentity(identity)
	if !ok {
		return 0, user.ErrNotFound
	}
	return id, nil
}

// Delete removes a user together with the user's tasks.
func (r *UserRepository) Delete(_ context.Context, id int64) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	s.userOrder = removeID(s.userOrder, id)

	kept := s.taskOrder[:0]
	for _, taskID := range s.taskOrder {
		if s.tasks[taskID].userID == id {
			delete(s.tasks, taskID)
			continue
		}
		kept = append(kept, taskID)
	}
	s.taskOrder = kept
	return true, nil
}

func (s *Store) userIDByIdentity(identity string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userOrder {
		if s.users[id].Identity == identity {
			return id, true
		}
	}
	return 0, false
}

// TaskRepository implements task.Repository on a Store.
type TaskRepository struct {
	store *Store
}

var _ task.Repository = (*TaskRepository)(nil)

// Save inserts or updates a task.
func (r *TaskRepository) Save(_ context.Context, t task.Task) (task.Task, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == 0 {
		// Acts as the foreign key on tasks.user_id.
		if _, ok := s.users[t.Creator.ID]; !ok {
			return task.Task{}, fmt.Errorf("%w: tasks.user_id %d", failure.ErrIntegrity, t.Creator.ID)
		}
		row := taskRow{id: s.nextTaskID, text: t.Text, done: t.Done, userID: t.Creator.ID}
		s.nextTaskID++
		s.tasks[row.id] = row
		s.taskOrder = append(s.taskOrder, row.id)
		return s.toTask(row), nil
	}

	row, ok := s.tasks[t.ID]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	row.text = t.Text
	row.done = t.Done
	s.tasks[row.id] = row
	return s.toTask(row), nil
}

// Get finds a task by ID.
func (r *TaskRepository) Get(_ context.Context, id int64) (task.Task, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.tasks[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return s.toTask(row), nil
}

// ListByUser returns the creator's tasks in insertion order.
func (r *TaskRepository) ListByUser(_ context.Context, creator user.User) ([]task.Task, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]task.Task, 0)
	for _, id := range s.taskOrder {
		row := s.tasks[id]
		if row.userID == creator.ID {
			result = append(result, s.toTask(row))
		}
	}
	return result, nil
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(_ context.Context, id int64) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	s.taskOrder = removeID(s.taskOrder, id)
	return true, nil
}

// toTask must be called with s.mu held.
func (s *Store) toTask(row taskRow) task.Task {
	return task.Task{
		ID:      row.id,
		Text:    row.text,
		Done:    row.done,
		Creator: s.users[row.userID],
	}
}

func removeID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
