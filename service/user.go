// Package service holds the business rules for users and tasks. Services are
// stateless; they only enforce invariants and delegate to repositories.
package service

import (
	"context"
	"fmt"

	"github.com/example/task-tracker/domain/user"
)

// UserService registers, looks up and removes users.
type UserService struct {
	users user.Repository
}

// NewUserService creates a UserService over users.
func NewUserService(users user.Repository) *UserService {
	return &UserService{users: users}
}

// RegisterUser persists a new user with the given normalized identity.
// It fails with user.ErrDuplicateIdentity when the identity is taken.
func (s *UserService) RegisterUser(ctx context.Context, identity string) (user.User, error) {
	u, err := user.New(identity)
	if err != nil {
		return user.User{}, err
	}

	exists, err := s.users.ExistsByIdentity(ctx, identity)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to check identity: %w", err)
	}
	if exists {
		return user.User{}, user.ErrDuplicateIdentity
	}

	return s.users.Save(ctx, u)
}

// GetUser returns the user with id or user.ErrNotFound.
func (s *UserService) GetUser(ctx context.Context, id int64) (user.User, error) {
	return s.users.Get(ctx, id)
}

// DeleteUser removes the user and, with it, the user's tasks. It reports
// whether a user was removed.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return s.users.Delete(ctx, id)
}

// ResolveID maps an external identity to the internal user id.
func (s *UserService) ResolveID(ctx context.Context, identity string) (int64, error) {
	return s.users.IDByIdentity(ctx, identity)
}
