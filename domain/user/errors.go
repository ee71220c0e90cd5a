package user

import "errors"

var (
	// ErrNotFound indicates no user matches the requested id or identity.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateIdentity indicates the identity is already registered.
	ErrDuplicateIdentity = errors.New("identity already registered")
)
