package user

import "context"

// Repository persists users. Lookups of absent users fail with ErrNotFound;
// implementations never return a zero User with a nil error instead.
type Repository interface {
	// Save inserts u when u.ID is zero and assigns its ID. Users have no
	// mutable fields, so saving a persisted user only checks it still exists.
	Save(ctx context.Context, u User) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	ExistsByIdentity(ctx context.Context, identity string) (bool, error)
	// Delete removes the user and, by cascade, the user's tasks. It reports
	// false without error when no such user exists.
	Delete(ctx context.Context, id int64) (bool, error)
	IDByIdentity(ctx context.Context, identity string) (int64, error)
}
