package app

import (
	"context"
	"sync"

	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

// Provider hands a Tracker to fn for the duration of one request.
type Provider interface {
	Do(ctx context.Context, fn func(*Tracker) error) error
}

// Static serves one long-lived Tracker. Calls are serialized so a
// check-then-save sequence in a service cannot interleave with another.
type Static struct {
	mu      sync.Mutex
	tracker *Tracker
}

var _ Provider = (*Static)(nil)

// NewStatic creates a Static provider around tracker.
func NewStatic(tracker *Tracker) *Static {
	return &Static{tracker: tracker}
}

// Do runs fn with the shared Tracker.
func (p *Static) Do(_ context.Context, fn func(*Tracker) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.tracker)
}

// TxStore runs a callback with repositories bound to one transaction.
type TxStore interface {
	WithinTx(ctx context.Context, fn func(user.Repository, task.Repository) error) error
}

// Scoped builds a fresh Tracker per call inside a store transaction.
type Scoped struct {
	store TxStore
}

var _ Provider = (*Scoped)(nil)

// NewScoped creates a Scoped provider over store.
func NewScoped(store TxStore) *Scoped {
	return &Scoped{store: store}
}

// Do runs fn in a transaction. The transaction commits only if fn returns nil.
func (p *Scoped) Do(ctx context.Context, fn func(*Tracker) error) error {
	return p.store.WithinTx(ctx, func(users user.Repository, tasks task.Repository) error {
		return fn(NewFromRepositories(users, tasks))
	})
}
