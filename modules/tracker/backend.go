package tracker

import (
	"context"
	"fmt"

	"github.com/example/task-tracker/app"
	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/storage/gormstore"
	"github.com/example/task-tracker/storage/memory"
	"github.com/example/task-tracker/storage/pgstore"
)

// backend is the part of a store the module manages directly.
type backend interface {
	Ping(ctx context.Context) error
	Close() error
	Driver() string
}

// openBackend builds the store selected by cfg.DBType and the provider that
// hands out Trackers over it. The memory store gets one long-lived Tracker;
// relational stores get a Tracker per transaction.
func openBackend(ctx context.Context, cfg config.Config) (app.Provider, backend, error) {
	switch cfg.DBType {
	case config.DBMemory:
		store := memory.NewStore()
		return app.NewStatic(app.NewFromRepositories(store.Users(), store.Tasks())), store, nil
	case config.DBSQLite:
		store, err := gormstore.Open(cfg.DBPath, cfg.DBDebug)
		if err != nil {
			return nil, nil, err
		}
		return app.NewScoped(store), store, nil
	case config.DBPostgres:
		store, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return app.NewScoped(store), store, nil
	}
	return nil, nil, fmt.Errorf("unknown DB_TYPE %q", cfg.DBType)
}
