// Package config reads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/example/task-tracker/domain/user"
)

// Storage backends selectable with DB_TYPE.
const (
	DBSQLite   = "sqlite"
	DBPostgres = "postgres"
	DBMemory   = "memory"
)

// Config holds every setting the service reads at start.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR,default=:3000"`
	DBType          string        `env:"DB_TYPE,default=sqlite"`
	DBPath          string        `env:"DB_PATH,default=task_tracker.db"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	DBDebug         bool          `env:"DB_DEBUG,default=false"`
	IdentityKind    string        `env:"IDENTITY_KIND,default=telegram"`
	BotToken        string        `env:"BOT_TOKEN"`
	ActivityLimit   int           `env:"ACTIVITY_LIMIT,default=100"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`
}

// Load reads .env when present, decodes the environment and validates it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.DBType {
	case DBSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case DBPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	case DBMemory:
	default:
		return fmt.Errorf("unknown DB_TYPE %q (want %s, %s or %s)", c.DBType, DBSQLite, DBPostgres, DBMemory)
	}

	if !c.Kind().Valid() {
		return fmt.Errorf("unknown IDENTITY_KIND %q (want %s or %s)", c.IdentityKind, user.KindTelegram, user.KindNickname)
	}
	if c.ActivityLimit <= 0 {
		return fmt.Errorf("ACTIVITY_LIMIT must be positive, got %d", c.ActivityLimit)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Kind is the configured identity kind.
func (c Config) Kind() user.IdentityKind {
	return user.IdentityKind(c.IdentityKind)
}
