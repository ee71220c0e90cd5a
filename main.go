package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/metrics"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/api"
	"github.com/example/task-tracker/modules/tracker"
)

func main() {
	log.Println("=== Task Tracker ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	reg := metrics.New()

	// Order: independent modules first, then modules with dependencies.
	if err := app.Register(tracker.NewModule(cfg)); err != nil {
		log.Fatalf("Failed to register tracker module: %v", err)
	}
	if err := app.Register(activity.NewModule(cfg.ActivityLimit, reg)); err != nil {
		log.Fatalf("Failed to register activity module: %v", err)
	}
	if err := app.Register(api.NewModule(cfg, reg)); err != nil {
		log.Fatalf("Failed to register api module: %v", err)
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("  Store:         %s", cfg.DBType)
	log.Printf("  Identity kind: %s", cfg.IdentityKind)
	log.Println("")
	log.Printf("REST API Endpoints (%s):", cfg.HTTPAddr)
	log.Println("  POST   /api/v1/users                 - Register a user")
	log.Println("  GET    /api/v1/users/lookup?identity= - Resolve an identity to a user id")
	log.Println("  GET    /api/v1/users/:id             - Get a user")
	log.Println("  DELETE /api/v1/users/:id             - Delete a user and their tasks")
	log.Println("  POST   /api/v1/tasks                 - Create a task")
	log.Println("  GET    /api/v1/tasks?user_id=        - List a user's tasks")
	log.Println("  GET    /api/v1/tasks/:id             - Get a task")
	log.Println("  PATCH  /api/v1/tasks/:id             - Mark a task done or open")
	log.Println("  DELETE /api/v1/tasks/:id             - Delete a task")
	log.Println("  GET    /api/v1/activity              - Recent activity")
	log.Println("  GET    /health                       - Health check")
	log.Println("  GET    /metrics                      - Prometheus metrics")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
