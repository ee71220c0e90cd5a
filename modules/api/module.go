package api

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/metrics"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/tracker"
)

// APIModule is the driving adapter that exposes the tracker over HTTP.
// It reaches the tracker and the activity log only through their ports.
type APIModule struct {
	addr     string
	botToken string
	metrics  *metrics.Metrics

	app      *fiber.App
	tracker  tracker.TrackerPort
	activity activity.ActivityPort
}

var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. m may be nil, in which case no
// request metrics are recorded and /metrics is not served.
func NewModule(cfg config.Config, m *metrics.Metrics) *APIModule {
	return &APIModule{
		addr:     cfg.HTTPAddr,
		botToken: cfg.BotToken,
		metrics:  m,
	}
}

func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the modules whose services the API calls.
func (m *APIModule) Dependencies() []string {
	return []string{"tracker", "activity"}
}

// SetDependencyServiceContainer wraps each dependency's container in its port.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "tracker":
		m.tracker = tracker.NewTrackerAdapter(container)
	case "activity":
		m.activity = activity.NewActivityAdapter(container)
	}
}

// Start builds the Fiber app and serves it in the background.
func (m *APIModule) Start(_ context.Context) error {
	if m.tracker == nil {
		return errors.New("tracker dependency not set")
	}
	if m.activity == nil {
		return errors.New("activity dependency not set")
	}

	m.app = m.newApp()

	// Server availability is verified via Health().
	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	if m.botToken == "" {
		log.Printf("[api] Warning: BOT_TOKEN is not set, /api/v1 is open")
	}
	log.Printf("[api] HTTP server started on %s", m.addr)
	return nil
}

// newApp assembles middleware and routes without listening.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[api] ${status} - ${method} ${path} (${latency})\n",
	}))
	if m.metrics != nil {
		app.Use(m.metrics.Middleware())
	}

	m.setupRoutes(app)
	return app
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "HTTP server not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr":      m.addr,
			"bot_token": m.botToken != "",
		},
	}
}

// customErrorHandler handles errors that escaped the handlers, such as
// unknown routes and recovered panics.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.Printf("[api] Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   errorCodeFor(code),
		Message: message,
	})
}

func errorCodeFor(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	}
	if status >= fiber.StatusInternalServerError {
		return "server_error"
	}
	return fmt.Sprintf("http_%d", status)
}
