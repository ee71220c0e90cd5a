package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/task-tracker/app"
	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/events"
)

// errNotStarted is returned by service handlers called before Start.
var errNotStarted = errors.New("tracker module not started")

// TrackerModule owns the store and serves user and task operations over
// request-reply services (core domain).
type TrackerModule struct {
	cfg      config.Config
	kind     user.IdentityKind
	provider app.Provider
	backend  backend
	eventBus mono.EventBus
}

var _ mono.Module = (*TrackerModule)(nil)
var _ mono.ServiceProviderModule = (*TrackerModule)(nil)
var _ mono.EventEmitterModule = (*TrackerModule)(nil)
var _ mono.HealthCheckableModule = (*TrackerModule)(nil)

// NewModule creates a TrackerModule. The store is opened in Start.
func NewModule(cfg config.Config) *TrackerModule {
	return &TrackerModule{
		cfg:  cfg,
		kind: cfg.Kind(),
	}
}

func (m *TrackerModule) Name() string {
	return "tracker"
}

func (m *TrackerModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TrackerModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserRegisteredV1.ToBase(),
		events.UserDeletedV1.ToBase(),
		events.TaskCreatedV1.ToBase(),
		events.TaskStatusChangedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TrackerModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register-user", json.Unmarshal, json.Marshal, m.registerUser,
	); err != nil {
		return fmt.Errorf("failed to register register-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.getUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "resolve-user", json.Unmarshal, json.Marshal, m.resolveUser,
	); err != nil {
		return fmt.Errorf("failed to register resolve-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-user", json.Unmarshal, json.Marshal, m.deleteUser,
	); err != nil {
		return fmt.Errorf("failed to register delete-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "set-task-status", json.Unmarshal, json.Marshal, m.setTaskStatus,
	); err != nil {
		return fmt.Errorf("failed to register set-task-status service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	log.Printf("[tracker] Registered services: register-user, get-user, resolve-user, delete-user, " +
		"create-task, list-tasks, get-task, set-task-status, delete-task")
	return nil
}

// Start opens the configured store.
func (m *TrackerModule) Start(ctx context.Context) error {
	log.Printf("[tracker] Opening %s store (identity kind: %s)", m.cfg.DBType, m.kind)

	provider, b, err := openBackend(ctx, m.cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	m.provider = provider
	m.backend = b

	if m.eventBus == nil {
		log.Println("[tracker] Warning: eventBus not set, events will not be published")
	}
	log.Println("[tracker] Module started successfully")
	return nil
}

// Stop closes the store.
func (m *TrackerModule) Stop(_ context.Context) error {
	if m.backend == nil {
		return nil
	}
	log.Println("[tracker] Closing store...")
	if err := m.backend.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	log.Println("[tracker] Store closed")
	return nil
}

// Health pings the store.
func (m *TrackerModule) Health(ctx context.Context) mono.HealthStatus {
	if m.backend == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}

	if err := m.backend.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}

	details := map[string]any{
		"driver":        m.backend.Driver(),
		"identity_kind": string(m.kind),
	}
	if m.cfg.DBType == config.DBSQLite {
		details["path"] = m.cfg.DBPath
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}
