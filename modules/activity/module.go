package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/google/uuid"

	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/metrics"
)

// Entry is one line of the activity log.
type Entry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	UserID    int64     `json:"user_id,omitempty"`
	TaskID    int64     `json:"task_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityModule keeps a bounded log of recent tracker events
// (driven adapter). The oldest entries are dropped once limit is reached.
type ActivityModule struct {
	limit   int
	metrics *metrics.Metrics

	mu      sync.RWMutex
	entries []Entry
}

const defaultLimit = 100

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)

// NewModule creates an ActivityModule. m may be nil.
func NewModule(limit int, m *metrics.Metrics) *ActivityModule {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &ActivityModule{
		limit:   limit,
		metrics: m,
		entries: make([]Entry, 0, limit),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.UserRegisteredV1, m.handleUserRegistered, m); err != nil {
		return fmt.Errorf("failed to register UserRegistered consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.UserDeletedV1, m.handleUserDeleted, m); err != nil {
		return fmt.Errorf("failed to register UserDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskStatusChangedV1, m.handleTaskStatusChanged, m); err != nil {
		return fmt.Errorf("failed to register TaskStatusChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[activity] Registered event consumers: UserRegistered, UserDeleted, TaskCreated, TaskStatusChanged, TaskDeleted")
	return nil
}

// RegisterServices exposes the log as the recent-activity service.
func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent-activity", json.Unmarshal, json.Marshal, m.recentActivity,
	); err != nil {
		return fmt.Errorf("failed to register recent-activity service: %w", err)
	}
	log.Printf("[activity] Registered services: recent-activity")
	return nil
}

func (m *ActivityModule) handleUserRegistered(_ context.Context, event events.UserRegisteredEvent, _ *mono.Msg) error {
	log.Printf("[activity] User registered: %d (%s)", event.UserID, event.Identity)
	m.record(Entry{
		Type:    "user_registered",
		Message: fmt.Sprintf("User %s registered", event.Identity),
		UserID:  event.UserID,
	})
	return nil
}

func (m *ActivityModule) handleUserDeleted(_ context.Context, event events.UserDeletedEvent, _ *mono.Msg) error {
	log.Printf("[activity] User deleted: %d", event.UserID)
	m.record(Entry{
		Type:    "user_deleted",
		Message: fmt.Sprintf("User %d deleted with their tasks", event.UserID),
		UserID:  event.UserID,
	})
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task created: %d for user %d", event.TaskID, event.UserID)
	m.record(Entry{
		Type:    "task_created",
		Message: fmt.Sprintf("New task '%s' created", event.Text),
		UserID:  event.UserID,
		TaskID:  event.TaskID,
	})
	return nil
}

func (m *ActivityModule) handleTaskStatusChanged(_ context.Context, event events.TaskStatusChangedEvent, _ *mono.Msg) error {
	state := "reopened"
	if event.Done {
		state = "done"
	}
	log.Printf("[activity] Task %d %s", event.TaskID, state)
	m.record(Entry{
		Type:    "task_" + state,
		Message: fmt.Sprintf("Task %d marked %s", event.TaskID, state),
		UserID:  event.UserID,
		TaskID:  event.TaskID,
	})
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task deleted: %d", event.TaskID)
	m.record(Entry{
		Type:    "task_deleted",
		Message: fmt.Sprintf("Task %d deleted", event.TaskID),
		TaskID:  event.TaskID,
	})
	return nil
}

// recentActivity handles the recent-activity service request.
func (m *ActivityModule) recentActivity(_ context.Context, req RecentActivityRequest, _ *mono.Msg) (RecentActivityResponse, error) {
	return RecentActivityResponse{Entries: m.Recent(req.Limit)}, nil
}

func (m *ActivityModule) record(entry Entry) {
	entry.ID = uuid.New().String()
	entry.Timestamp = time.Now()

	if m.metrics != nil {
		m.metrics.ObserveEvent(entry.Type)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= m.limit {
		m.entries = append(m.entries[:0], m.entries[len(m.entries)-m.limit+1:]...)
	}
	m.entries = append(m.entries, entry)
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns everything kept.
func (m *ActivityModule) Recent(limit int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]Entry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, m.entries[i])
	}
	return result
}

func (m *ActivityModule) Start(_ context.Context) error {
	log.Printf("[activity] Module started - keeping the last %d tracker events", m.limit)
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	log.Println("[activity] Module stopped")
	return nil
}
