package hooks

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outguard/internal/logging"
)

// Handler handles one event. Handlers may append to the event's outbox.
type Handler func(ctx context.Context, event *Event) error

// Manager routes events to handlers.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *logging.Logger
}

// NewManager creates an empty manager.
func NewManager(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		handlers: make(map[string][]Handler),
		logger:   logger.Named("hooks"),
	}
}

// Register adds a handler for an event type ("message") or a type and
// action ("message:sent").
func (m *Manager) Register(key string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[key] = append(m.handlers[key], handler)
}

// Dispatch runs the handlers for the event's type, then those for its
// type and action, each group in registration order. Errors and panics are
// logged and do not stop later handlers.
func (m *Manager) Dispatch(ctx context.Context, event *Event) {
	if event == nil {
		return
	}

	m.mu.RLock()
	var handlers []Handler
	handlers = append(handlers, m.handlers[event.Type]...)
	if event.Action != "" {
		handlers = append(handlers, m.handlers[event.Key()]...)
	}
	m.mu.RUnlock()

	if event.SessionKey != "" {
		ctx = logging.WithSessionID(ctx, event.SessionKey)
	}
	if ch := event.Channel(); ch != "" {
		ctx = logging.WithChannel(ctx, ch)
	}

	for _, h := range handlers {
		if err := m.run(ctx, h, event); err != nil {
			m.logger.Error(ctx, "hook handler failed",
				zap.String("event", event.Key()),
				zap.Error(err))
		}
	}
}

// Handlers returns the number of handlers registered under key.
func (m *Manager) Handlers(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[key])
}

func (m *Manager) run(ctx context.Context, h Handler, event *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, event)
}
