package editor

import (
	"context"
	"sync"
)

// Event names emitted by a Session.
const (
	EventDocumentChanged = "document:changed"
	EventSaveState       = "save:state-changed"
	EventSessionClosed   = "session:closed"
	EventHistoryEdge     = "history:at-edge"
)

// EventEmitter decouples the session from whatever surface renders it
// (the terminal UI, the MCP server, tests).
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NoopEmitter discards all events.
type NoopEmitter struct{}

func (NoopEmitter) Emit(context.Context, string, any) {}

// MockEmitter records events for assertions in tests.
type MockEmitter struct {
	mu     sync.Mutex
	Events []MockEvent
}

type MockEvent struct {
	Name string
	Data any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, MockEvent{Name: event, Data: data})
}

// Names returns the emitted event names in order.
func (m *MockEmitter) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Name
	}
	return out
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Events {
		if e.Name == event {
			n++
		}
	}
	return n
}

// Last returns the most recent emission of event.
func (m *MockEmitter) Last(event string) (MockEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].Name == event {
			return m.Events[i], true
		}
	}
	return MockEvent{}, false
}
