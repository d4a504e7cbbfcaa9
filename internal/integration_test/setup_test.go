package integration

import (
	"sync"
	"testing"

	"github.com/leengari/rtdb/internal/engine"
	"github.com/leengari/rtdb/internal/repl"
	"github.com/leengari/rtdb/internal/storage/manager"
)

// MockObserver records every event it receives
type MockObserver struct {
	mu     sync.Mutex
	Events []engine.Event
}

func (m *MockObserver) OnEvent(event engine.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

func (m *MockObserver) snapshot() []engine.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]engine.Event(nil), m.Events...)
}

func (m *MockObserver) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = nil
}

// setupRegistry returns a registry over a fresh directory, closed on cleanup.
func setupRegistry(t *testing.T, opts ...manager.Option) (*manager.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	registry := manager.NewRegistry(dir, opts...)
	t.Cleanup(registry.CloseAll)
	return registry, dir
}

func setupSession(t *testing.T, opts ...manager.Option) (*repl.Session, *manager.Registry, string) {
	t.Helper()
	registry, dir := setupRegistry(t, opts...)
	return repl.NewSession(registry), registry, dir
}
