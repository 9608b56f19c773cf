package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
	"github.com/bft-labs/lazymc-docker-proxy/pkg/log"
)

// entry is one recorded log call.
type entry struct {
	level  log.Level
	target string
	msg    string
}

type logStore struct {
	mu      sync.Mutex
	entries []entry
}

// mockLogger records every entry with its target.
type mockLogger struct {
	store  *logStore
	target string
}

func newMockLogger() *mockLogger {
	return &mockLogger{store: &logStore{}}
}

func (m *mockLogger) Trace(msg string, _ ...ports.Field) { m.Log(log.LevelTrace, msg) }
func (m *mockLogger) Debug(msg string, _ ...ports.Field) { m.Log(log.LevelDebug, msg) }
func (m *mockLogger) Info(msg string, _ ...ports.Field)  { m.Log(log.LevelInfo, msg) }
func (m *mockLogger) Warn(msg string, _ ...ports.Field)  { m.Log(log.LevelWarn, msg) }
func (m *mockLogger) Error(msg string, _ ...ports.Field) { m.Log(log.LevelError, msg) }

func (m *mockLogger) Log(level log.Level, msg string, _ ...ports.Field) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = append(m.store.entries, entry{level: level, target: m.target, msg: msg})
}

func (m *mockLogger) WithTarget(target string) ports.Logger {
	return &mockLogger{store: m.store, target: target}
}

func (m *mockLogger) Entries() []entry {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return append([]entry{}, m.store.entries...)
}

func (m *mockLogger) Has(level log.Level, target, msg string) bool {
	for _, e := range m.Entries() {
		if e.level == level && e.target == target && e.msg == msg {
			return true
		}
	}
	return false
}

// mockBackend records calls and returns configured errors.
type mockBackend struct {
	mu       sync.Mutex
	calls    []string
	labels   []map[string]string
	listErr  error
	startErr error
	stopErr  error
	stopped  chan domain.Group
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockBackend) Start(_ context.Context, group domain.Group) error {
	m.record("start:" + group.String())
	return m.startErr
}

func (m *mockBackend) Stop(_ context.Context, group domain.Group) error {
	m.record("stop:" + group.String())
	if m.stopped != nil {
		m.stopped <- group
	}
	return m.stopErr
}

func (m *mockBackend) StopAll(context.Context) error {
	m.record("stop_all")
	return nil
}

func (m *mockBackend) ListGroupConfigs(context.Context) ([]map[string]string, error) {
	m.record("list")
	return m.labels, m.listErr
}

func (m *mockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.calls...)
}

// mockMetrics counts triggers and backend calls.
type mockMetrics struct {
	ports.NoopMetrics

	mu          sync.Mutex
	triggers    map[string]int
	failures    int
	passthrough int
	exits       int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{triggers: make(map[string]int)}
}

func (m *mockMetrics) Trigger(group domain.Group, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers[group.String()+"/"+name]++
}

func (m *mockMetrics) BackendCall(_ string, _ domain.BackendAction, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failures++
	}
}

func (m *mockMetrics) PassthroughLine(domain.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passthrough++
}

func (m *mockMetrics) ProcessExit(domain.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exits++
}

// mockHealth records health transitions.
type mockHealth struct {
	mu     sync.Mutex
	states []string
}

func (m *mockHealth) Healthy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, "healthy")
	return nil
}

func (m *mockHealth) Unhealthy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, "unhealthy")
	return nil
}

func (m *mockHealth) States() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.states...)
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
