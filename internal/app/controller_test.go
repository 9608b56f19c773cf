package app

import (
	"context"
	"syscall"
	"testing"
	"time"
)

// exitRecorder captures exit codes instead of terminating the test binary.
type exitRecorder struct {
	codes chan int
}

func newExitRecorder() *exitRecorder {
	return &exitRecorder{codes: make(chan int, 4)}
}

func (e *exitRecorder) Exit(code int) { e.codes <- code }

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateRunning, "Running"},
		{StateShuttingDown, "ShuttingDown"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestController_Run_StopAll(t *testing.T) {
	backend := &mockBackend{}
	health := &mockHealth{}
	exit := newExitRecorder()
	c := NewController(newMockLogger(), backend, nil, ControllerConfig{Health: health, Exit: exit.Exit})

	if c.State() != StateRunning {
		t.Fatalf("initial state = %v", c.State())
	}
	c.RequestShutdown("test")
	c.RequestShutdown("test again")

	if code := c.Run(context.Background()); code != 0 {
		t.Errorf("Run = %d, want 0", code)
	}
	if got := <-exit.codes; got != 0 {
		t.Errorf("exit code = %d, want 0", got)
	}
	if c.State() != StateShuttingDown {
		t.Errorf("state = %v, want ShuttingDown", c.State())
	}
	calls := backend.Calls()
	if len(calls) != 1 || calls[0] != "stop_all" {
		t.Errorf("backend calls = %v, want [stop_all]", calls)
	}
	if states := health.States(); len(states) != 1 || states[0] != "unhealthy" {
		t.Errorf("health = %v, want [unhealthy]", states)
	}

	// A second Run returns at once and does not stop again.
	returned := make(chan int, 1)
	go func() { returned <- c.Run(context.Background()) }()
	select {
	case code := <-returned:
		if code != 0 {
			t.Errorf("second Run = %d, want 0", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second Run blocked")
	}
	if calls := backend.Calls(); len(calls) != 1 {
		t.Errorf("backend calls after second Run = %v", calls)
	}
	select {
	case code := <-exit.codes:
		t.Errorf("second exit with code %d", code)
	default:
	}
}

func TestController_Run_GroupStop(t *testing.T) {
	backend := &mockBackend{}
	exit := newExitRecorder()
	c := NewController(newMockLogger(), backend, nil, ControllerConfig{Group: "survival", Exit: exit.Exit})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Run(ctx)

	calls := backend.Calls()
	if len(calls) != 1 || calls[0] != "stop:survival" {
		t.Errorf("backend calls = %v, want [stop:survival]", calls)
	}
	if got := <-exit.codes; got != 0 {
		t.Errorf("exit code = %d, want 0", got)
	}
}

func TestController_Notify(t *testing.T) {
	backend := &mockBackend{}
	exit := newExitRecorder()
	c := NewController(newMockLogger(), backend, nil, ControllerConfig{Exit: exit.Exit})

	stop := c.Notify(syscall.SIGUSR1)
	defer stop()

	done := make(chan struct{})
	go func() {
		c.Run(context.Background())
		close(done)
	}()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after signal")
	}
	if calls := backend.Calls(); len(calls) != 1 || calls[0] != "stop_all" {
		t.Errorf("backend calls = %v, want [stop_all]", calls)
	}

	stop()
}
