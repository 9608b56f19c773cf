package app

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
)

// State represents the lifecycle state of the process.
type State int

const (
	StateRunning State = iota
	StateShuttingDown
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateShuttingDown:
		return "ShuttingDown"
	default:
		return "Unknown"
	}
}

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	// Group limits shutdown to one group (command mode). Empty stops all
	// managed resources (daemon mode).
	Group domain.Group

	// Health is flipped to unhealthy on shutdown. Optional.
	Health ports.HealthReporter

	// Exit terminates the process. Defaults to os.Exit.
	Exit func(code int)
}

// Controller coordinates process shutdown. Signal handlers only request a
// shutdown; Run performs the stop sequence exactly once and exits.
type Controller struct {
	mu    sync.RWMutex
	state State

	logger   ports.Logger
	backend  *bestEffortBackend
	group    domain.Group
	health   ports.HealthReporter
	exit     func(int)
	requests chan string
}

// NewController creates a controller in StateRunning.
func NewController(logger ports.Logger, backend ports.Backend, metrics ports.Metrics, cfg ControllerConfig) *Controller {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if cfg.Exit == nil {
		cfg.Exit = os.Exit
	}
	target := "entrypoint"
	if cfg.Group != "" {
		target = "command"
	}
	return &Controller{
		state:    StateRunning,
		logger:   logger.WithTarget(targetPrefix + target),
		backend:  newBestEffortBackend(backend, logger, metrics),
		group:    cfg.Group,
		health:   cfg.Health,
		exit:     cfg.Exit,
		requests: make(chan string, 1),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// RequestShutdown asks Run to shut down. It never blocks; only the first
// request is acted upon.
func (c *Controller) RequestShutdown(reason string) {
	select {
	case c.requests <- reason:
	default:
		c.logger.Debug("shutdown already requested, ignoring", ports.String("reason", reason))
	}
}

// Notify forwards the given signals to RequestShutdown. The returned
// function unregisters them.
func (c *Controller) Notify(sigs ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	var once sync.Once
	go func() {
		for sig := range ch {
			c.RequestShutdown("received signal " + sig.String())
		}
	}()

	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(ch)
		})
	}
}

// Run parks until a shutdown is requested or ctx ends, stops the backend
// resources in scope and exits with code 0. It returns the exit code for
// callers whose Exit function returns. Once shutting down, Run returns at
// once.
func (c *Controller) Run(ctx context.Context) int {
	if c.State() == StateShuttingDown {
		return 0
	}

	var reason string
	select {
	case reason = <-c.requests:
	case <-ctx.Done():
		reason = "context done"
	}

	if !c.beginShutdown() {
		return 0
	}

	// A new context: ctx may already be canceled here.
	stopCtx := context.Background()
	if c.group != "" {
		c.logger.Info("Received exit signal, stopping server...",
			ports.String("reason", reason),
			ports.String("group", c.group.String()))
		_ = c.backend.Stop(stopCtx, c.group)
	} else {
		c.logger.Info("Received exit signal. Stopping all server containers...",
			ports.String("reason", reason))
		_ = c.backend.StopAll(stopCtx)
	}

	if c.health != nil {
		if err := c.health.Unhealthy(); err != nil {
			c.logger.Warn("failed to mark unhealthy", ports.Err(err))
		}
	}

	c.exit(0)
	return 0
}

// beginShutdown moves Running to ShuttingDown. It reports false if the
// transition already happened.
func (c *Controller) beginShutdown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return false
	}
	c.state = StateShuttingDown
	c.logger.Debug("state transition",
		ports.String("from", StateRunning.String()),
		ports.String("to", StateShuttingDown.String()))
	return true
}
