package app

import (
	"context"
	"os"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
)

// CommandConfig wires the command entrypoint.
type CommandConfig struct {
	Group   domain.Group
	Backend ports.Backend
	Logger  ports.Logger
	Metrics ports.Metrics

	// Exit terminates the process. Defaults to os.Exit.
	Exit func(code int)

	// Signals trigger the shutdown. Defaults to DefaultSignals.
	Signals []os.Signal
}

// RunCommand runs the single-group mode lazymc invokes as its server start
// command: it starts the group's server and parks until lazymc terminates
// it, then stops the server and exits.
func RunCommand(ctx context.Context, cfg CommandConfig) error {
	if cfg.Metrics == nil {
		cfg.Metrics = ports.NoopMetrics{}
	}
	if len(cfg.Signals) == 0 {
		cfg.Signals = DefaultSignals
	}
	logger := cfg.Logger.WithTarget(targetPrefix + "command")
	logger.Info("Received command to start group: " + cfg.Group.String())

	controller := NewController(cfg.Logger, cfg.Backend, cfg.Metrics, ControllerConfig{
		Group: cfg.Group,
		Exit:  cfg.Exit,
	})
	stopSignals := controller.Notify(cfg.Signals...)
	defer stopSignals()

	backend := newBestEffortBackend(cfg.Backend, cfg.Logger, cfg.Metrics)
	_ = backend.Start(ctx, cfg.Group)

	logger.Trace("Waiting for SIGTERM...")
	controller.Run(ctx)
	return nil
}
