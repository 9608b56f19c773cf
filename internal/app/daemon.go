package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/groupconfig"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
)

// DefaultSignals are the signals that trigger a shutdown.
var DefaultSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// DaemonConfig wires the daemon entrypoint.
type DaemonConfig struct {
	Backend ports.Backend
	Logger  ports.Logger
	Metrics ports.Metrics
	Health  ports.HealthReporter

	// GroupOptions are passed to the group configuration resolver.
	GroupOptions groupconfig.Options

	// LookupEnv reads the fallback configuration. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// Passthrough receives unstructured lazymc output. Defaults to os.Stdout.
	Passthrough io.Writer

	// Exit terminates the process. Defaults to os.Exit.
	Exit func(code int)

	// Signals trigger the shutdown. Defaults to DefaultSignals.
	Signals []os.Signal
}

// RunDaemon runs the multi-group mode: it stops every managed server,
// resolves one configuration per group, spawns one lazymc process per group
// and parks until a shutdown signal, upon which every managed server is
// stopped again and the process exits.
//
// An error is returned only for fatal conditions: no usable configuration
// or a lazymc process that cannot be spawned.
func RunDaemon(ctx context.Context, cfg DaemonConfig) error {
	if cfg.Metrics == nil {
		cfg.Metrics = ports.NoopMetrics{}
	}
	if cfg.LookupEnv == nil {
		cfg.LookupEnv = os.LookupEnv
	}
	if len(cfg.Signals) == 0 {
		cfg.Signals = DefaultSignals
	}
	logger := cfg.Logger.WithTarget(targetPrefix + "entrypoint")
	backend := newBestEffortBackend(cfg.Backend, cfg.Logger, cfg.Metrics)

	// A flag left by an earlier run must not report healthy before launch.
	if cfg.Health != nil {
		if err := cfg.Health.Unhealthy(); err != nil {
			logger.Warn("failed to mark unhealthy", ports.Err(err))
		}
	}

	logger.Info("Ensuring all server containers are stopped...")
	_ = backend.StopAll(ctx)

	configs, err := resolveGroupConfigs(ctx, backend, cfg.GroupOptions, cfg.LookupEnv, logger)
	if err != nil {
		return err
	}

	controller := NewController(cfg.Logger, cfg.Backend, cfg.Metrics, ControllerConfig{
		Health: cfg.Health,
		Exit:   cfg.Exit,
	})
	stopSignals := controller.Notify(cfg.Signals...)
	defer stopSignals()

	router := NewRouter(cfg.Logger, cfg.Backend, cfg.Metrics, nil)
	supervisor := NewSupervisor(ctx, cfg.Logger, router, cfg.Metrics, cfg.Passthrough)
	if _, err := supervisor.Launch(configs); err != nil {
		return err
	}

	if cfg.Health != nil {
		if err := cfg.Health.Healthy(); err != nil {
			logger.Warn("failed to mark healthy", ports.Err(err))
		}
	}

	controller.Run(ctx)
	return nil
}

// resolveGroupConfigs turns the label maps reported by the backend into
// launch configurations, writing each group's lazymc configuration file.
// When the backend reports no usable labels, exactly one configuration is
// derived from the environment. The result is never empty on success and
// holds each group once.
func resolveGroupConfigs(ctx context.Context, backend *bestEffortBackend, opts groupconfig.Options, lookup func(string) (string, bool), logger ports.Logger) ([]domain.GroupConfig, error) {
	labels, _ := backend.ListGroupConfigs(ctx)

	seen := make(map[domain.Group]bool)
	var resolved []groupconfig.Config
	for _, l := range labels {
		c, err := groupconfig.FromLabels(l, opts)
		if err != nil {
			logger.Error("skipping container with invalid lazymc labels", ports.Err(err))
			continue
		}
		if seen[c.Group] {
			logger.Warn("group already configured by another container, skipping",
				ports.String("group", c.Group.String()))
			continue
		}
		seen[c.Group] = true
		resolved = append(resolved, c)
	}

	if len(resolved) == 0 {
		logger.Info("No labelled containers found, using environment configuration")
		c, err := groupconfig.FromEnv(lookup, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrNoGroupConfig, err)
		}
		resolved = append(resolved, c)
	}

	configs := make([]domain.GroupConfig, 0, len(resolved))
	for _, c := range resolved {
		gc, err := c.Resolve(opts)
		if err != nil {
			return nil, err
		}
		configs = append(configs, gc)
	}
	return configs, nil
}
