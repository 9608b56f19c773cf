package app

import (
	"context"
	"errors"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
)

// targetPrefix prefixes the targets of the proxy's own log entries.
const targetPrefix = "lazymc-docker-proxy::"

// bestEffortBackend wraps a backend so that every failure is logged at
// error severity and counted. Errors are still returned so callers can tell
// an unsupported operation from a successful one, but no caller in this
// package aborts on them.
type bestEffortBackend struct {
	backend ports.Backend
	logger  ports.Logger
	metrics ports.Metrics
}

func newBestEffortBackend(b ports.Backend, logger ports.Logger, metrics ports.Metrics) *bestEffortBackend {
	return &bestEffortBackend{
		backend: b,
		logger:  logger.WithTarget(targetPrefix + "backend"),
		metrics: metrics,
	}
}

func (b *bestEffortBackend) Start(ctx context.Context, group domain.Group) error {
	return b.record(domain.ActionStart, group, b.backend.Start(ctx, group))
}

func (b *bestEffortBackend) Stop(ctx context.Context, group domain.Group) error {
	return b.record(domain.ActionStop, group, b.backend.Stop(ctx, group))
}

func (b *bestEffortBackend) StopAll(ctx context.Context) error {
	return b.record(domain.ActionStopAll, "", b.backend.StopAll(ctx))
}

// ListGroupConfigs returns nil labels on failure. An unsupported listing is
// logged at debug level only, since callers fall back to the environment.
func (b *bestEffortBackend) ListGroupConfigs(ctx context.Context) ([]map[string]string, error) {
	labels, err := b.backend.ListGroupConfigs(ctx)
	if errors.Is(err, domain.ErrUnsupported) {
		b.metrics.BackendCall(b.backend.Name(), domain.ActionListGroupConfigs, err)
		b.logger.Debug("backend cannot list group configurations",
			ports.String("backend", b.backend.Name()))
		return nil, err
	}
	if b.record(domain.ActionListGroupConfigs, "", err) != nil {
		return nil, err
	}
	return labels, nil
}

func (b *bestEffortBackend) record(action domain.BackendAction, group domain.Group, err error) error {
	b.metrics.BackendCall(b.backend.Name(), action, err)
	if err == nil {
		return nil
	}
	fields := []ports.Field{
		ports.String("backend", b.backend.Name()),
		ports.String("action", string(action)),
		ports.Err(err),
	}
	if group != "" {
		fields = append(fields, ports.String("group", group.String()))
	}
	if errors.Is(err, domain.ErrUnsupported) {
		b.logger.Error("backend operation not supported", fields...)
	} else {
		b.logger.Error("backend operation failed", fields...)
	}
	return err
}
