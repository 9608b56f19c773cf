package ports

import (
	"context"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
)

// Backend starts and stops the compute resource backing a group.
// Implementations must be safe for concurrent use: the router and the
// shutdown path may call Stop for the same group at the same time, and
// Stop must be idempotent.
type Backend interface {
	// Name identifies the backend in logs ("docker", "kubernetes").
	Name() string

	// Start starts the resource of the group.
	Start(ctx context.Context, group domain.Group) error

	// Stop stops the resource of the group.
	Stop(ctx context.Context, group domain.Group) error

	// StopAll stops every resource managed by the proxy.
	StopAll(ctx context.Context) error

	// ListGroupConfigs returns the raw label map of every managed resource.
	// Returns domain.ErrUnsupported when the backend cannot discover groups.
	ListGroupConfigs(ctx context.Context) ([]map[string]string, error)
}
