package ports

import (
	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/pkg/log"
)

// Metrics records control-loop activity.
type Metrics interface {
	// LogEvent counts a re-emitted structured line.
	LogEvent(group domain.Group, level log.Level)

	// PassthroughLine counts a line echoed verbatim.
	PassthroughLine(group domain.Group)

	// Trigger counts a fired trigger.
	Trigger(group domain.Group, trigger string)

	// BackendCall counts a backend operation and whether it failed.
	BackendCall(backend string, action domain.BackendAction, err error)

	// ProcessExit counts a supervised process that exited.
	ProcessExit(group domain.Group)

	// GroupsRunning sets the number of supervised processes alive.
	GroupsRunning(n int)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) LogEvent(domain.Group, log.Level)                {}
func (NoopMetrics) PassthroughLine(domain.Group)                    {}
func (NoopMetrics) Trigger(domain.Group, string)                    {}
func (NoopMetrics) BackendCall(string, domain.BackendAction, error) {}
func (NoopMetrics) ProcessExit(domain.Group)                        {}
func (NoopMetrics) GroupsRunning(int)                               {}
