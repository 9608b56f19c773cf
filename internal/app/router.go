package app

import (
	"context"
	"strings"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
	"github.com/bft-labs/lazymc-docker-proxy/pkg/log"
)

// ForceStopMessage is logged by lazymc when it has run out of ways to stop
// its server.
const ForceStopMessage = "Failed to stop server, no more suitable stopping method to use"

// MatchMode selects how a trigger compares messages.
type MatchMode int

const (
	// MatchExact fires when the message equals Trigger.Message.
	MatchExact MatchMode = iota
	// MatchPrefix fires when the message starts with Trigger.Message.
	MatchPrefix
)

// Trigger pairs a (level, message) pattern with a corrective action.
type Trigger struct {
	Name    string
	Level   log.Level
	Message string
	Match   MatchMode
	Action  func(ctx context.Context, r *Router, group domain.Group)
}

func (t Trigger) matches(ev domain.LogEvent) bool {
	if ev.Level != t.Level {
		return false
	}
	if t.Match == MatchPrefix {
		return strings.HasPrefix(ev.Message, t.Message)
	}
	return ev.Message == t.Message
}

// DefaultTriggers returns the built-in trigger table.
func DefaultTriggers() []Trigger {
	return []Trigger{
		{
			Name:    "force_stop",
			Level:   log.LevelWarn,
			Message: ForceStopMessage,
			Action:  forceStop,
		},
	}
}

// forceStop stops the group's backend resource directly, bypassing lazymc.
func forceStop(ctx context.Context, r *Router, group domain.Group) {
	r.logger.Warn("Unexpected server state detected, force stopping " + group.String() + " server container...")
	if err := r.backend.Stop(ctx, group); err != nil {
		return
	}
	r.logger.Info(group.String() + " server container forcefully stopped")
}

// Router re-emits parsed events under the group's namespace and runs the
// trigger table against them.
type Router struct {
	logger   ports.Logger
	emitter  ports.Logger
	backend  *bestEffortBackend
	metrics  ports.Metrics
	triggers []Trigger
}

// NewRouter creates a router. A nil triggers slice selects DefaultTriggers.
func NewRouter(logger ports.Logger, backend ports.Backend, metrics ports.Metrics, triggers []Trigger) *Router {
	if triggers == nil {
		triggers = DefaultTriggers()
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &Router{
		logger:   logger.WithTarget(targetPrefix + "entrypoint"),
		emitter:  logger,
		backend:  newBestEffortBackend(backend, logger, metrics),
		metrics:  metrics,
		triggers: triggers,
	}
}

// Route handles one event of the given group. Every matching trigger fires,
// once per call.
func (r *Router) Route(ctx context.Context, group domain.Group, ev domain.LogEvent) {
	r.emitter.WithTarget(GroupTarget(group, ev.Target)).Log(ev.Level, ev.Message)
	r.metrics.LogEvent(group, ev.Level)

	for _, t := range r.triggers {
		if !t.matches(ev) {
			continue
		}
		r.metrics.Trigger(group, t.Name)
		if t.Action != nil {
			t.Action(ctx, r, group)
		}
	}
}

// GroupTarget returns the namespace events of a group are re-emitted under.
func GroupTarget(group domain.Group, target string) string {
	return group.String() + "::" + target
}
