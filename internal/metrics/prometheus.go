// Package metrics exposes control-loop activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
	"github.com/bft-labs/lazymc-docker-proxy/pkg/log"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "lazymc_proxy"

// Collector implements ports.Metrics on a private registry.
type Collector struct {
	logEvents    *prometheus.CounterVec
	passthrough  *prometheus.CounterVec
	triggers     *prometheus.CounterVec
	backendCalls *prometheus.CounterVec
	exits        *prometheus.CounterVec
	running      prometheus.Gauge

	registry *prometheus.Registry
}

var _ ports.Metrics = (*Collector)(nil)

// NewCollector creates a collector. Go runtime and process metrics are
// registered alongside.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.logEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_events_total",
			Help:      "Structured lazymc log lines re-emitted",
		},
		[]string{"group", "level"},
	)

	c.passthrough = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passthrough_lines_total",
			Help:      "Unstructured lazymc output lines echoed verbatim",
		},
		[]string{"group"},
	)

	c.triggers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_total",
			Help:      "Corrective actions fired by log triggers",
		},
		[]string{"group", "trigger"},
	)

	c.backendCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Backend operations by outcome",
		},
		[]string{"backend", "action", "status"},
	)

	c.exits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_exits_total",
			Help:      "Supervised lazymc processes that exited",
		},
		[]string{"group"},
	)

	c.running = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "groups_running",
			Help:      "Supervised lazymc processes alive",
		},
	)

	c.registry.MustRegister(
		c.logEvents,
		c.passthrough,
		c.triggers,
		c.backendCalls,
		c.exits,
		c.running,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// LogEvent implements ports.Metrics.
func (c *Collector) LogEvent(group domain.Group, level log.Level) {
	c.logEvents.WithLabelValues(group.String(), level.String()).Inc()
}

// PassthroughLine implements ports.Metrics.
func (c *Collector) PassthroughLine(group domain.Group) {
	c.passthrough.WithLabelValues(group.String()).Inc()
}

// Trigger implements ports.Metrics.
func (c *Collector) Trigger(group domain.Group, trigger string) {
	c.triggers.WithLabelValues(group.String(), trigger).Inc()
}

// BackendCall implements ports.Metrics.
func (c *Collector) BackendCall(backend string, action domain.BackendAction, err error) {
	status := "ok"
	switch {
	case errors.Is(err, domain.ErrUnsupported):
		status = "unsupported"
	case err != nil:
		status = "error"
	}
	c.backendCalls.WithLabelValues(backend, string(action), status).Inc()
}

// ProcessExit implements ports.Metrics.
func (c *Collector) ProcessExit(group domain.Group) {
	c.exits.WithLabelValues(group.String()).Inc()
}

// GroupsRunning implements ports.Metrics.
func (c *Collector) GroupsRunning(n int) {
	c.running.Set(float64(n))
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string, logger ports.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", ports.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
