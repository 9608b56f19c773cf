package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/pkg/log"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("")

	c.LogEvent("survival", log.LevelInfo)
	c.LogEvent("survival", log.LevelInfo)
	c.LogEvent("survival", log.LevelWarn)
	c.PassthroughLine("survival")
	c.Trigger("survival", "force_stop")
	c.ProcessExit("creative")
	c.GroupsRunning(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.logEvents.WithLabelValues("survival", "INFO")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.logEvents.WithLabelValues("survival", "WARN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.passthrough.WithLabelValues("survival")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.exits.WithLabelValues("creative")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.running))

	expected := `
# HELP lazymc_proxy_triggers_total Corrective actions fired by log triggers
# TYPE lazymc_proxy_triggers_total counter
lazymc_proxy_triggers_total{group="survival",trigger="force_stop"} 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "lazymc_proxy_triggers_total"))
}

func TestCollector_BackendCallStatus(t *testing.T) {
	c := NewCollector("test")

	c.BackendCall("docker", domain.ActionStop, nil)
	c.BackendCall("docker", domain.ActionStop, errors.New("boom"))
	c.BackendCall("kubernetes", domain.ActionListGroupConfigs, domain.ErrUnsupported)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.backendCalls.WithLabelValues("docker", "stop", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.backendCalls.WithLabelValues("docker", "stop", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.backendCalls.WithLabelValues("kubernetes", "list_group_configs", "unsupported")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("")
	c.Trigger("g", "force_stop")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `lazymc_proxy_triggers_total{group="g",trigger="force_stop"} 1`)
}
