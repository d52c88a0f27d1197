// internal/metrics/metrics_test.go
package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/tulsbot-supervisor/internal/broadcast"
	"github.com/tamzrod/tulsbot-supervisor/internal/broadcast/ws"
	"github.com/tamzrod/tulsbot-supervisor/internal/forward"
	"github.com/tamzrod/tulsbot-supervisor/internal/poller"
	"github.com/tamzrod/tulsbot-supervisor/internal/popover"
	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

var (
	_ poller.Recorder    = (*Collector)(nil)
	_ broadcast.Recorder = (*Collector)(nil)
	_ ws.Recorder        = (*Collector)(nil)
	_ popover.Recorder   = (*Collector)(nil)
	_ forward.Recorder   = (*Collector)(nil)
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector_Tick(t *testing.T) {
	c := New()

	c.TickCompleted(20*time.Millisecond, status.New([]status.ServiceHealth{
		{Name: "PostgreSQL", Address: "127.0.0.1", Port: 5432, Healthy: true},
		{Name: "Qdrant", Address: "127.0.0.1", Port: 6333, Healthy: false},
	}))
	c.TickFailed()

	out := scrape(t, c)
	assert.Contains(t, out, `supervisor_ticks_total{result="ok"} 1`)
	assert.Contains(t, out, `supervisor_ticks_total{result="failed"} 1`)
	assert.Contains(t, out, `supervisor_service_up{service="PostgreSQL"} 1`)
	assert.Contains(t, out, `supervisor_service_up{service="Qdrant"} 0`)
	assert.Contains(t, out, `supervisor_overall_status 1`)
	assert.Contains(t, out, `supervisor_tick_duration_seconds_count 1`)
}

func TestCollector_Broadcast(t *testing.T) {
	c := New()

	c.Published(status.Healthy)
	c.Published(status.Healthy)
	c.IndicatorFailed()
	c.ObserversChanged(3)
	c.ObserverDropped()

	out := scrape(t, c)
	assert.Contains(t, out, `supervisor_health_updates_total{overall="healthy"} 2`)
	assert.Contains(t, out, `supervisor_indicator_failures_total 1`)
	assert.Contains(t, out, `supervisor_observers 3`)
	assert.Contains(t, out, `supervisor_observer_drops_total 1`)
}

func TestCollector_Commands(t *testing.T) {
	c := New()

	c.Transition(popover.Visible)
	c.Transition(popover.Hidden)
	c.WindowFailed("focus")
	c.Forwarded("GET", "ok")
	c.Forwarded("POST", "status")

	out := scrape(t, c)
	assert.Contains(t, out, `supervisor_popover_transitions_total{state="visible"} 1`)
	assert.Contains(t, out, `supervisor_popover_transitions_total{state="hidden"} 1`)
	assert.Contains(t, out, `supervisor_window_failures_total{op="focus"} 1`)
	assert.Contains(t, out, `supervisor_forward_requests_total{method="GET",outcome="ok"} 1`)
	assert.Contains(t, out, `supervisor_forward_requests_total{method="POST",outcome="status"} 1`)
}

func TestCollector_SeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.TickFailed()

	assert.Contains(t, scrape(t, a), `supervisor_ticks_total{result="failed"} 1`)
	assert.NotContains(t, scrape(t, b), `supervisor_ticks_total{result="failed"}`)
}
