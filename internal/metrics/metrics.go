// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/tulsbot-supervisor/internal/popover"
	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

const namespace = "supervisor"

// Collector records supervisor activity. It satisfies the recorder
// interfaces of the poller, broadcaster, popover manager, websocket hub and
// forwarder.
type Collector struct {
	reg *prometheus.Registry

	// Poll loop
	ticks        *prometheus.CounterVec
	tickDuration prometheus.Histogram
	serviceUp    *prometheus.GaugeVec
	overall      prometheus.Gauge

	// Broadcast
	published         *prometheus.CounterVec
	indicatorFailures prometheus.Counter
	observers         prometheus.Gauge
	observerDrops     prometheus.Counter

	// Commands
	popoverTransitions *prometheus.CounterVec
	windowFailures     *prometheus.CounterVec
	forwarded          *prometheus.CounterVec
}

// New creates a Collector on its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Collector{
		reg: reg,

		ticks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticks_total",
				Help:      "Poll ticks by result",
			},
			[]string{"result"},
		),

		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent probing all endpoints in one tick",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}),

		serviceUp: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_up",
				Help:      "1 if the service accepted a TCP connection on the last tick",
			},
			[]string{"service"},
		),

		overall: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overall_status",
			Help:      "Overall status: 0 down, 1 degraded, 2 healthy",
		}),

		published: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "health_updates_total",
				Help:      "Health updates published by overall status",
			},
			[]string{"overall"},
		),

		indicatorFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indicator_failures_total",
			Help:      "Failed tray indicator updates",
		}),

		observers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "observers",
			Help:      "Connected websocket observers",
		}),

		observerDrops: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observer_drops_total",
			Help:      "Observers dropped for not keeping up",
		}),

		popoverTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "popover_transitions_total",
				Help:      "Popover transitions by resulting state",
			},
			[]string{"state"},
		),

		windowFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "window_failures_total",
				Help:      "Swallowed window operation failures by operation",
			},
			[]string{"op"},
		),

		forwarded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forward_requests_total",
				Help:      "Forwarded requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// ---- poller.Recorder ----

func (c *Collector) TickCompleted(d time.Duration, s status.Snapshot) {
	c.ticks.WithLabelValues("ok").Inc()
	c.tickDuration.Observe(d.Seconds())
	for _, svc := range s.Services {
		v := 0.0
		if svc.Healthy {
			v = 1
		}
		c.serviceUp.WithLabelValues(svc.Name).Set(v)
	}
	c.overall.Set(float64(s.Overall.Rank()))
}

func (c *Collector) TickFailed() {
	c.ticks.WithLabelValues("failed").Inc()
}

// ---- broadcast.Recorder ----

func (c *Collector) IndicatorFailed() { c.indicatorFailures.Inc() }

func (c *Collector) Published(o status.Overall) {
	c.published.WithLabelValues(string(o)).Inc()
}

// ---- ws.Recorder ----

func (c *Collector) ObserversChanged(n int) { c.observers.Set(float64(n)) }

func (c *Collector) ObserverDropped() { c.observerDrops.Inc() }

// ---- popover.Recorder ----

func (c *Collector) Transition(s popover.State) {
	c.popoverTransitions.WithLabelValues(s.String()).Inc()
}

func (c *Collector) WindowFailed(op string) {
	c.windowFailures.WithLabelValues(op).Inc()
}

// ---- forward.Recorder ----

func (c *Collector) Forwarded(method, outcome string) {
	c.forwarded.WithLabelValues(method, outcome).Inc()
}
