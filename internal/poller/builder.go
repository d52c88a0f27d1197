// internal/poller/builder.go
package poller

import (
	"time"

	"github.com/tamzrod/tulsbot-supervisor/internal/poller/tcp"
	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

// Timings are part of the product, not configuration.
const (
	Interval     = 5 * time.Second
	SettleDelay  = 3 * time.Second
	ProbeTimeout = 1 * time.Second
)

// Endpoints returns the fixed monitored set in declaration order.
func Endpoints() []status.Endpoint {
	return []status.Endpoint{
		{Name: "PostgreSQL", Address: "127.0.0.1", Port: 5432},
		{Name: "Qdrant", Address: "127.0.0.1", Port: 6333},
		{Name: "Context Manager", Address: "127.0.0.1", Port: 3001},
		{Name: "Web UI", Address: "127.0.0.1", Port: 3100},
	}
}

// Build constructs the production Poller: fixed endpoints, fixed
// timings, TCP connect probes.
func Build(opts ...Option) (*Poller, error) {
	return New(
		Config{
			Endpoints:    Endpoints(),
			Interval:     Interval,
			SettleDelay:  SettleDelay,
			ProbeTimeout: ProbeTimeout,
		},
		tcp.Prober{},
		opts...,
	)
}
