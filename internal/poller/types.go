// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

// Prober checks one endpoint.
// Unreachable is a normal outcome (false), never an error.
type Prober interface {
	Probe(address string, port uint16, timeout time.Duration) bool
}

// ProberFunc adapts a plain function to Prober.
type ProberFunc func(address string, port uint16, timeout time.Duration) bool

func (f ProberFunc) Probe(address string, port uint16, timeout time.Duration) bool {
	return f(address, port, timeout)
}

// Store receives every completed tick.
type Store interface {
	Write(s status.Snapshot)
}

// Publisher fans a completed tick out to the indicator and observers.
// Must not block on slow observers.
type Publisher interface {
	Publish(s status.Snapshot)
}

// Recorder observes loop progress (metrics).
type Recorder interface {
	TickCompleted(d time.Duration, s status.Snapshot)
	TickFailed()
}

type nopRecorder struct{}

func (nopRecorder) TickCompleted(time.Duration, status.Snapshot) {}
func (nopRecorder) TickFailed()                                  {}
