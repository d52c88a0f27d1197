// internal/broadcast/broadcast.go
package broadcast

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

// Broadcaster publishes each tick to the indicator and all observers.
// Publish never fails and never waits on an observer.
type Broadcaster struct {
	mu       sync.Mutex
	ind      *indicatorWriter
	emitters []Emitter
	log      *logrus.Entry
	rec      Recorder
}

// Option customizes a Broadcaster.
type Option func(*Broadcaster)

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(b *Broadcaster) {
		if l != nil {
			b.log = l.WithField("component", "broadcast")
		}
	}
}

// WithRecorder sets the delivery recorder.
func WithRecorder(r Recorder) Option {
	return func(b *Broadcaster) {
		if r != nil {
			b.rec = r
		}
	}
}

// WithEmitters adds observer transports.
func WithEmitters(em ...Emitter) Option {
	return func(b *Broadcaster) {
		for _, e := range em {
			if e != nil {
				b.emitters = append(b.emitters, e)
			}
		}
	}
}

// New creates a Broadcaster. ind may be nil when no indicator exists.
func New(ind Indicator, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		ind: newIndicatorWriter(ind),
		log: logrus.StandardLogger().WithField("component", "broadcast"),
		rec: nopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish updates the indicator, then emits a health-update event to
// every observer transport. Failures are logged and dropped.
func (b *Broadcaster) Publish(s status.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// ------------------------------------------------------------
	// INDICATOR (best-effort)
	// ------------------------------------------------------------

	if err := b.ind.apply(s.Overall); err != nil {
		b.rec.IndicatorFailed()
		b.log.WithError(err).WithField("overall", s.Overall).Warn("indicator update failed")
	}

	// ------------------------------------------------------------
	// OBSERVERS (fire-and-forget, most recent wins)
	// ------------------------------------------------------------

	frame, err := status.Encode(s)
	if err != nil {
		b.log.WithError(err).Warn("health-update encode failed; observers skipped this tick")
		return
	}

	for _, e := range b.emitters {
		e.Emit(status.EventHealthUpdate, frame)
	}

	b.rec.Published(s.Overall)
}
