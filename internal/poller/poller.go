// internal/poller/poller.go
package poller

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Endpoints    []status.Endpoint
	Interval     time.Duration
	SettleDelay  time.Duration
	ProbeTimeout time.Duration
}

// Poller is a clock-driven aggregator.
type Poller struct {
	cfg    Config
	prober Prober
	log    *logrus.Entry
	rec    Recorder
}

// Option customizes a Poller.
type Option func(*Poller)

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.log = l.WithField("component", "poller")
		}
	}
}

// WithRecorder sets the tick recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Poller) {
		if r != nil {
			p.rec = r
		}
	}
}

// New creates a poller with immutable config.
func New(cfg Config, prober Prober, opts ...Option) (*Poller, error) {
	if prober == nil {
		return nil, errors.New("poller: prober required")
	}
	if len(cfg.Endpoints) == 0 {
		return nil, errors.New("poller: at least one endpoint required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.SettleDelay < 0 {
		return nil, errors.New("poller: settle delay must be >= 0")
	}
	if cfg.ProbeTimeout <= 0 {
		return nil, errors.New("poller: probe timeout must be > 0")
	}

	seen := make(map[string]struct{}, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		if ep.Name == "" {
			return nil, errors.New("poller: endpoint name required")
		}
		if _, dup := seen[ep.Name]; dup {
			return nil, errors.New("poller: duplicate endpoint name " + ep.Name)
		}
		seen[ep.Name] = struct{}{}
	}

	eps := make([]status.Endpoint, len(cfg.Endpoints))
	copy(eps, cfg.Endpoints)
	cfg.Endpoints = eps

	p := &Poller{
		cfg:    cfg,
		prober: prober,
		log:    logrus.StandardLogger().WithField("component", "poller"),
		rec:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Endpoints returns a copy of the monitored set in declaration order.
func (p *Poller) Endpoints() []status.Endpoint {
	out := make([]status.Endpoint, len(p.cfg.Endpoints))
	copy(out, p.cfg.Endpoints)
	return out
}

// PollOnce performs exactly one aggregation.
// Probes run concurrently; all of them finish (or time out) before the
// snapshot is built. A failed probe is recorded as unhealthy; no retries.
func (p *Poller) PollOnce() status.Snapshot {
	services := make([]status.ServiceHealth, len(p.cfg.Endpoints))

	var wg sync.WaitGroup
	for i, ep := range p.cfg.Endpoints {
		wg.Add(1)
		go func(i int, ep status.Endpoint) {
			defer wg.Done()
			services[i] = status.ServiceHealth{
				Name:    ep.Name,
				Address: ep.Address,
				Port:    ep.Port,
				Healthy: p.probe(ep),
			}
		}(i, ep)
	}
	wg.Wait()

	return status.New(services)
}

// probe never panics out: a misbehaving prober counts as unreachable.
func (p *Poller) probe(ep status.Endpoint) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.WithFields(logrus.Fields{
				"service": ep.Name,
				"port":    ep.Port,
				"panic":   r,
			}).Warn("probe panicked; recording service as unhealthy")
			ok = false
		}
	}()
	return p.prober.Probe(ep.Address, ep.Port, p.cfg.ProbeTimeout)
}
