// internal/poller/runner.go
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

// Run waits the settle delay, then ticks until ctx is done:
// aggregate, store, publish, sleep Interval.
// A failing tick is logged and skipped; the loop keeps going.
func (p *Poller) Run(ctx context.Context, store Store, pub Publisher) {
	if !sleep(ctx, p.cfg.SettleDelay) {
		return
	}

	var prev status.Snapshot
	first := true

	for {
		snap, err := p.tick(store, pub)
		if err != nil {
			p.rec.TickFailed()
			p.log.WithError(err).Warn("tick failed; skipping")
		} else {
			if first || prev.Overall != snap.Overall {
				p.log.WithFields(logrus.Fields{
					"overall": snap.Overall,
					"healthy": snap.HealthyCount(),
					"total":   len(snap.Services),
				}).Info("overall health changed")
			} else if status.Changed(prev, snap) {
				p.log.WithField("overall", snap.Overall).Debug("service health changed")
			}
			prev = snap
			first = false
		}

		if !sleep(ctx, p.cfg.Interval) {
			return
		}
	}
}

// tick runs one Probe -> Aggregate -> Store -> Publish pass.
// Panics anywhere in the pass are contained to this tick.
func (p *Poller) tick(store Store, pub Publisher) (snap status.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poller: tick panic: %v", r)
		}
	}()

	start := time.Now()
	snap = p.PollOnce()

	if store != nil {
		store.Write(snap)
	}
	if pub != nil {
		pub.Publish(snap)
	}

	p.rec.TickCompleted(time.Since(start), snap)
	p.log.WithFields(logrus.Fields{
		"overall":  snap.Overall,
		"duration": time.Since(start),
	}).Debug("tick complete")

	return snap, nil
}

// sleep returns false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
