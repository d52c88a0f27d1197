// internal/status/constants.go
package status

// Overall is the three-way summary of every monitored service.
type Overall string

// ---- OVERALL VALUES ----

// Healthy means every probe in the tick succeeded.
const Healthy Overall = "healthy"

// Degraded means at least one probe succeeded and at least one failed.
const Degraded Overall = "degraded"

// Down means no probe succeeded. Also the boot state before the first tick.
const Down Overall = "down"

// ---- EVENTS ----

// EventHealthUpdate is the event name observers listen for.
const EventHealthUpdate = "health-update"

// Rank orders overall values for gauges: down=0, degraded=1, healthy=2.
// Unknown values rank as down.
func (o Overall) Rank() int {
	switch o {
	case Healthy:
		return 2
	case Degraded:
		return 1
	default:
		return 0
	}
}

func (o Overall) String() string { return string(o) }
