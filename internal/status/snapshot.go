// internal/status/snapshot.go
package status

// Endpoint identifies one monitored service.
// Fixed at startup; never reconfigured at runtime.
type Endpoint struct {
	Name    string
	Address string
	Port    uint16
}

// ServiceHealth is the result of one probe in one tick.
type ServiceHealth struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Port    uint16 `json:"port"`
	Healthy bool   `json:"healthy"`
}

// Snapshot is the aggregate health record.
// Services keep endpoint declaration order. Overall is always derived
// from Services; build snapshots with New or Initial, never by hand.
type Snapshot struct {
	Services []ServiceHealth `json:"services"`
	Overall  Overall         `json:"overall"`
}

// New builds a snapshot from per-service results.
// The slice is copied so the caller may reuse it.
func New(services []ServiceHealth) Snapshot {
	cp := make([]ServiceHealth, len(services))
	copy(cp, services)

	return Snapshot{
		Services: cp,
		Overall:  Derive(cp),
	}
}

// Initial is the boot snapshot: every endpoint unhealthy, overall down.
func Initial(endpoints []Endpoint) Snapshot {
	services := make([]ServiceHealth, 0, len(endpoints))
	for _, ep := range endpoints {
		services = append(services, ServiceHealth{
			Name:    ep.Name,
			Address: ep.Address,
			Port:    ep.Port,
			Healthy: false,
		})
	}
	return New(services)
}

// Derive computes overall from per-service results.
// An empty set is down.
func Derive(services []ServiceHealth) Overall {
	healthy := 0
	for _, s := range services {
		if s.Healthy {
			healthy++
		}
	}

	switch {
	case len(services) > 0 && healthy == len(services):
		return Healthy
	case healthy > 0:
		return Degraded
	default:
		return Down
	}
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	if s.Services == nil {
		return Snapshot{Overall: s.Overall}
	}
	cp := make([]ServiceHealth, len(s.Services))
	copy(cp, s.Services)
	return Snapshot{Services: cp, Overall: s.Overall}
}

// HealthyCount returns the number of services whose last probe succeeded.
func (s Snapshot) HealthyCount() int {
	n := 0
	for _, svc := range s.Services {
		if svc.Healthy {
			n++
		}
	}
	return n
}

// Consistent reports whether Overall matches Services.
func (s Snapshot) Consistent() bool {
	return s.Overall == Derive(s.Services)
}

// Changed reports whether next differs from prev in any way an observer
// would notice: overall, membership, order, or any per-service result.
func Changed(prev, next Snapshot) bool {
	if prev.Overall != next.Overall {
		return true
	}
	if len(prev.Services) != len(next.Services) {
		return true
	}
	for i := range prev.Services {
		if prev.Services[i] != next.Services[i] {
			return true
		}
	}
	return false
}
