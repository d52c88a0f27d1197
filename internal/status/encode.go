// internal/status/encode.go
package status

import "encoding/json"

// Event is the envelope delivered to observers.
type Event struct {
	Event   string   `json:"event"`
	Payload Snapshot `json:"payload"`
}

// Encode converts a Snapshot into a health-update event frame.
// No IO. No side effects.
func Encode(s Snapshot) ([]byte, error) {
	return json.Marshal(Event{
		Event:   EventHealthUpdate,
		Payload: s,
	})
}
