// internal/broadcast/types.go
package broadcast

import "github.com/tamzrod/tulsbot-supervisor/internal/status"

// Asset names the indicator image for one overall value.
type Asset string

const (
	AssetHealthy  Asset = "tray-green.png"
	AssetDegraded Asset = "tray-yellow.png"
	AssetDown     Asset = "tray-red.png"
)

// TooltipPrefix is the product name shown in the indicator hover text.
const TooltipPrefix = "Tulsbot"

// AssetFor maps overall to its indicator image. Unknown values map to down.
func AssetFor(o status.Overall) Asset {
	switch o {
	case status.Healthy:
		return AssetHealthy
	case status.Degraded:
		return AssetDegraded
	default:
		return AssetDown
	}
}

// Tooltip renders the indicator hover text for overall.
func Tooltip(o status.Overall) string {
	return TooltipPrefix + " — " + string(o)
}

// Indicator is the visual status indicator (tray icon).
// Every method is best-effort; errors are logged by the caller.
type Indicator interface {
	SetIcon(a Asset) error
	SetIconAsTemplate(template bool) error
	SetTooltip(text string) error
}

// Emitter delivers an encoded event frame to whoever is listening.
// Fire-and-forget: must not block, must not report per-observer failures.
type Emitter interface {
	Emit(event string, frame []byte)
}

// Recorder observes delivery outcomes (metrics).
type Recorder interface {
	IndicatorFailed()
	Published(o status.Overall)
}

type nopRecorder struct{}

func (nopRecorder) IndicatorFailed()         {}
func (nopRecorder) Published(status.Overall) {}
