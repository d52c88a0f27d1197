// internal/commands/commands.go
package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/tulsbot-supervisor/internal/popover"
	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

// MainWindowLabel is the label of the main application window.
const MainWindowLabel = "main"

// HealthReader is the read side of the health store.
type HealthReader interface {
	Read() status.Snapshot
}

// Popover is the popover state machine.
type Popover interface {
	Toggle() error
	Hide() error
}

// Forwarder relays requests on behalf of the UI.
type Forwarder interface {
	Do(ctx context.Context, method, url string, body *string) (string, error)
}

// ForwardRequest is the input of forward_request.
type ForwardRequest struct {
	Method string  `json:"method"`
	URL    string  `json:"url"`
	Body   *string `json:"body,omitempty"`
}

// Dispatcher is the command surface the UI layer calls into.
// Every command runs on demand against current state; none waits for a
// poll tick.
type Dispatcher struct {
	health    HealthReader
	popover   Popover
	windows   popover.Platform
	forwarder Forwarder
	log       *logrus.Entry
}

// New creates a Dispatcher. windows may be nil (no main window).
func New(health HealthReader, pop Popover, windows popover.Platform, fwd Forwarder, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		health:    health,
		popover:   pop,
		windows:   windows,
		forwarder: fwd,
		log:       log.WithField("component", "commands"),
	}
}

// GetHealth returns the last stored snapshot.
func (d *Dispatcher) GetHealth() status.Snapshot {
	return d.health.Read()
}

// TogglePopover drives the popover toggle.
func (d *Dispatcher) TogglePopover() error {
	if d.popover == nil {
		return popover.ErrNoPlatform
	}
	return d.popover.Toggle()
}

// HidePopover hides the popover if it exists.
func (d *Dispatcher) HidePopover() error {
	if d.popover == nil {
		return nil
	}
	return d.popover.Hide()
}

// ShowMainWindow shows and focuses the main window. A missing main window
// is not an error, and window failures are logged, not returned.
func (d *Dispatcher) ShowMainWindow() error {
	if d.windows == nil {
		return nil
	}
	w, ok := d.windows.Window(MainWindowLabel)
	if !ok {
		return nil
	}

	logger := d.log.WithField("window", MainWindowLabel)
	if err := w.Show(); err != nil {
		logger.WithError(err).Warn("main window show failed")
		return nil
	}
	if err := w.SetFocus(); err != nil {
		logger.WithError(err).Warn("main window focus failed")
	}
	return nil
}

// ForwardRequest relays req and returns the upstream body. Errors are
// returned verbatim to the caller.
func (d *Dispatcher) ForwardRequest(ctx context.Context, req ForwardRequest) (string, error) {
	if d.forwarder == nil {
		return "", fmt.Errorf("request failed: no forwarder configured")
	}
	return d.forwarder.Do(ctx, req.Method, req.URL, req.Body)
}

// ClickTray is the tray left-click reaction: toggle the popover, log and
// drop any failure.
func (d *Dispatcher) ClickTray() {
	if err := d.TogglePopover(); err != nil {
		d.log.WithError(err).Warn("tray toggle failed")
	}
}

// Startup shows and focuses the main window.
func (d *Dispatcher) Startup() {
	_ = d.ShowMainWindow()
}
