// internal/shell/window.go
package shell

import (
	"sync"

	"github.com/tamzrod/tulsbot-supervisor/internal/popover"
)

// Operation names accepted by Window.Fail.
const (
	OpShow     = "show"
	OpHide     = "hide"
	OpFocus    = "focus"
	OpPosition = "position"
	OpVisible  = "visible"
	OpMonitor  = "monitor"
)

// Window is one headless window. Implements popover.Window.
type Window struct {
	shell *Shell
	label string
	opts  popover.WindowOptions

	mu        sync.Mutex
	visible   bool
	position  *popover.Position
	handlers  []func(bool)
	listening map[string]bool
	last      map[string][]byte
	delivered int
	failures  map[string]error
}

func (w *Window) Label() string { return w.label }

// Options returns the options the window was created with.
func (w *Window) Options() popover.WindowOptions { return w.opts }

func (w *Window) IsVisible() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.failures[OpVisible]; err != nil {
		return false, err
	}
	return w.visible, nil
}

func (w *Window) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.failures[OpShow]; err != nil {
		return err
	}
	w.visible = true
	return nil
}

func (w *Window) Hide() error {
	w.mu.Lock()
	if err := w.failures[OpHide]; err != nil {
		w.mu.Unlock()
		return err
	}
	w.visible = false
	w.mu.Unlock()

	w.shell.blurIfFocused(w.label)
	return nil
}

func (w *Window) SetFocus() error {
	w.mu.Lock()
	if err := w.failures[OpFocus]; err != nil {
		w.mu.Unlock()
		return err
	}
	w.mu.Unlock()

	w.shell.focus(w.label)
	return nil
}

func (w *Window) SetPosition(p popover.Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.failures[OpPosition]; err != nil {
		return err
	}
	w.position = &p
	return nil
}

func (w *Window) PrimaryMonitor() (*popover.Monitor, error) {
	w.mu.Lock()
	err := w.failures[OpMonitor]
	w.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return w.shell.primaryMonitor(), nil
}

func (w *Window) OnFocusChanged(fn func(bool)) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, fn)
}

// ---- test and diagnostics hooks ----

// Position returns the last position set, or nil.
func (w *Window) Position() *popover.Position {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.position == nil {
		return nil
	}
	cp := *w.position
	return &cp
}

// Listen subscribes the window to event.
func (w *Window) Listen(event string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listening[event] = true
}

// Last returns the last frame received for event, or nil.
func (w *Window) Last(event string) []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last[event]
}

// Delivered returns how many frames the window has received.
func (w *Window) Delivered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.delivered
}

// Fail makes op return err until cleared with Fail(op, nil).
func (w *Window) Fail(op string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err == nil {
		delete(w.failures, op)
		return
	}
	w.failures[op] = err
}

func (w *Window) deliver(event string, frame []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.listening[event] {
		return
	}
	w.last[event] = frame
	w.delivered++
}

func (w *Window) fire(focused bool) {
	w.mu.Lock()
	hs := make([]func(bool), len(w.handlers))
	copy(hs, w.handlers)
	w.mu.Unlock()

	for _, h := range hs {
		go h(focused)
	}
}
