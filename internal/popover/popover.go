// internal/popover/popover.go
package popover

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ---- FIXED GEOMETRY ----

const (
	Label = "chat-popover"
	URL   = "tulsbot.html"

	Width  = 380.0
	Height = 540.0

	// Distance from the right screen edge to the window's left edge
	// (width plus a 10px margin), and from the top (below the menu bar).
	RightOffset = 390.0
	TopOffset   = 30.0
)

// CreateGrace is how long after creating the popover further toggles are
// coalesced into the creation while it is still visible. A second click
// that races window creation leaves one visible popover rather than
// hiding it again.
const CreateGrace = 500 * time.Millisecond

// ErrNoPlatform is returned when the manager has no window platform.
var ErrNoPlatform = errors.New("popover: no window platform")

// State is the popover lifecycle state.
type State int

const (
	Absent State = iota
	Hidden
	Visible
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Window operation names reported to Recorder.WindowFailed.
const (
	OpCreate   = "create"
	OpShow     = "show"
	OpHide     = "hide"
	OpFocus    = "focus"
	OpPosition = "position"
)

// Recorder observes state transitions and swallowed window failures
// (metrics).
type Recorder interface {
	Transition(to State)
	WindowFailed(op string)
}

type nopRecorder struct{}

func (nopRecorder) Transition(State)    {}
func (nopRecorder) WindowFailed(string) {}

// Manager owns the singleton popover window.
// Lookup-then-act runs under one lock, so concurrent toggles never
// create a second window.
type Manager struct {
	mu       sync.Mutex
	platform Platform
	log      *logrus.Entry
	rec      Recorder

	// attached is the window whose focus handler is registered.
	attached Window

	now       func() time.Time
	createdAt time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l.WithField("window", Label)
		}
	}
}

// WithRecorder sets the transition recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.rec = r
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a Manager over platform.
func New(platform Platform, opts ...Option) *Manager {
	m := &Manager{
		platform: platform,
		log:      logrus.StandardLogger().WithField("window", Label),
		rec:      nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Placement computes the popover position on mon: anchored near the
// top-right corner, in logical pixels.
func Placement(mon Monitor) Position {
	scale := mon.ScaleFactor
	if scale <= 0 {
		scale = 1
	}
	screenW := math.Floor(float64(mon.Width) / scale)
	return Position{
		X: screenW - RightOffset,
		Y: TopOffset,
	}
}

// Options returns the creation options of the popover window.
func Options() WindowOptions {
	return WindowOptions{
		Label:       Label,
		URL:         URL,
		Title:       "",
		Width:       Width,
		Height:      Height,
		Decorations: false,
		AlwaysOnTop: true,
		Visible:     true,
		SkipTaskbar: true,
	}
}

// Attach registers the focus-loss handler on an already existing popover.
// Safe to call repeatedly.
func (m *Manager) Attach() {
	if m.platform == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.platform.Window(Label); ok {
		m.attachLocked(w)
	}
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	if m.platform == nil {
		return Absent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.platform.Window(Label)
	if !ok {
		return Absent
	}
	return m.stateOf(w)
}

// Toggle: visible -> hidden; hidden -> placed, shown, focused;
// absent -> created visible. Window failures are logged and recorded,
// never returned; the only error is ErrNoPlatform.
func (m *Manager) Toggle() error {
	if m.platform == nil {
		return ErrNoPlatform
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.platform.Window(Label)
	if !ok {
		m.createLocked()
		return nil
	}

	if m.stateOf(w) != Visible {
		m.showLocked(w)
		return nil
	}

	if !m.createdAt.IsZero() && m.now().Sub(m.createdAt) < CreateGrace {
		m.log.Debug("toggle coalesced with creation")
		return nil
	}
	m.hideLocked(w)
	return nil
}

// Hide hides the popover if it exists. Hiding a hidden or absent popover
// is a no-op. Window failures are logged and recorded, never returned.
func (m *Manager) Hide() error {
	if m.platform == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.platform.Window(Label)
	if !ok {
		return nil
	}
	if m.stateOf(w) != Visible {
		return nil
	}
	m.hideLocked(w)
	return nil
}

// HandleFocusChanged is the focus-loss reaction: losing focus while
// visible hides the popover.
func (m *Manager) HandleFocusChanged(focused bool) {
	if focused {
		return
	}
	_ = m.Hide()
}

// ---- internal (m.mu held) ----

func (m *Manager) stateOf(w Window) State {
	visible, err := w.IsVisible()
	if err != nil {
		m.log.WithError(err).Warn("visibility query failed; assuming hidden")
		return Hidden
	}
	if visible {
		return Visible
	}
	return Hidden
}

// failed logs and records a swallowed window operation failure.
func (m *Manager) failed(op string, err error) {
	m.rec.WindowFailed(op)
	m.log.WithError(err).WithField("op", op).Warn("window operation failed")
}

func (m *Manager) createLocked() {
	w, err := m.platform.CreateWindow(Options())
	if err != nil {
		m.failed(OpCreate, err)
		return
	}

	m.createdAt = m.now()
	m.attachLocked(w)
	m.rec.Transition(Visible)
	m.log.Debug("popover created")
}

func (m *Manager) hideLocked(w Window) {
	if err := w.Hide(); err != nil {
		m.failed(OpHide, err)
		return
	}
	// A hidden popover is no longer a fresh creation; the next toggle
	// must show it.
	m.createdAt = time.Time{}
	m.rec.Transition(Hidden)
}

func (m *Manager) showLocked(w Window) {
	// Placement is recomputed on every show; failures leave the window
	// where it was.
	if mon, err := w.PrimaryMonitor(); err != nil {
		m.failed(OpPosition, err)
	} else if mon != nil {
		if err := w.SetPosition(Placement(*mon)); err != nil {
			m.failed(OpPosition, err)
		}
	}

	if err := w.Show(); err != nil {
		m.failed(OpShow, err)
		return
	}
	m.rec.Transition(Visible)

	if err := w.SetFocus(); err != nil {
		m.failed(OpFocus, err)
	}
}

func (m *Manager) attachLocked(w Window) {
	if m.attached == w {
		return
	}
	m.attached = w

	// Dispatched off the platform's goroutine so a focus event raised
	// while m.mu is held cannot deadlock.
	w.OnFocusChanged(func(focused bool) {
		if !focused {
			go m.HandleFocusChanged(false)
		}
	})
}
