// internal/shell/shell.go
package shell

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/tulsbot-supervisor/internal/popover"
)

// MainLabel is the label of the main application window.
const MainLabel = "main"

// Shell is a headless desktop shell: an in-memory window registry with a
// primary display and a tray indicator. It stands in for the native
// toolkit so the supervisor runs (and is tested) without one.
//
// Implements popover.Platform and broadcast.Emitter.
type Shell struct {
	mu      sync.Mutex
	windows map[string]*Window
	focused string
	monitor *popover.Monitor
	tray    *Tray
	events  []string

	log *logrus.Entry
}

// Option customizes a Shell.
type Option func(*Shell)

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.log = l.WithField("component", "shell")
		}
	}
}

// WithMonitor sets the primary display.
func WithMonitor(m popover.Monitor) Option {
	return func(s *Shell) {
		s.monitor = &m
	}
}

// WithSubscriptions makes every window created afterwards listen for
// events, as the bundled pages do once loaded.
func WithSubscriptions(events ...string) Option {
	return func(s *Shell) {
		s.events = append(s.events, events...)
	}
}

// New creates an empty shell with a 1920x1080 @1x primary display.
func New(opts ...Option) *Shell {
	s := &Shell{
		windows: make(map[string]*Window),
		monitor: &popover.Monitor{Width: 1920, Height: 1080, ScaleFactor: 1},
		tray:    newTray(),
		log:     logrus.StandardLogger().WithField("component", "shell"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---- popover.Platform ----

// Window looks up a window by label.
func (s *Shell) Window(label string) (popover.Window, bool) {
	w, ok := s.Lookup(label)
	if !ok {
		return nil, false
	}
	return w, true
}

// CreateWindow registers a new window. Labels are unique.
func (s *Shell) CreateWindow(opts popover.WindowOptions) (popover.Window, error) {
	if opts.Label == "" {
		return nil, fmt.Errorf("shell: window label required")
	}

	s.mu.Lock()
	if _, exists := s.windows[opts.Label]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("shell: a window with label %q already exists", opts.Label)
	}

	w := &Window{
		shell:     s,
		label:     opts.Label,
		opts:      opts,
		visible:   opts.Visible,
		listening: make(map[string]bool),
		last:      make(map[string][]byte),
		failures:  make(map[string]error),
	}
	for _, ev := range s.events {
		w.listening[ev] = true
	}
	s.windows[opts.Label] = w
	s.mu.Unlock()

	s.log.WithField("window", opts.Label).Debug("window created")

	if opts.Visible {
		s.focus(opts.Label)
	}
	return w, nil
}

// ---- queries ----

// Lookup returns the concrete window for label.
func (s *Shell) Lookup(label string) (*Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[label]
	return w, ok
}

// Focused returns the label of the focused window, or "".
func (s *Shell) Focused() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// Tray returns the tray indicator.
func (s *Shell) Tray() *Tray { return s.tray }

// ---- broadcast.Emitter ----

// Emit delivers frame to every window listening for event.
// Windows that do not exist or do not listen simply miss it.
func (s *Shell) Emit(event string, frame []byte) {
	s.mu.Lock()
	targets := make([]*Window, 0, len(s.windows))
	for _, w := range s.windows {
		targets = append(targets, w)
	}
	s.mu.Unlock()

	for _, w := range targets {
		w.deliver(event, frame)
	}
}

// ---- focus ----

// Focus moves OS focus to label ("" clears focus). Focus handlers of the
// windows involved run on their own goroutines.
func (s *Shell) Focus(label string) {
	s.focus(label)
}

func (s *Shell) focus(label string) {
	s.mu.Lock()
	prev := s.focused
	if prev == label {
		s.mu.Unlock()
		return
	}
	s.focused = label
	prevWin := s.windows[prev]
	nextWin := s.windows[label]
	s.mu.Unlock()

	if prevWin != nil {
		prevWin.fire(false)
	}
	if nextWin != nil {
		nextWin.fire(true)
	}
}

// blurIfFocused clears focus when label holds it, without events:
// hiding a window is not a focus change the window needs to react to.
func (s *Shell) blurIfFocused(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focused == label {
		s.focused = ""
	}
}

func (s *Shell) primaryMonitor() *popover.Monitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.monitor == nil {
		return nil
	}
	cp := *s.monitor
	return &cp
}
