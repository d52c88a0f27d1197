// internal/popover/platform.go
package popover

// Position is a logical (scale-independent) screen position.
type Position struct {
	X float64
	Y float64
}

// Monitor describes a display. Width and Height are physical pixels.
type Monitor struct {
	Width       uint32
	Height      uint32
	ScaleFactor float64
}

// WindowOptions describes a window to create.
type WindowOptions struct {
	Label       string
	URL         string
	Title       string
	Width       float64
	Height      float64
	Decorations bool
	AlwaysOnTop bool
	Visible     bool
	SkipTaskbar bool
}

// Window is one native window owned by the shell.
type Window interface {
	Label() string
	IsVisible() (bool, error)
	Show() error
	Hide() error
	SetFocus() error
	SetPosition(p Position) error

	// PrimaryMonitor returns nil, nil when no display is known.
	PrimaryMonitor() (*Monitor, error)

	// OnFocusChanged registers fn for focus transitions. Implementations
	// must not call fn synchronously from inside another Window method.
	OnFocusChanged(fn func(focused bool))
}

// Platform is the window registry of the desktop shell.
type Platform interface {
	Window(label string) (Window, bool)
	CreateWindow(opts WindowOptions) (Window, error)
}
