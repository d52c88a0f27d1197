// internal/shell/tray.go
package shell

import (
	"sync"

	"github.com/tamzrod/tulsbot-supervisor/internal/broadcast"
)

// Tray identity and boot appearance.
const (
	TrayID          = "main-tray"
	TrayBootIcon    = broadcast.Asset("tray-icon.png")
	TrayBootTooltip = broadcast.TooltipPrefix
)

// Tray is the headless tray indicator. Implements broadcast.Indicator.
type Tray struct {
	mu       sync.Mutex
	icon     broadcast.Asset
	template bool
	tooltip  string
	onClick  func()
	failures map[string]error
}

// Tray operation names accepted by Fail.
const (
	OpIcon     = "icon"
	OpTemplate = "template"
	OpTooltip  = "tooltip"
)

func newTray() *Tray {
	return &Tray{
		icon:     TrayBootIcon,
		template: true,
		tooltip:  TrayBootTooltip,
		failures: make(map[string]error),
	}
}

func (t *Tray) SetIcon(a broadcast.Asset) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.failures[OpIcon]; err != nil {
		return err
	}
	t.icon = a
	return nil
}

func (t *Tray) SetIconAsTemplate(template bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.failures[OpTemplate]; err != nil {
		return err
	}
	t.template = template
	return nil
}

func (t *Tray) SetTooltip(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.failures[OpTooltip]; err != nil {
		return err
	}
	t.tooltip = text
	return nil
}

// Icon returns the current icon asset.
func (t *Tray) Icon() broadcast.Asset {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.icon
}

// IsTemplate reports whether the icon is drawn as a template image.
func (t *Tray) IsTemplate() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.template
}

// Tooltip returns the current hover text.
func (t *Tray) Tooltip() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tooltip
}

// OnClick sets the left-click (button up) reaction.
func (t *Tray) OnClick(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClick = fn
}

// Click simulates a left-click release on the tray icon.
func (t *Tray) Click() {
	t.mu.Lock()
	fn := t.onClick
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Fail makes op return err until cleared with Fail(op, nil).
func (t *Tray) Fail(op string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		delete(t.failures, op)
		return
	}
	t.failures[op] = err
}
