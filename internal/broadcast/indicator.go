// internal/broadcast/indicator.go
package broadcast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

// indicatorWriter applies overall to an Indicator.
// Only changes are applied; after any failure the next call re-applies
// icon, template flag and tooltip in full.
type indicatorWriter struct {
	ind Indicator

	needFull bool
	last     status.Overall
}

func newIndicatorWriter(ind Indicator) *indicatorWriter {
	return &indicatorWriter{
		ind:      ind,
		needFull: true,
		last:     status.Down,
	}
}

func (iw *indicatorWriter) apply(o status.Overall) error {
	if iw == nil || iw.ind == nil {
		return nil
	}

	if !iw.needFull && iw.last == o {
		return nil
	}

	var errs []string

	if err := iw.ind.SetIcon(AssetFor(o)); err != nil {
		errs = append(errs, fmt.Sprintf("icon: %v", err))
	}

	// Colored status icons must not be recolored by the OS.
	if iw.needFull {
		if err := iw.ind.SetIconAsTemplate(false); err != nil {
			errs = append(errs, fmt.Sprintf("template: %v", err))
		}
	}

	if err := iw.ind.SetTooltip(Tooltip(o)); err != nil {
		errs = append(errs, fmt.Sprintf("tooltip: %v", err))
	}

	if len(errs) > 0 {
		iw.needFull = true
		return errors.New("indicator: " + strings.Join(errs, " | "))
	}

	iw.needFull = false
	iw.last = o
	return nil
}
