// internal/config/normalize.go
package config

import (
	"strings"
	"time"
)

// Floor for durations left unset.
const minTimeout = time.Second

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Server.Address = strings.TrimSpace(cfg.Server.Address)
	cfg.Server.WSPath = strings.TrimSpace(cfg.Server.WSPath)

	// zero means "unset"
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = minTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = minTimeout
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
