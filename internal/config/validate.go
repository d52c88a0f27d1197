// internal/config/validate.go
package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// SERVER
	// ------------------------------------------------------------

	if _, _, err := net.SplitHostPort(strings.TrimSpace(cfg.Server.Address)); err != nil {
		return fmt.Errorf("server.address %q: %w", cfg.Server.Address, err)
	}

	path := strings.TrimSpace(cfg.Server.WSPath)
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("server.ws_path %q must start with '/'", cfg.Server.WSPath)
	}
	if path == "/api" || strings.HasPrefix(path, "/api/") || path == "/metrics" {
		return fmt.Errorf("server.ws_path %q collides with a reserved route", cfg.Server.WSPath)
	}

	if cfg.Server.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must not be negative")
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if _, err := logrus.ParseLevel(strings.TrimSpace(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Log.Format)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", cfg.Log.Format)
	}

	return nil
}
