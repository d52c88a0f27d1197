// internal/config/config.go
package config

import "time"

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// ---- SERVER ----

type ServerConfig struct {
	Address         string        `yaml:"address"`
	WSPath          string        `yaml:"ws_path"`
	Metrics         bool          `yaml:"metrics"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // text | json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         "127.0.0.1:4710",
			WSPath:          "/ws",
			Metrics:         true,
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
