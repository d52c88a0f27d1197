// cmd/supervisor/root.go
package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tamzrod/tulsbot-supervisor/internal/config"
	"github.com/tamzrod/tulsbot-supervisor/internal/logging"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:          "supervisor",
		Short:        "Tulsbot runtime supervisor",
		Long:         `Probes the local Tulsbot services, publishes their health to the tray and to observers, and serves the desktop command surface.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file (optional)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log.level (trace, debug, info, warn, error)")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newCheckCmd(flags))

	return root
}

// setup loads, overrides, validates and normalizes the config, then builds
// the logger from it.
func setup(flags *rootFlags) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config load failed: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
