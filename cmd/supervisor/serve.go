// cmd/supervisor/serve.go
package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tamzrod/tulsbot-supervisor/internal/app"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the supervisor until interrupted",
		Long:  `The serve command starts the poll loop, the tray indicator, the popover and the HTTP command surface, and runs until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(cfg, log)
			if err != nil {
				return fmt.Errorf("supervisor build failed: %w", err)
			}

			log.WithField("address", cfg.Server.Address).Info("supervisor starting")
			if err := a.Run(ctx); err != nil {
				return err
			}
			log.Info("supervisor stopped")
			return nil
		},
	}
}
