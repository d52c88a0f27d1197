// cmd/supervisor/check.go
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/tulsbot-supervisor/internal/poller"
	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

func newCheckCmd(flags *rootFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe every service once and print the snapshot",
		Long:  `The check command runs a single aggregation outside the poll loop and prints the resulting health snapshot as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := setup(flags)
			if err != nil {
				return err
			}

			p, err := poller.Build(poller.WithLogger(log))
			if err != nil {
				return fmt.Errorf("poller build failed: %w", err)
			}

			snap := p.PollOnce()

			out, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if strict && snap.Overall != status.Healthy {
				return fmt.Errorf("overall status is %s", snap.Overall)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero unless every service is healthy")

	return cmd
}
