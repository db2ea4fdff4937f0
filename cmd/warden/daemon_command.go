package main

import (
	"github.com/spf13/cobra"

	"warden/internal/hostrun"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "daemon",
		Short:        "Run the warden host (internal)",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return hostrun.Run(cmd.Context(), cfg, hostrun.Options{
				LogLevel:    cfg.Logging.Level,
				Development: cfg.Development(),
			})
		},
	}
	return cmd
}
