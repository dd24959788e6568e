package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPingCommand(ctx *commandContext) *cobra.Command {
	var (
		urlFlag    string
		apiKeyFlag string
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Verify Tautulli connectivity and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyServerFlags(cfg, urlFlag, apiKeyFlag)
			if err := cfg.RequireServer(); err != nil {
				return err
			}

			if err := ctx.newClient(cfg).Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tautulli at %s is reachable\n", cfg.Tautulli.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&urlFlag, "url", "", "Tautulli base URL (overrides config)")
	cmd.Flags().StringVar(&apiKeyFlag, "apikey", "", "Tautulli API key (overrides config)")

	return cmd
}
