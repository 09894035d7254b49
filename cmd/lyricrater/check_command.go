package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lyricrater/internal/services/llm"
)

const healthCheckTimeout = 30 * time.Second

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the provider API key and model with one small request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			providerCfg, err := llm.FromConfig(cfg, provider)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			label := string(providerCfg.Provider)

			client, err := llm.New(providerCfg)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine(label, statusError, "not configured", colorize))
				return err
			}

			reqCtx, cancel := context.WithTimeout(cmd.Context(), healthCheckTimeout)
			defer cancel()
			if err := client.HealthCheck(reqCtx); err != nil {
				fmt.Fprintln(out, renderStatusLine(label, statusError, client.Model(), colorize))
				return fmt.Errorf("health check: %w", err)
			}
			fmt.Fprintln(out, renderStatusLine(label, statusOK, client.Model(), colorize))
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Provider to check (defaults to the configured provider)")
	return cmd
}
