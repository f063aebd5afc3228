package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vnhh/rewatch/internal/config"
)

// newConfigCmd creates the config subcommand.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show resolved configuration",
		Long:  "Print the configuration resolved from the environment and an optional .env file, without revealing secret values.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			fmt.Fprintf(cmd.OutOrStdout(), "Config directory:  %s\n", cfg.ConfigDir)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", config.EnvAPIKey, presence(cfg.APIKey))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", config.EnvClientID, presence(cfg.ClientID))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", config.EnvClientSecret, presence(cfg.ClientSecret))
			return nil
		},
	}
}

func presence(value string) string {
	if value == "" {
		return "not set"
	}
	return "set"
}
