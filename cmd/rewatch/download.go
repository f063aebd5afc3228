package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vnhh/rewatch/internal/config"
	"github.com/vnhh/rewatch/internal/takeout"
	"github.com/vnhh/rewatch/pkg/oauth"
)

// newDownloadCmd creates the download subcommand.
func newDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download your watch history from Google",
		Long:  "Request a watch-history export through the Google Data Portability API and save it as a JSON file ready for the analyze command. Requires a prior 'rewatch auth'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			storage := oauth.NewTokenStorage(cfg.ConfigDir)
			token, err := storage.Load()
			if err != nil {
				if errors.Is(err, oauth.ErrTokenNotFound) {
					return fmt.Errorf("not authenticated (run 'rewatch auth' first)")
				}
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			accessToken := freshAccessToken(ctx, cmd, cfg, token)

			fmt.Fprintln(cmd.OutOrStdout(), "Requesting watch-history export...")
			client := takeout.NewPortabilityClient(accessToken)
			entries, err := client.FetchHistory(ctx)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("encode history: %w", err)
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("write history file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d entries to %s\n", len(entries), output)
			fmt.Fprintf(cmd.OutOrStdout(), "Next: rewatch analyze %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "watch-history.json", "Path for the downloaded history file")

	return cmd
}

// freshAccessToken refreshes the stored token when a refresh token is
// available. Refresh failures fall back to the stored access token, which
// may still be valid.
func freshAccessToken(ctx context.Context, cmd *cobra.Command, cfg config.Config, token *oauth.Token) string {
	if token.RefreshToken == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return token.AccessToken
	}

	oauthConfig := oauth.GoogleDataPortabilityConfig(cfg.ClientID, cfg.ClientSecret, "http://localhost/callback")
	refreshed, err := oauth.NewFlow(oauthConfig).RefreshAccessToken(ctx, token.RefreshToken)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Token refresh failed (%v), using stored token\n", err)
		return token.AccessToken
	}
	return refreshed.AccessToken
}
