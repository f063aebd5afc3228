package main

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/vnhh/rewatch/internal/config"
	"github.com/vnhh/rewatch/pkg/oauth"
)

// newAuthCmd creates the auth subcommand.
func newAuthCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google",
		Long:  "Run the OAuth flow for the Google Data Portability API so the download command can fetch your watch history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.ClientID == "" || cfg.ClientSecret == "" {
				return fmt.Errorf("missing credentials: set %s and %s environment variables", config.EnvClientID, config.EnvClientSecret)
			}

			redirectURL := fmt.Sprintf("http://localhost:%d/callback", port)
			oauthConfig := oauth.GoogleDataPortabilityConfig(cfg.ClientID, cfg.ClientSecret, redirectURL)
			if err := oauthConfig.Validate(); err != nil {
				return err
			}

			flow := oauth.NewFlow(oauthConfig)
			authURL, state := flow.GenerateAuthURL()

			fmt.Fprintln(cmd.OutOrStdout(), "Opening browser for authorization...")
			if err := openBrowser(authURL); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Could not open browser. Please visit:\n%s\n", authURL)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Waiting for authorization...")
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			callbackServer := oauth.NewCallbackServer(port)
			code, err := callbackServer.WaitForCallback(ctx, state, 5*time.Minute)
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Exchanging authorization code...")
			token, err := flow.ExchangeCode(ctx, code)
			if err != nil {
				return fmt.Errorf("token exchange failed: %w", err)
			}

			storage := oauth.NewTokenStorage(cfg.ConfigDir)
			if err := storage.Save(token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Successfully authenticated!")
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to: %s\n", cfg.ConfigDir)
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port for OAuth callback server")

	return cmd
}

// openBrowser opens the URL in the default browser. The URL is validated
// first so nothing but http(s) ever reaches the system handler.
func openBrowser(urlString string) error {
	parsed, err := url.Parse(urlString)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https allowed)", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", urlString) // #nosec G204 -- URL validated above
	case "darwin":
		cmd = exec.Command("open", urlString) // #nosec G204 -- URL validated above
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", urlString) // #nosec G204 -- URL validated above
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
