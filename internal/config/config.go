// Package config resolves runtime configuration from the environment, with
// an optional .env file loaded first.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variable names read by the CLI.
const (
	EnvAPIKey       = "REWATCH_YOUTUBE_API_KEY"
	EnvClientID     = "REWATCH_GOOGLE_CLIENT_ID"
	EnvClientSecret = "REWATCH_GOOGLE_CLIENT_SECRET"
	EnvConfigDir    = "REWATCH_CONFIG_DIR"
)

// Config carries everything the commands need from the environment. Any
// field may be empty; each command decides which ones it requires.
type Config struct {
	// APIKey is the YouTube Data API key used for video and channel
	// enrichment.
	APIKey string

	// ClientID and ClientSecret are the OAuth credentials for the Data
	// Portability flow.
	ClientID     string
	ClientSecret string

	// ConfigDir is where tokens are stored.
	ConfigDir string
}

// Load reads a .env file from the working directory when present, then
// resolves configuration from the environment. A missing .env file is not an
// error; real environment variables always win over file values.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIKey:       os.Getenv(EnvAPIKey),
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		ConfigDir:    configDir(),
	}
}

func configDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rewatch")
}
