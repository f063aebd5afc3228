// Package oauth provides the OAuth 2.0 utilities for the Google Data
// Portability flow.
package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

var ErrTokenNotFound = errors.New("token not found")

// tokenFile is the single stored credential; the CLI authenticates against
// one Google account at a time.
const tokenFile = "google_token.json"

type Config struct {
	ClientID     string
	ClientSecret string // #nosec G117 - OAuth config field, not an exposed secret
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string
}

// Validate checks that the config carries everything the flow needs.
func (c Config) Validate() error {
	switch {
	case c.ClientID == "":
		return errors.New("oauth: missing client ID")
	case c.ClientSecret == "":
		return errors.New("oauth: missing client secret")
	case c.RedirectURL == "":
		return errors.New("oauth: missing redirect URL")
	case len(c.Scopes) == 0:
		return errors.New("oauth: missing scopes")
	}
	return nil
}

// GoogleDataPortabilityConfig builds the config for requesting a YouTube
// watch-history archive through the Data Portability API.
func GoogleDataPortabilityConfig(clientID, clientSecret, redirectURL string) Config {
	return Config{ // #nosec G101 -- OAuth URLs are public API endpoints, not hardcoded credentials
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:     "https://oauth2.googleapis.com/token",
		RedirectURL:  redirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/dataportability.myactivity.youtube"},
	}
}

type Token struct {
	AccessToken  string `json:"access_token"`  // #nosec G117 - OAuth token field, not an exposed secret
	RefreshToken string `json:"refresh_token"` // #nosec G117 - OAuth token field, not an exposed secret
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type TokenStorage struct {
	dir string
}

func NewTokenStorage(dir string) *TokenStorage {
	return &TokenStorage{dir: dir}
}

func (s *TokenStorage) Save(token *Token) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	return os.WriteFile(filepath.Join(s.dir, tokenFile), data, 0600)
}

func (s *TokenStorage) Load() (*Token, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, tokenFile)) // #nosec G304 -- path is built from a fixed name
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}
