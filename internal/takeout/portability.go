package takeout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultPortabilityBaseURL = "https://dataportability.googleapis.com"

	// Export jobs take a while server-side. Thirty polls at ten seconds
	// bounds the wait at five minutes.
	defaultPollInterval = 10 * time.Second
	defaultMaxPolls     = 30
)

var (
	// ErrArchiveTimeout reports that the export job did not reach a
	// terminal state within the polling budget.
	ErrArchiveTimeout = errors.New("takeout: export job timed out, try again later")

	// ErrArchiveFailed reports a job the service marked as failed.
	ErrArchiveFailed = errors.New("takeout: export job failed")
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// PortabilityClient downloads a watch-history archive through the Google
// Data Portability API: it submits an export job, polls it to a terminal
// state and fetches the produced archive. Callers only ever see the
// resulting entry slice; the job protocol stays inside this client.
type PortabilityClient struct {
	accessToken  string
	baseURL      string
	httpClient   HTTPClient
	pollInterval time.Duration
	maxPolls     int
	logger       *slog.Logger
}

// PortabilityOption configures the PortabilityClient.
type PortabilityOption func(*PortabilityClient)

// WithPortabilityHTTPClient sets a custom HTTP client.
func WithPortabilityHTTPClient(httpClient HTTPClient) PortabilityOption {
	return func(c *PortabilityClient) {
		c.httpClient = httpClient
	}
}

// WithPortabilityBaseURL sets a custom base URL (useful for testing).
func WithPortabilityBaseURL(url string) PortabilityOption {
	return func(c *PortabilityClient) {
		c.baseURL = url
	}
}

// WithPolling overrides the poll interval and budget.
func WithPolling(interval time.Duration, maxPolls int) PortabilityOption {
	return func(c *PortabilityClient) {
		c.pollInterval = interval
		c.maxPolls = maxPolls
	}
}

// WithPortabilityLogger sets the diagnostics logger.
func WithPortabilityLogger(logger *slog.Logger) PortabilityOption {
	return func(c *PortabilityClient) {
		c.logger = logger
	}
}

// NewPortabilityClient creates a client authenticated by an OAuth access
// token carrying the dataportability.myactivity.youtube scope.
func NewPortabilityClient(accessToken string, opts ...PortabilityOption) *PortabilityClient {
	c := &PortabilityClient{
		accessToken:  accessToken,
		baseURL:      defaultPortabilityBaseURL,
		httpClient:   &http.Client{},
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
		logger:       slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchHistory runs the full delegated download: initiate an export job for
// the YouTube history category, poll it to completion and extract the watch
// history from the downloaded archive.
func (c *PortabilityClient) FetchHistory(ctx context.Context) ([]Entry, error) {
	jobID, err := c.initiateArchive(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Info("export job created", "job", jobID)

	archiveURL, err := c.awaitArchive(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return c.downloadArchive(ctx, archiveURL)
}

type initiateResponse struct {
	Name string `json:"name"`
}

func (c *PortabilityClient) initiateArchive(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"resources":     []string{"YOUTUBE_VIDEOS"},
		"archiveFormat": "JSON",
	})
	if err != nil {
		return "", fmt.Errorf("takeout: marshal job request: %w", err)
	}

	url := c.baseURL + "/v1/portabilityArchive:initiate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("takeout: create job request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.doRequest(req)
	if err != nil {
		return "", fmt.Errorf("takeout: create export job: %w", err)
	}

	var resp initiateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("takeout: parse job response: %w", err)
	}
	if resp.Name == "" {
		return "", errors.New("takeout: export job response carried no job name")
	}
	return resp.Name, nil
}

type archiveState struct {
	State      string `json:"state"`
	ArchiveURL string `json:"archiveUrl"`
}

// awaitArchive polls the job in a counted loop with a fixed sleep interval
// until it reaches a terminal state or the budget runs out.
func (c *PortabilityClient) awaitArchive(ctx context.Context, jobID string) (string, error) {
	for attempt := 1; attempt <= c.maxPolls; attempt++ {
		state, err := c.archiveState(ctx, jobID)
		if err != nil {
			return "", err
		}

		switch state.State {
		case "COMPLETED":
			return state.ArchiveURL, nil
		case "FAILED":
			return "", ErrArchiveFailed
		}

		c.logger.Debug("export job not ready", "job", jobID, "state", state.State, "attempt", attempt, "max", c.maxPolls)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
	return "", ErrArchiveTimeout
}

func (c *PortabilityClient) archiveState(ctx context.Context, jobID string) (*archiveState, error) {
	url := fmt.Sprintf("%s/v1/%s", c.baseURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("takeout: create status request: %w", err)
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, fmt.Errorf("takeout: check job status: %w", err)
	}

	var state archiveState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("takeout: parse job status: %w", err)
	}
	return &state, nil
}

func (c *PortabilityClient) downloadArchive(ctx context.Context, archiveURL string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, fmt.Errorf("takeout: create download request: %w", err)
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, fmt.Errorf("takeout: download archive: %w", err)
	}

	return historyFromArchive(body)
}

// historyFromArchive digs the watch-history array out of the archive's
// nested YouTube → "My Activity" → "YouTube History" layout. A missing level
// yields an empty history rather than an error: accounts without YouTube
// activity produce archives without that branch.
func historyFromArchive(data []byte) ([]Entry, error) {
	node := json.RawMessage(data)
	for _, key := range []string{"YouTube", "My Activity", "YouTube History"} {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(node, &obj); err != nil {
			return nil, fmt.Errorf("takeout: malformed archive: %w", err)
		}
		next, ok := obj[key]
		if !ok {
			return []Entry{}, nil
		}
		node = next
	}
	return parseHistoryJSON(node)
}

func (c *PortabilityClient) doRequest(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, apiErrorMessage(body, resp.Status))
	}
	return body, nil
}

// apiErrorMessage pulls the human message out of a Google-style error body,
// falling back to the HTTP status line.
func apiErrorMessage(body []byte, fallback string) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return fallback
}
