package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vnhh/rewatch/internal/isoduration"
)

const (
	defaultBaseURL = "https://www.googleapis.com"

	// batchSize is the API's maximum number of IDs per videos/channels call.
	batchSize = 50

	// defaultBatchDelay paces consecutive batch calls to stay inside the
	// per-key rate limits. Fixed interval, no backoff.
	defaultBatchDelay = 200 * time.Millisecond

	// placeholderKey is the sample value shipped in .env templates.
	placeholderKey = "your_youtube_api_key_here"

	videoIDLength = 11
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithBatchDelay overrides the inter-batch pacing delay. Tests set it to 0.
func WithBatchDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.batchDelay = d
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client is a key-authenticated YouTube Data API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
	batchDelay time.Duration
	logger     *slog.Logger
}

// NewClient creates a new client around the given API key. The key may be
// empty; every fetch then fails fast with ErrAPIKeyMissing and the caller
// degrades to count-only statistics.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		batchDelay: defaultBatchDelay,
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ValidateKey checks the configured credential before any batch call is
// made, classifying the failure so the caller can tell a missing key from a
// rejected one. Uses a single cheap search call; no enrichment is attempted
// without a validated key.
func (c *Client) ValidateKey(ctx context.Context) error {
	if err := c.checkKeyShape(); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("maxResults", "1")
	q.Set("q", "test")
	q.Set("type", "video")
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/youtube/v3/search?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("youtube: create validation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube: key validation: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return &KeyRejectedError{StatusCode: resp.StatusCode, Detail: apiErrorMessage(body)}
}

func (c *Client) checkKeyShape() error {
	switch c.apiKey {
	case "":
		return ErrAPIKeyMissing
	case placeholderKey:
		return ErrAPIKeyInvalid
	}
	return nil
}

// FetchVideoDetails resolves duration and title for the given video IDs.
//
// IDs that are not canonical 11-character tokens are dropped silently; the
// rest are partitioned into batches of at most 50, one API call each, with a
// fixed pacing delay between calls. A failing batch is recorded in the
// result and the next batch still runs: partial enrichment is expected.
// The returned error is non-nil only for credential validation failures and
// context cancellation.
func (c *Client) FetchVideoDetails(ctx context.Context, ids []string, progress ProgressFunc) (*VideoResult, error) {
	if err := c.ValidateKey(ctx); err != nil {
		return nil, err
	}

	valid := filterVideoIDs(ids)
	c.logger.Info("fetching video details", "valid", len(valid), "total", len(ids))

	result := &VideoResult{Videos: make(map[string]Video, len(valid))}
	pacer := newPacer(c.batchDelay)

	for first := 0; first < len(valid); first += batchSize {
		last := min(first+batchSize, len(valid))
		if err := pacer.Wait(ctx); err != nil {
			return result, err
		}

		videos, err := c.videosBatch(ctx, valid[first:last])
		if err != nil {
			batchErr := &BatchError{First: first, Last: last - 1, Err: err}
			result.Failed = append(result.Failed, batchErr)
			c.logger.Warn("video batch failed", "first", first, "last", last-1, "error", err)
		} else {
			for _, v := range videos {
				result.Videos[v.ID] = v
			}
		}

		if progress != nil {
			progress(float64(last) / float64(len(valid)))
		}
	}

	return result, nil
}

// FetchChannelDetails resolves display name and thumbnail for the given
// channel IDs, deduplicating them first. Callers pass only the IDs of
// top-ranked channels, so the call volume stays bounded regardless of
// history size. The credential is validated up front exactly like the video
// variant: a rejected key is a terminal error, not a batch failure.
func (c *Client) FetchChannelDetails(ctx context.Context, ids []string) (*ChannelResult, error) {
	if err := c.ValidateKey(ctx); err != nil {
		return nil, err
	}

	unique := dedupe(ids)
	c.logger.Info("fetching channel details", "channels", len(unique))

	result := &ChannelResult{Channels: make(map[string]Channel, len(unique))}
	pacer := newPacer(c.batchDelay)

	for first := 0; first < len(unique); first += batchSize {
		last := min(first+batchSize, len(unique))
		if err := pacer.Wait(ctx); err != nil {
			return result, err
		}

		channels, err := c.channelsBatch(ctx, unique[first:last])
		if err != nil {
			batchErr := &BatchError{First: first, Last: last - 1, Err: err}
			result.Failed = append(result.Failed, batchErr)
			c.logger.Warn("channel batch failed", "first", first, "last", last-1, "error", err)
			continue
		}
		for _, ch := range channels {
			result.Channels[ch.ID] = ch
		}
	}

	return result, nil
}

// newPacer builds the fixed-interval limiter used between batches. The
// first Wait passes immediately; each later Wait spaces calls by delay.
func newPacer(delay time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(delay), 1)
}

func (c *Client) videosBatch(ctx context.Context, ids []string) ([]Video, error) {
	q := url.Values{}
	q.Set("id", strings.Join(ids, ","))
	q.Set("part", "contentDetails,snippet")
	q.Set("key", c.apiKey)

	body, err := c.doRequest(ctx, c.baseURL+"/youtube/v3/videos?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp videosResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse videos response: %w", err)
	}
	if resp.Error != nil {
		return nil, errors.New(resp.Error.Message)
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		duration := isoduration.Parse(item.ContentDetails.Duration)
		videos = append(videos, Video{
			ID:              item.ID,
			Title:           item.Snippet.Title,
			DurationSeconds: duration,
			Short:           isoduration.IsShort(duration),
		})
	}
	return videos, nil
}

func (c *Client) channelsBatch(ctx context.Context, ids []string) ([]Channel, error) {
	q := url.Values{}
	q.Set("id", strings.Join(ids, ","))
	q.Set("part", "snippet")
	q.Set("key", c.apiKey)

	body, err := c.doRequest(ctx, c.baseURL+"/youtube/v3/channels?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp channelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse channels response: %w", err)
	}
	if resp.Error != nil {
		return nil, errors.New(resp.Error.Message)
	}

	channels := make([]Channel, 0, len(resp.Items))
	for _, item := range resp.Items {
		thumbnail := item.Snippet.Thumbnails.Medium.URL
		if thumbnail == "" {
			thumbnail = item.Snippet.Thumbnails.Default.URL
		}
		channels = append(channels, Channel{
			ID:           item.ID,
			DisplayName:  item.Snippet.Title,
			ThumbnailURL: thumbnail,
		})
	}
	return channels, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
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
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, apiErrorMessage(body))
	}

	return body, nil
}

// filterVideoIDs keeps only canonical 11-character IDs. Export noise
// produces tokens of the wrong shape; those are dropped, not errored.
func filterVideoIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isCanonicalVideoID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}

func isCanonicalVideoID(id string) bool {
	if len(id) != videoIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

func apiErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return "no error detail"
}

// API response types (private - implementation detail)

type apiError struct {
	Message string `json:"message"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
	Error *apiError `json:"error"`
}

type channelsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
	Error *apiError `json:"error"`
}
