// Package youtube is a client for the read-only corners of the YouTube Data
// API v3 that watch-history enrichment needs: batched video and channel
// lookups authenticated by an API key.
//
// This package enables rewatch to:
// - Validate the configured API key before spending quota
// - Resolve video durations and titles in 50-item batches
// - Resolve display names and thumbnails for top-ranked channels
// - Survive per-batch failures with partial results
package youtube

// Video is the enrichment record for one watched video. DurationSeconds
// comes from the API's contentDetails; Short is the under-a-minute
// heuristic, not YouTube's own classification.
type Video struct {
	ID              string
	Title           string
	DurationSeconds int
	Short           bool
}

// Channel is the enrichment record for one channel. Fetched only for
// top-ranked channels, which bounds call volume independent of history size.
type Channel struct {
	ID           string
	DisplayName  string
	ThumbnailURL string
}

// VideoResult carries the outcome of a batched video lookup. Videos holds
// the records that resolved, keyed by video ID; Failed records the batches
// that did not. An ID absent from Videos means "no enrichment for this
// video" (deleted and private videos land there), never an error.
type VideoResult struct {
	Videos map[string]Video
	Failed []*BatchError
}

// ChannelResult carries the outcome of a batched channel lookup, keyed by
// channel ID.
type ChannelResult struct {
	Channels map[string]Channel
	Failed   []*BatchError
}

// ProgressFunc receives the fraction of valid IDs processed so far. It is
// invoked once per batch, is monotonically non-decreasing, and reaches 1.0
// after the final batch whether or not every batch succeeded.
type ProgressFunc func(fraction float64)
