// Package videoid extracts YouTube video and channel identifiers from the
// heterogeneous URL forms found in watch-history exports.
package videoid

import "regexp"

// Exports mix several URL shapes for the same video. Patterns are tried in
// order and the first match wins. Video IDs are always 11 characters; the
// character-class bound keeps a longer token from matching partially.
var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`music\.youtube\.com/watch\?v=([A-Za-z0-9_-]{11})`),
}

// Channel identifiers are opaque and have no fixed length: UC tokens, legacy
// custom names, usernames and handles all appear in real exports.
var channelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/channel/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/c/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/user/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/@([A-Za-z0-9_-]+)`),
}

// ExtractVideoID returns the 11-character video ID embedded in url, or ""
// when url matches no known form. Deleted videos, ads and bare music tracks
// produce URLs with no extractable ID; that is an expected outcome, not an
// error.
func ExtractVideoID(url string) string {
	return firstMatch(videoPatterns, url)
}

// ExtractChannelID returns the channel identifier embedded in url, or ""
// when none is found. The token is not guaranteed to resolve against the API.
func ExtractChannelID(url string) string {
	return firstMatch(channelPatterns, url)
}

func firstMatch(patterns []*regexp.Regexp, url string) string {
	if url == "" {
		return ""
	}
	for _, p := range patterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
