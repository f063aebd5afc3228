// Package isoduration converts the compact ISO 8601 durations returned by
// the YouTube Data API ("PT1H2M3S") to and from a plain second count.
package isoduration

import (
	"fmt"
	"regexp"
	"strconv"
)

var pattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ShortMaxSeconds is the duration ceiling for the short-form heuristic.
const ShortMaxSeconds = 60

// Parse returns the number of seconds designated by text. Each component is
// optional and defaults to zero, and malformed input yields 0: the upstream
// format is trusted, but a partial match must not abort an enrichment batch.
func Parse(text string) int {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}

// Format renders a second count for display: hours and minutes when hours are
// present, minutes and seconds when only minutes are, else seconds alone.
func Format(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// IsShort reports whether a video of the given duration counts as short-form.
// The Data API does not expose the real Shorts classification, so anything
// under a minute is treated as a Short. A heuristic, not ground truth.
func IsShort(seconds int) bool {
	return seconds < ShortMaxSeconds
}
