// Package takeout ingests YouTube watch-history exports, either from a
// Google Takeout file or through the Data Portability API.
package takeout

import (
	"encoding/json"
	"time"
)

// Platform headers as they appear in the export.
const (
	HeaderYouTube      = "YouTube"
	HeaderYouTubeMusic = "YouTube Music"
)

// Subtitle is one attribution line under a history entry. The first element,
// when present, names the channel the video belongs to.
type Subtitle struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Entry is a single watched video or track. Real exports are inconsistent:
// deleted videos, ads and private content often ship without TitleURL or
// Subtitles, and such entries are still valid. Consumers treat absent fields
// as states to handle, not errors to raise.
type Entry struct {
	Header           string     `json:"header"`
	Title            string     `json:"title"`
	TitleURL         string     `json:"titleUrl,omitempty"`
	Subtitles        []Subtitle `json:"subtitles,omitempty"`
	Time             Timestamp  `json:"time"`
	Products         []string   `json:"products,omitempty"`
	ActivityControls []string   `json:"activityControls,omitempty"`
}

// Channel returns the attributed channel, or nil when the entry has none.
func (e *Entry) Channel() *Subtitle {
	if len(e.Subtitles) == 0 {
		return nil
	}
	return &e.Subtitles[0]
}

// Timestamp wraps time.Time with the permissive decoding history exports
// require: a missing or malformed time decodes to the zero value instead of
// failing the entry. The zero value is the "no usable timestamp" signal for
// the temporal statistics.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t.Time = parsed
	return nil
}
