// Package stats reduces a normalized watch history plus its enrichment maps
// into a single descriptive statistics bundle. Everything here is a pure
// function of its inputs: no network, no shared state, recomputed from
// scratch on every call.
package stats

import "time"

const (
	// topChannelLimit bounds the ranked channel lists.
	topChannelLimit = 10

	// recentDayLimit bounds the recent-activity view.
	recentDayLimit = 7
)

// ChannelStat ranks one channel by watch count within its kind (regular or
// short). Channels are keyed by display name: two distinct channels sharing
// a name collide into one row. An accepted approximation: the export
// attributes entries by name, and an ID is not always extractable from the
// channel URL.
type ChannelStat struct {
	Name         string
	Count        int
	URL          string
	ThumbnailURL string
}

// DayCount is the number of entries watched on one calendar date.
type DayCount struct {
	Date  time.Time
	Count int
}

// HourCount is the number of entries watched during one hour of the day.
type HourCount struct {
	Hour  int
	Count int
}

// TimeframeCount names the most active of the eight fixed hour bands.
type TimeframeCount struct {
	Name  string
	Count int
}

// Bundle is the full statistics output for one history load. Watch-time
// fields stay zero when enrichment was unavailable; counts are always
// populated.
type Bundle struct {
	TotalVideos        int
	YouTubeVideos      int
	YouTubeMusicVideos int

	RegularVideos int
	Shorts        int

	TotalWatchSeconds   int
	RegularWatchSeconds int
	ShortsWatchSeconds  int

	TopRegularChannels []ChannelStat
	TopShortsChannels  []ChannelStat

	// RecentDays holds up to seven counts for the most recent calendar
	// dates present in the data, newest first. Histories with gaps yield
	// the most recent active dates, not seven consecutive days.
	RecentDays []DayCount

	// Hourly is always fully populated, zero-filled, one bucket per hour.
	Hourly [24]HourCount

	MostActiveHour      HourCount
	MostActiveTimeframe TimeframeCount

	FirstEntry time.Time
	LastEntry  time.Time

	// DaySpan is the inclusive span of the history in whole days, floored
	// at 1 so AvgPerDay can never divide by zero. Zero only for histories
	// without a single usable timestamp.
	DaySpan   int
	AvgPerDay float64
}

// timeframeBands maps hours of the day into eight named ranges. Ties between
// bands resolve to the earliest declared band, in this order.
var timeframeBands = []struct {
	Name      string
	FirstHour int
	LastHour  int
}{
	{"Midnight", 0, 2},
	{"Late Night", 3, 5},
	{"Early Morning", 6, 8},
	{"Morning", 9, 11},
	{"Midday", 12, 12},
	{"Afternoon", 13, 16},
	{"Evening", 17, 19},
	{"Night", 20, 23},
}

func bandIndex(hour int) int {
	for i, band := range timeframeBands {
		if hour >= band.FirstHour && hour <= band.LastHour {
			return i
		}
	}
	return len(timeframeBands) - 1
}
