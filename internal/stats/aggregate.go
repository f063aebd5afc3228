package stats

import (
	"math"
	"sort"
	"time"

	"github.com/vnhh/rewatch/internal/takeout"
	"github.com/vnhh/rewatch/internal/videoid"
	"github.com/vnhh/rewatch/internal/youtube"
)

// Aggregate reduces entries into a statistics bundle in a single pass.
//
// videos maps video ID to its enrichment record; an ID absent from the map
// means "duration unknown" and is counted as zero seconds and not-a-short.
// channels optionally maps channel ID to its record and only decorates the
// top-ranked channel rows with thumbnails; pass nil before channel
// enrichment has run.
//
// Entries without a titleUrl count toward platform totals but contribute no
// watch time; entries without an attributed channel are additionally
// excluded from the channel rankings. Entries without a usable timestamp
// are excluded from the temporal views only. Times are bucketed in the
// process-local time zone: the report describes personal habits, which live
// in local time, not UTC.
func Aggregate(entries []takeout.Entry, videos map[string]youtube.Video, channels map[string]youtube.Channel) *Bundle {
	b := &Bundle{TotalVideos: len(entries)}

	regular := newChannelTally()
	shorts := newChannelTally()
	days := make(map[time.Time]int)
	var hourCounts [24]int
	bandCounts := make([]int, len(timeframeBands))
	var first, last time.Time

	for i := range entries {
		entry := &entries[i]

		switch entry.Header {
		case takeout.HeaderYouTube:
			b.YouTubeVideos++
		case takeout.HeaderYouTubeMusic:
			b.YouTubeMusicVideos++
		}

		if !entry.Time.IsZero() {
			local := entry.Time.In(time.Local)
			day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
			days[day]++
			hourCounts[local.Hour()]++
			bandCounts[bandIndex(local.Hour())]++

			if first.IsZero() || entry.Time.Time.Before(first) {
				first = entry.Time.Time
			}
			if last.IsZero() || entry.Time.Time.After(last) {
				last = entry.Time.Time
			}
		}

		if entry.TitleURL == "" {
			continue
		}

		var duration int
		var short bool
		if id := videoid.ExtractVideoID(entry.TitleURL); id != "" {
			if v, ok := videos[id]; ok {
				duration = v.DurationSeconds
				short = v.Short
			}
		}
		b.TotalWatchSeconds += duration

		channel := entry.Channel()
		if channel == nil {
			continue
		}

		if short {
			b.Shorts++
			b.ShortsWatchSeconds += duration
			shorts.add(channel.Name, channel.URL)
		} else {
			b.RegularVideos++
			b.RegularWatchSeconds += duration
			regular.add(channel.Name, channel.URL)
		}
	}

	b.TopRegularChannels = regular.top(topChannelLimit, channels)
	b.TopShortsChannels = shorts.top(topChannelLimit, channels)

	b.RecentDays = recentDays(days)
	for h := range b.Hourly {
		b.Hourly[h] = HourCount{Hour: h, Count: hourCounts[h]}
	}
	b.MostActiveHour = mostActiveHour(hourCounts)
	b.MostActiveTimeframe = mostActiveTimeframe(bandCounts)

	b.FirstEntry, b.LastEntry = first, last
	b.DaySpan = daySpan(first, last)
	if b.DaySpan > 0 {
		b.AvgPerDay = math.Round(float64(b.TotalVideos)/float64(b.DaySpan)*10) / 10
	}

	return b
}

// channelTally accumulates per-channel counts while remembering
// first-encounter order, which later breaks ranking ties.
type channelTally struct {
	byName map[string]*ChannelStat
	order  []string
}

func newChannelTally() *channelTally {
	return &channelTally{byName: make(map[string]*ChannelStat)}
}

func (t *channelTally) add(name, url string) {
	stat, ok := t.byName[name]
	if !ok {
		stat = &ChannelStat{Name: name, URL: url}
		t.byName[name] = stat
		t.order = append(t.order, name)
	}
	stat.Count++
}

// top returns the highest-counted channels in descending order, equal counts
// kept in first-encounter order, truncated to limit. When channel enrichment
// is available the surviving rows are decorated with thumbnails.
func (t *channelTally) top(limit int, channels map[string]youtube.Channel) []ChannelStat {
	ranked := make([]ChannelStat, 0, len(t.order))
	for _, name := range t.order {
		ranked = append(ranked, *t.byName[name])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if channels != nil {
		for i := range ranked {
			id := videoid.ExtractChannelID(ranked[i].URL)
			if id == "" {
				continue
			}
			if ch, ok := channels[id]; ok {
				ranked[i].ThumbnailURL = ch.ThumbnailURL
			}
		}
	}

	return ranked
}

func recentDays(days map[time.Time]int) []DayCount {
	out := make([]DayCount, 0, len(days))
	for date, count := range days {
		out = append(out, DayCount{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if len(out) > recentDayLimit {
		out = out[:recentDayLimit]
	}
	return out
}

// mostActiveHour scans left to right; a tie keeps the lower hour.
func mostActiveHour(hourCounts [24]int) HourCount {
	best := HourCount{Hour: 0, Count: hourCounts[0]}
	for hour := 1; hour < len(hourCounts); hour++ {
		if hourCounts[hour] > best.Count {
			best = HourCount{Hour: hour, Count: hourCounts[hour]}
		}
	}
	return best
}

// mostActiveTimeframe picks the busiest band; a tie keeps the earliest
// declared band.
func mostActiveTimeframe(bandCounts []int) TimeframeCount {
	best := 0
	for i, count := range bandCounts {
		if count > bandCounts[best] {
			best = i
		}
	}
	if bandCounts[best] == 0 {
		return TimeframeCount{}
	}
	return TimeframeCount{Name: timeframeBands[best].Name, Count: bandCounts[best]}
}

// daySpan returns the inclusive span between first and last in whole days,
// floored at 1 so a single-day history never yields a zero divisor. Zero
// only when the history had no usable timestamps at all.
func daySpan(first, last time.Time) int {
	if first.IsZero() || last.IsZero() {
		return 0
	}
	span := int(math.Ceil(last.Sub(first).Hours() / 24))
	if span < 1 {
		span = 1
	}
	return span
}
