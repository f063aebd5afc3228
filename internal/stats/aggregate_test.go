package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnhh/rewatch/internal/takeout"
	"github.com/vnhh/rewatch/internal/youtube"
)

func entry(header, title, titleURL, channelName string, watched time.Time) takeout.Entry {
	e := takeout.Entry{
		Header:   header,
		Title:    title,
		TitleURL: titleURL,
		Time:     takeout.Timestamp{Time: watched},
	}
	if channelName != "" {
		e.Subtitles = []takeout.Subtitle{{
			Name: channelName,
			URL:  "https://www.youtube.com/channel/UC" + channelName,
		}}
	}
	return e
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// localTime builds timestamps in the process-local zone, which is the zone
// the temporal buckets are computed in.
func localTime(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 30, 0, 0, time.Local)
}

func TestAggregateEmptyHistory(t *testing.T) {
	b := Aggregate(nil, nil, nil)

	assert.Zero(t, b.TotalVideos)
	assert.Zero(t, b.YouTubeVideos)
	assert.Zero(t, b.YouTubeMusicVideos)
	assert.Zero(t, b.TotalWatchSeconds)
	assert.Empty(t, b.TopRegularChannels)
	assert.Empty(t, b.TopShortsChannels)
	assert.Empty(t, b.RecentDays)
	assert.Zero(t, b.DaySpan)
	assert.Zero(t, b.AvgPerDay, "no NaN or Inf for an empty history")
	assert.False(t, b.AvgPerDay != b.AvgPerDay, "AvgPerDay must not be NaN")

	for hour, bucket := range b.Hourly {
		assert.Equal(t, hour, bucket.Hour)
		assert.Zero(t, bucket.Count)
	}
}

func TestAggregatePlatformTotals(t *testing.T) {
	when := localTime(2025, 3, 1, 15)
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "a video", watchURL("aaaaaaaaaaa"), "Channel One", when),
		entry(takeout.HeaderYouTubeMusic, "a track", watchURL("bbbbbbbbbbb"), "Artist", when),
		// Deleted video: no titleUrl, no channel. Still counts in totals.
		entry(takeout.HeaderYouTube, "a deleted video", "", "", when),
	}

	b := Aggregate(entries, nil, nil)

	assert.Equal(t, 3, b.TotalVideos)
	assert.Equal(t, 2, b.YouTubeVideos)
	assert.Equal(t, 1, b.YouTubeMusicVideos)

	total := 0
	for _, ch := range b.TopRegularChannels {
		total += ch.Count
	}
	assert.Equal(t, 2, total, "the entry without titleUrl stays out of channel aggregates")
}

func TestAggregateShortsSplit(t *testing.T) {
	when := localTime(2025, 3, 1, 20)
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "a short", watchURL("ssssssssss1"), "Same Channel", when),
		entry(takeout.HeaderYouTube, "a regular video", watchURL("rrrrrrrrrr1"), "Same Channel", when),
	}
	videos := map[string]youtube.Video{
		"ssssssssss1": {ID: "ssssssssss1", DurationSeconds: 30, Short: true},
		"rrrrrrrrrr1": {ID: "rrrrrrrrrr1", DurationSeconds: 300, Short: false},
	}

	b := Aggregate(entries, videos, nil)

	assert.Equal(t, 1, b.Shorts)
	assert.Equal(t, 1, b.RegularVideos)
	assert.Equal(t, 330, b.TotalWatchSeconds)
	assert.Equal(t, 30, b.ShortsWatchSeconds)
	assert.Equal(t, 300, b.RegularWatchSeconds)

	require.Len(t, b.TopShortsChannels, 1)
	assert.Equal(t, "Same Channel", b.TopShortsChannels[0].Name)
	assert.Equal(t, 1, b.TopShortsChannels[0].Count)

	require.Len(t, b.TopRegularChannels, 1)
	assert.Equal(t, "Same Channel", b.TopRegularChannels[0].Name)
	assert.Equal(t, 1, b.TopRegularChannels[0].Count)
}

func TestAggregateUnenrichedVideoCountsAsRegular(t *testing.T) {
	when := localTime(2025, 3, 1, 10)
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "never enriched", watchURL("xxxxxxxxxxx"), "Channel", when),
	}

	b := Aggregate(entries, map[string]youtube.Video{}, nil)

	assert.Equal(t, 1, b.RegularVideos, "missing enrichment means not-a-short")
	assert.Zero(t, b.TotalWatchSeconds, "missing enrichment means zero duration")
}

func TestAggregateTopChannelTruncation(t *testing.T) {
	when := localTime(2025, 3, 1, 12)
	var entries []takeout.Entry
	// 15 channels with strictly decreasing counts 15..1.
	for i := 0; i < 15; i++ {
		name := fmt.Sprintf("Channel %02d", i)
		for n := 0; n < 15-i; n++ {
			entries = append(entries, entry(takeout.HeaderYouTube, "v", watchURL("aaaaaaaaaaa"), name, when))
		}
	}

	b := Aggregate(entries, nil, nil)

	require.Len(t, b.TopRegularChannels, 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("Channel %02d", i), b.TopRegularChannels[i].Name)
		assert.Equal(t, 15-i, b.TopRegularChannels[i].Count)
		if i > 0 {
			assert.GreaterOrEqual(t, b.TopRegularChannels[i-1].Count, b.TopRegularChannels[i].Count)
		}
	}
}

func TestAggregateTieKeepsEncounterOrder(t *testing.T) {
	when := localTime(2025, 3, 1, 12)
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "v", watchURL("aaaaaaaaaaa"), "First Seen", when),
		entry(takeout.HeaderYouTube, "v", watchURL("aaaaaaaaaaa"), "Second Seen", when),
		entry(takeout.HeaderYouTube, "v", watchURL("aaaaaaaaaaa"), "Second Seen", when),
		entry(takeout.HeaderYouTube, "v", watchURL("aaaaaaaaaaa"), "First Seen", when),
	}

	b := Aggregate(entries, nil, nil)

	require.Len(t, b.TopRegularChannels, 2)
	assert.Equal(t, "First Seen", b.TopRegularChannels[0].Name)
	assert.Equal(t, "Second Seen", b.TopRegularChannels[1].Name)
}

func TestAggregateHourlyHistogram(t *testing.T) {
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 1, 9)),
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 1, 9)),
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 1, 22)),
	}

	b := Aggregate(entries, nil, nil)

	assert.Len(t, b.Hourly, 24)
	assert.Equal(t, 2, b.Hourly[9].Count)
	assert.Equal(t, 1, b.Hourly[22].Count)
	assert.Zero(t, b.Hourly[0].Count)

	assert.Equal(t, 9, b.MostActiveHour.Hour)
	assert.Equal(t, 2, b.MostActiveHour.Count)
}

func TestAggregateMostActiveHourTieKeepsLowest(t *testing.T) {
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 1, 21)),
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 1, 7)),
	}

	b := Aggregate(entries, nil, nil)

	assert.Equal(t, 7, b.MostActiveHour.Hour)
}

func TestAggregateTimeframes(t *testing.T) {
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 1, 17)),
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 1, 18)),
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 1, 9)),
	}

	b := Aggregate(entries, nil, nil)

	assert.Equal(t, "Evening", b.MostActiveTimeframe.Name)
	assert.Equal(t, 2, b.MostActiveTimeframe.Count)
}

func TestAggregateTimeframeTieKeepsDeclaredOrder(t *testing.T) {
	// One entry in Night (20-23), one in Midnight (0-2): Midnight is
	// declared first and wins the tie regardless of encounter order.
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 1, 21)),
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 2, 1)),
	}

	b := Aggregate(entries, nil, nil)

	assert.Equal(t, "Midnight", b.MostActiveTimeframe.Name)
	assert.Equal(t, 1, b.MostActiveTimeframe.Count)
}

func TestAggregateRecentDays(t *testing.T) {
	var entries []takeout.Entry
	// Ten distinct days with a gap, two entries on the most recent one.
	for day := 1; day <= 10; day++ {
		entries = append(entries, entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, day, 12)))
	}
	entries = append(entries, entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 10, 20)))

	b := Aggregate(entries, nil, nil)

	require.Len(t, b.RecentDays, 7)
	assert.Equal(t, 10, b.RecentDays[0].Date.Day())
	assert.Equal(t, 2, b.RecentDays[0].Count)
	for i := 1; i < len(b.RecentDays); i++ {
		assert.True(t, b.RecentDays[i].Date.Before(b.RecentDays[i-1].Date), "recent days sort newest first")
	}
}

func TestAggregateDateRange(t *testing.T) {
	first := localTime(2025, 3, 1, 8)
	last := localTime(2025, 3, 10, 22)
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "v", "", "", last),
		entry(takeout.HeaderYouTube, "v", "", "", first),
		entry(takeout.HeaderYouTube, "v", "", "", localTime(2025, 3, 5, 12)),
	}

	b := Aggregate(entries, nil, nil)

	assert.True(t, b.FirstEntry.Equal(first))
	assert.True(t, b.LastEntry.Equal(last))
	assert.Equal(t, 10, b.DaySpan)
	assert.Equal(t, 0.3, b.AvgPerDay)
}

func TestAggregateSingleDayHistory(t *testing.T) {
	when := localTime(2025, 3, 1, 14)
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "v", "", "", when),
		entry(takeout.HeaderYouTube, "v", "", "", when.Add(time.Hour)),
	}

	b := Aggregate(entries, nil, nil)

	assert.Equal(t, 1, b.DaySpan, "single-day history floors the span at 1")
	assert.Equal(t, 2.0, b.AvgPerDay)
}

func TestAggregateZeroTimestampsSkipTemporalViews(t *testing.T) {
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "broken time", "", "", time.Time{}),
		entry(takeout.HeaderYouTube, "good time", "", "", localTime(2025, 3, 1, 10)),
	}

	b := Aggregate(entries, nil, nil)

	assert.Equal(t, 2, b.TotalVideos)
	assert.Len(t, b.RecentDays, 1)
	assert.Equal(t, 1, b.Hourly[10].Count)
}

func TestAggregateChannelThumbnails(t *testing.T) {
	when := localTime(2025, 3, 1, 12)
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "v", watchURL("aaaaaaaaaaa"), "Decorated", when),
	}
	channels := map[string]youtube.Channel{
		"UCDecorated": {ID: "UCDecorated", DisplayName: "Decorated", ThumbnailURL: "https://example.com/t.jpg"},
	}

	b := Aggregate(entries, nil, channels)

	require.Len(t, b.TopRegularChannels, 1)
	assert.Equal(t, "https://example.com/t.jpg", b.TopRegularChannels[0].ThumbnailURL)
}

func TestAggregateDeterministic(t *testing.T) {
	when := localTime(2025, 3, 1, 12)
	entries := []takeout.Entry{
		entry(takeout.HeaderYouTube, "v", watchURL("aaaaaaaaaaa"), "A", when),
		entry(takeout.HeaderYouTubeMusic, "t", watchURL("bbbbbbbbbbb"), "B", when),
	}
	videos := map[string]youtube.Video{
		"aaaaaaaaaaa": {ID: "aaaaaaaaaaa", DurationSeconds: 100},
	}

	first := Aggregate(entries, videos, nil)
	second := Aggregate(entries, videos, nil)

	assert.Equal(t, first, second)
}
