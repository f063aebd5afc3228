// Package display renders a statistics bundle for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/vnhh/rewatch/internal/isoduration"
	"github.com/vnhh/rewatch/internal/stats"
)

const dateLayout = "Jan 2, 2006"

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// Formatter formats a statistics bundle as a sequence of titled tables.
type Formatter struct{}

// NewFormatter creates a new terminal formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format renders the whole report. Watch-time sections are replaced by a
// short note when the bundle carries counts only.
func (f *Formatter) Format(b *stats.Bundle) string {
	if b == nil || b.TotalVideos == 0 {
		return "No history entries to display.\n"
	}

	var sections []string
	sections = append(sections, f.overview(b))
	sections = append(sections, f.platforms(b))

	if b.TotalWatchSeconds > 0 {
		sections = append(sections, f.watchTime(b))
	} else {
		sections = append(sections, "Watch-time statistics unavailable: history was not enriched with video durations.")
	}

	if section := f.channels("Top Channels", b.TopRegularChannels); section != "" {
		sections = append(sections, section)
	}
	if section := f.channels("Top Shorts Channels", b.TopShortsChannels); section != "" {
		sections = append(sections, section)
	}

	sections = append(sections, f.activity(b))

	if len(b.RecentDays) > 0 {
		sections = append(sections, f.recentDays(b))
	}

	return strings.Join(sections, "\n\n") + "\n"
}

func (f *Formatter) overview(b *stats.Bundle) string {
	rows := [][]string{
		{"Videos watched", humanize.Comma(int64(b.TotalVideos))},
	}
	if !b.FirstEntry.IsZero() {
		rows = append(rows,
			[]string{"First entry", b.FirstEntry.Format(dateLayout)},
			[]string{"Last entry", b.LastEntry.Format(dateLayout)},
			[]string{"Days covered", humanize.Comma(int64(b.DaySpan))},
			[]string{"Average per day", fmt.Sprintf("%.1f", b.AvgPerDay)},
		)
	}
	return section("Overview", renderTable(nil, rows, []columnAlignment{alignLeft, alignRight}))
}

func (f *Formatter) platforms(b *stats.Bundle) string {
	rows := [][]string{
		{"YouTube", humanize.Comma(int64(b.YouTubeVideos))},
		{"YouTube Music", humanize.Comma(int64(b.YouTubeMusicVideos))},
	}
	return section("Platforms", renderTable([]string{"Platform", "Videos"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func (f *Formatter) watchTime(b *stats.Bundle) string {
	rows := [][]string{
		{"Total", isoduration.Format(b.TotalWatchSeconds), humanize.Comma(int64(b.RegularVideos + b.Shorts))},
		{"Regular videos", isoduration.Format(b.RegularWatchSeconds), humanize.Comma(int64(b.RegularVideos))},
		{"Shorts", isoduration.Format(b.ShortsWatchSeconds), humanize.Comma(int64(b.Shorts))},
	}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight}
	return section("Watch Time", renderTable([]string{"Kind", "Time", "Videos"}, rows, aligns))
}

func (f *Formatter) channels(title string, ranked []stats.ChannelStat) string {
	if len(ranked) == 0 {
		return ""
	}

	// The thumbnail column only exists when channel enrichment ran; a
	// count-only report stays narrow.
	withThumbnails := false
	for _, ch := range ranked {
		if ch.ThumbnailURL != "" {
			withThumbnails = true
			break
		}
	}

	headers := []string{"#", "Channel", "Videos"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight}
	if withThumbnails {
		headers = append(headers, "Thumbnail")
		aligns = append(aligns, alignLeft)
	}

	rows := make([][]string, 0, len(ranked))
	for i, ch := range ranked {
		row := []string{
			fmt.Sprintf("%d", i+1),
			ch.Name,
			humanize.Comma(int64(ch.Count)),
		}
		if withThumbnails {
			row = append(row, ch.ThumbnailURL)
		}
		rows = append(rows, row)
	}
	return section(title, renderTable(headers, rows, aligns))
}

func (f *Formatter) activity(b *stats.Bundle) string {
	rows := [][]string{
		{"Most active hour", fmt.Sprintf("%s (%s videos)", FormatHour(b.MostActiveHour.Hour), humanize.Comma(int64(b.MostActiveHour.Count)))},
	}
	if b.MostActiveTimeframe.Name != "" {
		rows = append(rows, []string{
			"Most active timeframe",
			fmt.Sprintf("%s (%s videos)", b.MostActiveTimeframe.Name, humanize.Comma(int64(b.MostActiveTimeframe.Count))),
		})
	}
	return section("Activity", renderTable(nil, rows, []columnAlignment{alignLeft, alignLeft}))
}

func (f *Formatter) recentDays(b *stats.Bundle) string {
	rows := make([][]string, 0, len(b.RecentDays))
	for _, day := range b.RecentDays {
		rows = append(rows, []string{
			day.Date.Format("Mon Jan 2"),
			humanize.Comma(int64(day.Count)),
		})
	}
	return section("Recent Days", renderTable([]string{"Date", "Videos"}, rows, []columnAlignment{alignLeft, alignRight}))
}

// FormatHour formats an hour of the day as a 12-hour clock label.
func FormatHour(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}

func section(title, body string) string {
	return title + "\n" + body
}

// renderTable renders rows into a rounded-border table. A nil headers slice
// produces a headerless key/value table.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 && len(rows) > 0 {
		columns = len(rows[0])
	}
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	if len(headers) > 0 {
		header := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			header[i] = headers[i]
		}
		tw.AppendHeader(header)
	}

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
