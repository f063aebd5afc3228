package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/vnhh/rewatch/internal/config"
	"github.com/vnhh/rewatch/internal/display"
	"github.com/vnhh/rewatch/internal/stats"
	"github.com/vnhh/rewatch/internal/takeout"
	"github.com/vnhh/rewatch/internal/videoid"
	"github.com/vnhh/rewatch/internal/youtube"
)

// newAnalyzeCmd creates the analyze subcommand.
func newAnalyzeCmd() *cobra.Command {
	var noEnrich bool
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "analyze <history-file>",
		Short: "Analyze a watch-history export",
		Long:  "Parse a Google Takeout watch-history JSON file and print viewing statistics. With a YouTube API key configured, entries are enriched with video durations and channel details.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Minute)
			defer cancel()

			file, err := os.Open(args[0]) // #nosec G304 -- user-supplied input path
			if err != nil {
				return fmt.Errorf("open history file: %w", err)
			}
			defer func() { _ = file.Close() }()

			entries, err := takeout.ParseHistory(file)
			if err != nil {
				return fmt.Errorf("parse history file: %w", err)
			}

			cfg := config.Load()

			var videos map[string]youtube.Video
			var channels map[string]youtube.Channel
			if !noEnrich {
				videos, channels = enrich(ctx, cmd, cfg, entries, noProgress)
			}

			bundle := stats.Aggregate(entries, videos, channels)
			fmt.Fprint(cmd.OutOrStdout(), display.NewFormatter().Format(bundle))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "Skip API enrichment and report counts only")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the enrichment progress bar")

	return cmd
}

// enrich resolves video durations and top-channel details through the
// YouTube Data API. Enrichment is best effort: a missing or rejected key
// degrades to count-only statistics with an advisory on stderr, never an
// error. Returned maps are nil when enrichment did not run.
func enrich(ctx context.Context, cmd *cobra.Command, cfg config.Config, entries []takeout.Entry, noProgress bool) (map[string]youtube.Video, map[string]youtube.Channel) {
	client := youtube.NewClient(cfg.APIKey)

	ids := make([]string, 0, len(entries))
	for i := range entries {
		if id := videoid.ExtractVideoID(entries[i].TitleURL); id != "" {
			ids = append(ids, id)
		}
	}

	result, err := client.FetchVideoDetails(ctx, ids, progressRenderer(cmd, noProgress))
	if err != nil {
		switch {
		case errors.Is(err, youtube.ErrAPIKeyMissing):
			fmt.Fprintln(cmd.ErrOrStderr(), "No YouTube API key configured: showing counts only. Set "+config.EnvAPIKey+" to enable watch-time statistics.")
		case errors.Is(err, youtube.ErrAPIKeyInvalid):
			fmt.Fprintln(cmd.ErrOrStderr(), "The configured YouTube API key is a placeholder: showing counts only.")
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "Video enrichment unavailable (%v): showing counts only.\n", err)
		}
		return nil, nil
	}
	for _, failed := range result.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", failed)
	}

	// Channel details are only needed for the channels that survive the
	// ranking, so aggregate once without them to find the top entries.
	preview := stats.Aggregate(entries, result.Videos, nil)
	channelIDs := topChannelIDs(preview)
	if len(channelIDs) == 0 {
		return result.Videos, nil
	}

	channelResult, err := client.FetchChannelDetails(ctx, channelIDs)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Channel enrichment unavailable: %v\n", err)
		return result.Videos, nil
	}
	for _, failed := range channelResult.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", failed)
	}

	return result.Videos, channelResult.Channels
}

func topChannelIDs(b *stats.Bundle) []string {
	var ids []string
	for _, ranked := range [][]stats.ChannelStat{b.TopRegularChannels, b.TopShortsChannels} {
		for _, ch := range ranked {
			if id := videoid.ExtractChannelID(ch.URL); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// progressRenderer bridges the client's progress callback to a terminal
// progress bar. Non-terminal stderr (or --no-progress) disables it so piped
// output stays clean.
func progressRenderer(cmd *cobra.Command, noProgress bool) youtube.ProgressFunc {
	if noProgress || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Enriching videos"),
		progressbar.OptionClearOnFinish(),
	)

	return func(fraction float64) {
		_ = bar.Set(int(fraction * 100))
	}
}
