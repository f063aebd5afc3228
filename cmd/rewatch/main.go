// Package main provides the rewatch CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the rewatch CLI.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "rewatch",
		Short:   "Analyze your YouTube watch history",
		Long:    "Rewatch turns a Google Takeout watch-history export into viewing statistics: platforms, watch time, top channels and activity patterns.",
		Version: version,
	}

	rootCmd.SetVersionTemplate("rewatch version {{.Version}}\n")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}
