package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/wiggitywhitney/commit-story/internal"
	"github.com/wiggitywhitney/commit-story/internal/export"
)

var (
	extractProject string
	extractSince   string
	extractUntil   string
	extractFormat  string
	extractOutput  string
	extractLag     time.Duration
	extractRecency time.Duration
	extractNoCache bool
)

var summaryStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("243"))

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the chat history behind a commit",
	Long: `Extract the conversation recorded between the previous commit and the
current one for a project, and write it in the requested format.

Without --since/--until the window is derived from the repository at the
project path: previous commit time through HEAD commit time, with a 24-hour
lookback for the first commit or when git is unavailable. The command never
fails on storage problems; they are recorded in the result's metadata.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project := extractProject
		if project == "" {
			var err error
			project, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to determine working directory: %w", err)
			}
		}

		since, err := parseBoundary(extractSince)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		until, err := parseBoundary(extractUntil)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}

		opts := internal.Options{
			ProjectPath:       project,
			PrevCommitTime:    since,
			CurrentCommitTime: until,
			StorageOverride:   storagePath,
			RecencyWindow:     extractRecency,
			LagBuffer:         extractLag,
		}
		if !extractNoCache {
			opts.CacheDir = internal.DefaultCacheDir()
		}

		result := internal.ExtractChatHistory(opts)

		exporter, err := export.NewExporter(extractFormat)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if extractOutput != "" {
			f, err := os.Create(extractOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if err := exporter.Export(result, out); err != nil {
			return fmt.Errorf("failed to export result: %w", err)
		}

		if extractOutput != "" {
			info := result.WorkspaceInfo
			summary := fmt.Sprintf("%d messages from %d database(s), %d failure(s) → %s",
				info.TotalMessages, len(info.SelectedDatabases), len(info.FailedDatabases), extractOutput)
			fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render(summary))
		}

		return nil
	},
}

// parseBoundary accepts RFC3339 or unix seconds. Empty means unset.
func parseBoundary(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	var secs int64
	if _, err := fmt.Sscanf(s, "%d", &secs); err == nil && secs > 0 {
		return time.Unix(secs, 0), nil
	}
	return time.Time{}, fmt.Errorf("expected RFC3339 timestamp or unix seconds, got %q", s)
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractProject, "project", "p", "", "Project root path (default: current directory)")
	extractCmd.Flags().StringVar(&extractSince, "since", "", "Window start (RFC3339 or unix seconds; default: previous commit time)")
	extractCmd.Flags().StringVar(&extractUntil, "until", "", "Window end (RFC3339 or unix seconds; default: HEAD commit time)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "json", "Output format: json, jsonl, yaml, md")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Write to file instead of stdout")
	extractCmd.Flags().DurationVar(&extractLag, "lag-buffer", 0, "Extend the window's upper bound to absorb storage persistence lag")
	extractCmd.Flags().DurationVar(&extractRecency, "recency", internal.DefaultRecencyWindow, "Ignore databases not modified within this duration")
	extractCmd.Flags().BoolVar(&extractNoCache, "no-cache", false, "Bypass the per-database reconstruction cache")
}
