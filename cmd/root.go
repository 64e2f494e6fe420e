package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wiggitywhitney/commit-story/internal"
)

var (
	verbose     bool
	storagePath string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commit-story",
	Short: "Extract commit-scoped chat history from Cursor's workspace storage",
	Long: `commit-story reconstructs the AI chat history behind a commit.

Invoked from a git post-commit hook, it locates Cursor's per-workspace
databases for the current project, extracts the conversation that happened
between the previous commit and this one, and hands the result to the
journal pipeline. Extraction is strictly read-only and degrades gracefully:
a missing or locked database produces an empty result, never a failed hook.

Quick Start:
  commit-story extract                    # history for the latest commit
  commit-story extract --format md        # journal-ready markdown
  commit-story workspaces                 # show matched storage locations
  commit-story doctor                     # check storage health`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom storage root (overrides platform detection and "+internal.StorageOverrideEnv+")")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
