package cmd

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/wiggitywhitney/commit-story/internal"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether commit-story can locate and read chat storage",
	Long: `Check extraction health by verifying:
  • Candidate storage root detection
  • Workspace matching for the current project
  • Database discovery and readability
  • Global store availability

Useful when the journal comes up empty and you want to know why.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}

		fmt.Println(sectionStyle.Render("commit-story health check"))
		fmt.Println()

		fmt.Println(infoStyle.Render("Step 1: Candidate storage roots"))
		platform := internal.CurrentPlatform(runtime.GOOS, storagePath)
		roots := internal.CandidateRoots(platform)
		if len(roots) == 0 {
			fmt.Println(warningStyle.Render("  no candidate roots for this platform"))
		}
		for _, root := range roots {
			if _, err := os.Stat(root); err == nil {
				fmt.Println(successStyle.Render("  ok ") + root)
			} else {
				fmt.Println(warningStyle.Render("  -- ") + root)
			}
		}
		fmt.Println()

		fmt.Println(infoStyle.Render("Step 2: Workspace match for " + project))
		workspaces := internal.MatchWorkspaces(roots, project)
		if len(workspaces) == 0 {
			fmt.Println(warningStyle.Render("  no workspace matches this project"))
		}
		for _, ws := range workspaces {
			fmt.Println(successStyle.Render("  ok ") + ws.WorkspaceID)
		}
		fmt.Println()

		fmt.Println(infoStyle.Render("Step 3: Database discovery"))
		handles, failures := internal.DiscoverDatabases(workspaces, 0, time.Now())
		for _, handle := range handles {
			fmt.Printf("%s%s (modified %s)\n", successStyle.Render("  ok "), handle.Path,
				handle.LastModified.Format(time.RFC3339))
		}
		for _, failure := range failures {
			fmt.Printf("%s%s [%s]\n", warningStyle.Render("  !! "), failure.Path, failure.Category)
		}
		if len(handles) == 0 && len(failures) == 0 {
			fmt.Println(warningStyle.Render("  no recent databases found"))
		}
		fmt.Println()

		fmt.Println(infoStyle.Render("Step 4: Global store"))
		if globalPath, ok := internal.FindGlobalDatabase(roots); ok {
			fmt.Println(successStyle.Render("  ok ") + globalPath)
		} else {
			fmt.Println(warningStyle.Render("  no readable global store (session message bodies unavailable)"))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
