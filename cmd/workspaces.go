package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/wiggitywhitney/commit-story/internal"
)

var workspacesProject string

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))
)

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "Show candidate storage roots and matched workspaces",
	Long: `Show the candidate storage roots for this platform and which workspace
directories match the given project, in detection order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project := workspacesProject
		if project == "" {
			var err error
			project, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to determine working directory: %w", err)
			}
		}

		platform := internal.CurrentPlatform(runtime.GOOS, storagePath)
		roots := internal.CandidateRoots(platform)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("Candidate roots"))
		if len(roots) == 0 {
			fmt.Fprintln(out, "  (none for this platform)")
		}
		for _, root := range roots {
			marker := " "
			if _, err := os.Stat(root); err == nil {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s %s\n", marker, pathStyle.Render(root))
		}

		matches := internal.MatchWorkspaces(roots, project)
		fmt.Fprintln(out)
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Workspaces matching %s", project)))
		if len(matches) == 0 {
			fmt.Fprintln(out, "  (no match)")
			return nil
		}
		for _, ws := range matches {
			fmt.Fprintf(out, "  %s\n", idStyle.Render(ws.WorkspaceID))
			if ws.ProjectPathHint != "" {
				fmt.Fprintf(out, "    folder: %s\n", ws.ProjectPathHint)
			}
			fmt.Fprintf(out, "    db: %s\n", ws.StorageDBPath())
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(workspacesCmd)

	workspacesCmd.Flags().StringVarP(&workspacesProject, "project", "p", "", "Project root path (default: current directory)")
}
