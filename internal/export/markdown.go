package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wiggitywhitney/commit-story/internal"
)

// MarkdownExporter renders a result as the journal-ready conversation
// section: a metadata header followed by one block per message.
type MarkdownExporter struct{}

// Export exports a result to Markdown format
func (e *MarkdownExporter) Export(result *internal.ChatHistoryResult, w io.Writer) error {
	info := result.WorkspaceInfo

	_, _ = fmt.Fprintf(w, "## Chat History\n\n")
	_, _ = fmt.Fprintf(w, "**Messages:** %d  \n", info.TotalMessages)
	if !info.TimeWindow.Start.IsZero() {
		_, _ = fmt.Fprintf(w, "**Window:** %s → %s (%s)\n\n",
			info.TimeWindow.Start.Format(time.RFC3339),
			info.TimeWindow.End.Format(time.RFC3339),
			info.TimeWindow.Strategy)
	}

	if len(result.Messages) == 0 {
		_, _ = fmt.Fprintf(w, "_No conversation history in this window._\n")
		return nil
	}

	for i, msg := range result.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format(time.RFC3339))
		}

		content := msg.Content
		if content == "" {
			content = "_(no text content)_"
		} else {
			content = escapeMarkdown(content)
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Role, timestamp, content)

		if i < len(result.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside code blocks.
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
