package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/wiggitywhitney/commit-story/internal"
)

// JSONLExporter exports results in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a result to JSONL format
func (e *JSONLExporter) Export(result *internal.ChatHistoryResult, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range result.Messages {
		obj := map[string]interface{}{
			"role":    msg.Role,
			"content": msg.Content,
		}
		if msg.SessionID != "" {
			obj["session_id"] = msg.SessionID
		}
		if !msg.Timestamp.IsZero() {
			obj["timestamp"] = msg.Timestamp.Format(time.RFC3339)
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
