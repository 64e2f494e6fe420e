package export

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONExport(t *testing.T) {
	var sb strings.Builder
	exporter := &JSONExporter{}

	if err := exporter.Export(sampleResult(), &sb); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded struct {
		WorkspaceInfo struct {
			TotalMessages int `json:"total_messages"`
		} `json:"workspace_info"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal([]byte(sb.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded.WorkspaceInfo.TotalMessages != 2 {
		t.Errorf("total_messages = %d, want 2", decoded.WorkspaceInfo.TotalMessages)
	}
	if len(decoded.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(decoded.Messages))
	}
	if decoded.Messages[0].Role != "user" || decoded.Messages[0].Content != "why is this slow?" {
		t.Errorf("first message = %+v", decoded.Messages[0])
	}

	// Pretty-printed output, not a single line.
	if !strings.Contains(sb.String(), "\n  ") {
		t.Error("JSON output should be indented")
	}
}
