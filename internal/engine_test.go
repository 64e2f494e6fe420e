package internal

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/wiggitywhitney/commit-story/testutil"
)

const testProject = "/home/dev/projects/alpha"

var (
	sessionCreated = time.Date(2025, 6, 1, 10, 15, 0, 0, time.UTC)
	sessionUpdated = time.Date(2025, 6, 1, 10, 45, 0, 0, time.UTC)
	windowStart    = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	windowEnd      = time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
)

// populatedRoot builds a candidate root holding one matched workspace with a
// session-oriented database and a global store with the message bodies.
func populatedRoot(t *testing.T) string {
	t.Helper()
	root, wsDB, globalDB := testutil.CreateStorageRoot(t, "hash-1", testProject)

	testutil.InsertJSON(t, wsDB, "ItemTable", "composer.composerData", map[string]interface{}{
		"allComposers": []map[string]interface{}{
			{
				"composerId":    "session-1",
				"name":          "Debug the hook",
				"createdAt":     sessionCreated.UnixMilli(),
				"lastUpdatedAt": sessionUpdated.UnixMilli(),
				"fullConversationHeadersOnly": []map[string]interface{}{
					{"bubbleId": "m1", "type": 1},
					{"bubbleId": "m2", "type": 2},
					{"bubbleId": "m3", "type": 2},
				},
			},
		},
	})

	testutil.InsertKV(t, globalDB, "cursorDiskKV", "bubbleId:session-1:m1",
		`{"type":1,"text":"why does the hook hang?"}`)
	testutil.InsertKV(t, globalDB, "cursorDiskKV", "bubbleId:session-1:m2",
		`{"type":2,"thinking":{"text":"The query has no timeout."}}`)
	testutil.InsertKV(t, globalDB, "cursorDiskKV", "bubbleId:session-1:m3",
		`{"type":2,"toolFormerData":{"name":"read_file","status":"completed"}}`)

	return root
}

func TestExtractChatHistory(t *testing.T) {
	root := populatedRoot(t)

	result := ExtractChatHistory(Options{
		ProjectPath:       testProject,
		PrevCommitTime:    windowStart,
		CurrentCommitTime: windowEnd,
		StorageOverride:   root,
	})

	if result == nil {
		t.Fatal("result must never be nil")
	}
	if result.WorkspaceInfo.TimeWindow.Strategy != "explicit" {
		t.Errorf("strategy = %q", result.WorkspaceInfo.TimeWindow.Strategy)
	}
	if len(result.WorkspaceInfo.SearchedPaths) != 1 || result.WorkspaceInfo.SearchedPaths[0] != root {
		t.Errorf("SearchedPaths = %v", result.WorkspaceInfo.SearchedPaths)
	}
	if len(result.WorkspaceInfo.SelectedDatabases) != 1 {
		t.Fatalf("SelectedDatabases = %v", result.WorkspaceInfo.SelectedDatabases)
	}

	if result.WorkspaceInfo.TotalMessages != 3 {
		t.Fatalf("TotalMessages = %d, want 3", result.WorkspaceInfo.TotalMessages)
	}

	wantContent := []string{
		"why does the hook hang?",
		"The query has no timeout.",
		"Tool: read_file — completed",
	}
	for i, msg := range result.Messages {
		if msg.Content != wantContent[i] {
			t.Errorf("message %d content = %q, want %q", i, msg.Content, wantContent[i])
		}
	}
}

func TestExtractChatHistoryIdempotent(t *testing.T) {
	root := populatedRoot(t)
	opts := Options{
		ProjectPath:       testProject,
		PrevCommitTime:    windowStart,
		CurrentCommitTime: windowEnd,
		StorageOverride:   root,
	}

	first := ExtractChatHistory(opts)
	second := ExtractChatHistory(opts)

	if !reflect.DeepEqual(first.Messages, second.Messages) {
		t.Error("repeated runs against an unchanged database must yield identical messages")
	}
}

func TestExtractChatHistoryWindowExcludesSession(t *testing.T) {
	root := populatedRoot(t)

	// Window entirely before the session's inherited timestamp.
	result := ExtractChatHistory(Options{
		ProjectPath:       testProject,
		PrevCommitTime:    windowStart.Add(-2 * time.Hour),
		CurrentCommitTime: windowStart.Add(-1 * time.Hour),
		StorageOverride:   root,
	})

	if len(result.Messages) != 0 {
		t.Errorf("out-of-window session leaked %d messages", len(result.Messages))
	}
}

func TestExtractChatHistoryCorruptAlongsideHealthy(t *testing.T) {
	root := populatedRoot(t)

	// A second workspace for the same project whose database is unreadable.
	wsDir := testutil.CreateWorkspaceTree(t, root, "hash-2", testProject)
	corruptDB := filepath.Join(wsDir, StorageFileName)
	testutil.CorruptFile(t, corruptDB)

	result := ExtractChatHistory(Options{
		ProjectPath:       testProject,
		PrevCommitTime:    windowStart,
		CurrentCommitTime: windowEnd,
		StorageOverride:   root,
	})

	if len(result.Messages) != 3 {
		t.Errorf("healthy database's messages missing: %d", len(result.Messages))
	}
	if len(result.WorkspaceInfo.FailedDatabases) != 1 {
		t.Fatalf("FailedDatabases = %+v", result.WorkspaceInfo.FailedDatabases)
	}
	if result.WorkspaceInfo.FailedDatabases[0].Path != corruptDB {
		t.Errorf("failure path = %q, want %q", result.WorkspaceInfo.FailedDatabases[0].Path, corruptDB)
	}
}

func TestExtractChatHistoryEmptyPlatform(t *testing.T) {
	// No workspaces anywhere: the result is well-formed and empty, never an
	// error.
	result := ExtractChatHistory(Options{
		ProjectPath:       testProject,
		PrevCommitTime:    windowStart,
		CurrentCommitTime: windowEnd,
		StorageOverride:   t.TempDir(),
	})

	if result == nil {
		t.Fatal("result must never be nil")
	}
	if len(result.Messages) != 0 {
		t.Errorf("unexpected messages: %d", len(result.Messages))
	}
}

func TestExtractChatHistoryRecencyExcludesStale(t *testing.T) {
	root := populatedRoot(t)

	dbPath := filepath.Join(WorkspaceStorageDir(root), "hash-1", StorageFileName)
	stale := time.Now().Add(-100 * time.Hour)
	if err := os.Chtimes(dbPath, stale, stale); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	result := ExtractChatHistory(Options{
		ProjectPath:       testProject,
		PrevCommitTime:    windowStart,
		CurrentCommitTime: windowEnd,
		StorageOverride:   root,
	})

	for _, selected := range result.WorkspaceInfo.SelectedDatabases {
		if selected == dbPath {
			t.Error("stale database appeared in SelectedDatabases")
		}
	}
}

func TestExtractChatHistoryWithCache(t *testing.T) {
	root := populatedRoot(t)
	cacheDir := t.TempDir()

	opts := Options{
		ProjectPath:       testProject,
		PrevCommitTime:    windowStart,
		CurrentCommitTime: windowEnd,
		StorageOverride:   root,
		CacheDir:          cacheDir,
	}

	first := ExtractChatHistory(opts)
	second := ExtractChatHistory(opts) // served from cache

	if !reflect.DeepEqual(first.Messages, second.Messages) {
		t.Error("cached run differs from fresh run")
	}
}
