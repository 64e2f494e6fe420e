package testutil

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateWorkspaceDB creates a workspace-style database (ItemTable) at path.
func CreateWorkspaceDB(t *testing.T, path string) {
	t.Helper()
	createKVDB(t, path, "ItemTable")
}

// CreateGlobalDB creates a global-store database (cursorDiskKV) at path.
func CreateGlobalDB(t *testing.T, path string) {
	t.Helper()
	createKVDB(t, path, "cursorDiskKV")
}

func createKVDB(t *testing.T, path, table string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := "CREATE TABLE IF NOT EXISTS " + table + " (key TEXT PRIMARY KEY, value BLOB)"
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
}

// InsertKV inserts one key/value row into table in the database at path.
func InsertKV(t *testing.T, path, table, key, value string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec("INSERT OR REPLACE INTO "+table+" (key, value) VALUES (?, ?)", key, value); err != nil {
		t.Fatalf("Failed to insert %s: %v", key, err)
	}
}

// InsertJSON marshals v and inserts it under key.
func InsertJSON(t *testing.T, path, table, key string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal fixture value: %v", err)
	}
	InsertKV(t, path, table, key, string(data))
}

// CreateWorkspaceTree creates root/workspaceStorage/<hash>/ with a
// workspace.json mapping it to folder, and returns the workspace directory.
// An empty folder skips writing workspace.json.
func CreateWorkspaceTree(t *testing.T, root, hash, folder string) string {
	t.Helper()
	wsDir := filepath.Join(root, "workspaceStorage", hash)
	if err := os.MkdirAll(wsDir, 0o755); err != nil {
		t.Fatalf("Failed to create workspace directory: %v", err)
	}

	if folder != "" {
		meta, _ := json.Marshal(map[string]string{"folder": folder})
		if err := os.WriteFile(filepath.Join(wsDir, "workspace.json"), meta, 0o644); err != nil {
			t.Fatalf("Failed to write workspace.json: %v", err)
		}
	}

	return wsDir
}

// CreateStorageRoot builds a full candidate root: one matched workspace with
// a workspace database, plus a global store. Returns (root, workspaceDBPath,
// globalDBPath).
func CreateStorageRoot(t *testing.T, hash, folder string) (string, string, string) {
	t.Helper()
	root := t.TempDir()

	wsDir := CreateWorkspaceTree(t, root, hash, folder)
	wsDB := filepath.Join(wsDir, "state.vscdb")
	CreateWorkspaceDB(t, wsDB)

	globalDB := filepath.Join(root, "globalStorage", "state.vscdb")
	CreateGlobalDB(t, globalDB)

	return root, wsDB, globalDB
}

// CorruptFile writes junk bytes to path so it fails database validation.
func CorruptFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte("this is not a sqlite database"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}
}
