package internal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/wiggitywhitney/commit-story/testutil"
)

func openTestExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), StorageFileName)
	testutil.CreateWorkspaceDB(t, dbPath)
	testutil.InsertKV(t, dbPath, "ItemTable", "some.key", `{"hello":"world"}`)
	testutil.InsertKV(t, dbPath, "ItemTable", "other.key", `[1,2,3]`)

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewExecutor(db, dbPath, 0), dbPath
}

func TestExecutorQueryValue(t *testing.T) {
	exec, _ := openTestExecutor(t)

	value, ok, err := exec.QueryValue("ItemTable", "some.key")
	if err != nil {
		t.Fatalf("QueryValue() error = %v", err)
	}
	if !ok {
		t.Fatal("QueryValue() ok = false for existing key")
	}
	if string(value) != `{"hello":"world"}` {
		t.Errorf("QueryValue() = %q", value)
	}
}

func TestExecutorQueryValueMissingKey(t *testing.T) {
	exec, _ := openTestExecutor(t)

	_, ok, err := exec.QueryValue("ItemTable", "no.such.key")
	if err != nil {
		t.Fatalf("missing key should not error, got %v", err)
	}
	if ok {
		t.Error("QueryValue() ok = true for missing key")
	}
}

func TestExecutorQueryValueSchemaMismatch(t *testing.T) {
	exec, dbPath := openTestExecutor(t)

	// The workspace fixture has no cursorDiskKV table.
	_, _, err := exec.QueryValue("cursorDiskKV", "bubbleId:a:b")
	if err == nil {
		t.Fatal("querying an absent table should fail")
	}

	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error type = %T, want *QueryError", err)
	}
	if qe.Kind != QuerySchemaMismatch {
		t.Errorf("error kind = %v, want %v", qe.Kind, QuerySchemaMismatch)
	}
	if qe.Path != dbPath {
		t.Errorf("error path = %q, want %q", qe.Path, dbPath)
	}
}

func TestExecutorQueryPrefix(t *testing.T) {
	exec, _ := openTestExecutor(t)

	pairs, err := exec.QueryPrefix("ItemTable", "some.%")
	if err != nil {
		t.Fatalf("QueryPrefix() error = %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("QueryPrefix() returned %d pairs, want 1", len(pairs))
	}
	if pairs[0].Key != "some.key" {
		t.Errorf("pair key = %q", pairs[0].Key)
	}
}

func TestExecutorUnknownTable(t *testing.T) {
	exec, _ := openTestExecutor(t)

	if _, _, err := exec.QueryValue("users; DROP TABLE ItemTable", "k"); err == nil {
		t.Error("unknown table name must be rejected, not interpolated")
	}
	if _, err := exec.QueryPrefix("bogus", "%"); err == nil {
		t.Error("unknown table name must be rejected for prefix queries too")
	}
}
