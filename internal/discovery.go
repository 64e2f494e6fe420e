package internal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// StorageFileName is the database filename used by every storage generation.
const StorageFileName = "state.vscdb"

const (
	// DefaultRecencyWindow bounds discovery to recently modified databases.
	// This is a completeness/performance trade-off, not a correctness
	// requirement: scanning every historical database is 5-10x slower and
	// contributes nothing for the common "what happened recently" case. The
	// window is generous relative to typical session cadence.
	DefaultRecencyWindow = 48 * time.Hour

	// DefaultQueryTimeout bounds each open/validate/query call so a locked
	// or corrupt database cannot stall the surrounding git hook.
	DefaultQueryTimeout = 5 * time.Second
)

// DiscoverDatabases enumerates the storage file in each matched workspace
// directory, applies the recency filter, and validates that each surviving
// candidate opens as a readable store. Failures are returned alongside the
// good handles so the assembler can record them; they never abort discovery.
func DiscoverDatabases(workspaces []WorkspaceDescriptor, recency time.Duration, now time.Time) ([]DatabaseHandle, []DatabaseFailure) {
	if recency <= 0 {
		recency = DefaultRecencyWindow
	}
	cutoff := now.Add(-recency)

	var handles []DatabaseHandle
	var failures []DatabaseFailure

	for _, ws := range workspaces {
		path := ws.StorageDBPath()

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				LogDebug("no storage file in workspace %s", ws.WorkspaceID)
				continue
			}
			failures = append(failures, discoveryFailure(path, "stat", err))
			continue
		}

		if info.ModTime().Before(cutoff) {
			LogDebug("skipping stale database %s (modified %s)", path, info.ModTime())
			continue
		}

		if err := validateDatabase(path); err != nil {
			LogWarn("discarding unreadable database %s: %v", path, err)
			failures = append(failures, discoveryFailure(path, "validate", err))
			continue
		}

		handles = append(handles, DatabaseHandle{
			Path:         path,
			LastModified: info.ModTime(),
		})
	}

	return handles, failures
}

// OpenDatabase opens a storage file strictly read-only.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// validateDatabase confirms a candidate is a real, non-corrupt store by
// opening it read-only and pinging within the query timeout. Invalid files
// are discarded rather than propagated.
func validateDatabase(path string) error {
	db, err := OpenDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultQueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// FindGlobalDatabase returns the first readable global store among the
// candidate roots. Session message records live only in the global store.
func FindGlobalDatabase(roots []string) (string, bool) {
	for _, root := range roots {
		path := GlobalStorageDB(root)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := validateDatabase(path); err != nil {
			LogWarn("global store %s failed validation: %v", path, err)
			continue
		}
		return path, true
	}
	return "", false
}

func discoveryFailure(path, op string, err error) DatabaseFailure {
	de := &DiscoveryError{Path: path, Op: op, Err: err}
	return DatabaseFailure{
		Path:     path,
		Category: failureCategory(de),
		Detail:   err.Error(),
	}
}
