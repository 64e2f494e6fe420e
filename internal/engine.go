package internal

import (
	"fmt"
	"runtime"
	"time"
)

// Options configures one extraction run. Zero values get functional defaults.
type Options struct {
	// ProjectPath is the project root whose workspace history is wanted.
	ProjectPath string

	// PrevCommitTime and CurrentCommitTime bound the window. When both are
	// zero the window is derived from the repository at ProjectPath; a zero
	// PrevCommitTime alone triggers the 24h fallback.
	PrevCommitTime    time.Time
	CurrentCommitTime time.Time

	// StorageOverride replaces all automatic root detection with one path.
	StorageOverride string

	// RecencyWindow bounds discovery to recently modified databases.
	// Defaults to DefaultRecencyWindow.
	RecencyWindow time.Duration

	// QueryTimeout bounds each database call. Defaults to DefaultQueryTimeout.
	QueryTimeout time.Duration

	// LagBuffer widens the window's upper bound to absorb the store's
	// persistence delay, where message bodies can trail session-header
	// updates. Zero keeps the strict commit boundary.
	LagBuffer time.Duration

	// CacheDir enables the per-database reconstruction cache when non-empty.
	CacheDir string
}

// ExtractChatHistory runs the full pipeline: locate candidate roots, match
// the workspace, discover databases, extract and reconstruct messages,
// filter to the time window, and assemble the merged result.
//
// It never returns an error. Every internal failure is converted into an
// empty result or a ledger entry in WorkspaceInfo; the downstream consumer
// always receives a usable structure. The engine is strictly read-only and
// treats a writer lock held by the owning application as routine.
func ExtractChatHistory(opts Options) *ChatHistoryResult {
	var window TimeWindow
	if opts.PrevCommitTime.IsZero() && opts.CurrentCommitTime.IsZero() && opts.ProjectPath != "" {
		window = CommitWindow(opts.ProjectPath)
	} else {
		window = ComputeWindow(opts.PrevCommitTime, opts.CurrentCommitTime)
		if !opts.PrevCommitTime.IsZero() {
			window.Strategy = "explicit"
		}
	}

	platform := CurrentPlatform(runtime.GOOS, opts.StorageOverride)
	roots := CandidateRoots(platform)
	LogDebug("candidate roots: %v", roots)

	workspaces := MatchWorkspaces(roots, opts.ProjectPath)
	handles, failures := DiscoverDatabases(workspaces, opts.RecencyWindow, time.Now())

	searched := make([]string, 0, len(roots))
	searched = append(searched, roots...)

	globalPath, hasGlobal := FindGlobalDatabase(roots)
	if hasGlobal {
		LogDebug("using global store %s", globalPath)
	}

	var cache *ResultCache
	if opts.CacheDir != "" {
		cache = NewResultCache(opts.CacheDir)
	}

	partials := make([]PartialResult, 0, len(handles))
	for _, handle := range handles {
		messages, err := extractOne(handle, globalPath, hasGlobal, cache, opts, window)
		partials = append(partials, PartialResult{
			Handle:   handle,
			Messages: messages,
			Err:      err,
		})
	}

	return AssembleResult(searched, partials, failures, window)
}

// extractOne runs query → schema extraction → reconstruction → window filter
// for a single database handle.
func extractOne(handle DatabaseHandle, globalPath string, hasGlobal bool, cache *ResultCache, opts Options, window TimeWindow) (messages []ReconstructedMessage, err error) {
	// The never-throw boundary covers panics from unexpected store content.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction panic: %v", r)
		}
	}()

	if cached, ok := cache.Load(handle); ok {
		LogDebug("cache hit for %s", handle.Path)
		return FilterByWindow(cached, window, opts.LagBuffer), nil
	}

	db, err := OpenDatabase(handle.Path)
	if err != nil {
		return nil, NewQueryError(handle.Path, "open", err)
	}
	defer db.Close()

	ws := NewExecutor(db, handle.Path, opts.QueryTimeout)

	var global *Executor
	if hasGlobal {
		globalDB, err := OpenDatabase(globalPath)
		if err != nil {
			LogWarn("failed to open global store %s: %v", globalPath, err)
		} else {
			defer globalDB.Close()
			global = NewExecutor(globalDB, globalPath, opts.QueryTimeout)
		}
	}

	ext, err := ExtractRaw(ws, global)
	if err != nil {
		return nil, err
	}

	reconstructed := ReconstructMessages(ext)
	if storeErr := cache.Store(handle, reconstructed); storeErr != nil {
		LogDebug("failed to cache %s: %v", handle.Path, storeErr)
	}
	return FilterByWindow(reconstructed, window, opts.LagBuffer), nil
}
