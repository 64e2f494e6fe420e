package internal

// PartialResult is one database's contribution before assembly.
type PartialResult struct {
	Handle   DatabaseHandle
	Messages []ReconstructedMessage
	Err      error // extraction failure; the handle contributed nothing
}

// AssembleResult merges per-database partial results into one workspace-level
// ChatHistoryResult. Messages appearing in more than one database (the
// rotation case) are deduplicated on (session_id, message_id); the first
// occurrence wins. A single database's failure is recorded in the ledger and
// never suppresses the others' results. The output is always well-formed,
// with Messages possibly empty.
func AssembleResult(searchedPaths []string, partials []PartialResult, priorFailures []DatabaseFailure, window TimeWindow) *ChatHistoryResult {
	result := &ChatHistoryResult{
		WorkspaceInfo: WorkspaceInfo{
			SearchedPaths:     append([]string{}, searchedPaths...),
			SelectedDatabases: []string{},
			FailedDatabases:   append([]DatabaseFailure{}, priorFailures...),
			TimeWindow:        window,
		},
		Messages: []ReconstructedMessage{},
	}

	seen := make(map[string]bool)
	for _, partial := range partials {
		if partial.Err != nil {
			LogWarn("extraction failed for %s: %v", partial.Handle.Path, partial.Err)
			result.WorkspaceInfo.FailedDatabases = append(result.WorkspaceInfo.FailedDatabases, DatabaseFailure{
				Path:     partial.Handle.Path,
				Category: failureCategory(partial.Err),
				Detail:   partial.Err.Error(),
			})
			continue
		}

		result.WorkspaceInfo.SelectedDatabases = append(result.WorkspaceInfo.SelectedDatabases, partial.Handle.Path)
		for _, msg := range partial.Messages {
			key := msg.SessionID + ":" + msg.MessageID
			if seen[key] {
				continue
			}
			seen[key] = true
			result.Messages = append(result.Messages, msg)
		}
	}

	SortMessages(result.Messages)
	result.WorkspaceInfo.TotalMessages = len(result.Messages)
	return result
}
