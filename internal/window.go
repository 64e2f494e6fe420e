package internal

import "time"

// FallbackLookback is the window used when no previous commit boundary is
// available: the first commit in a repository, or any git-access failure.
const FallbackLookback = 24 * time.Hour

// ComputeWindow derives the inclusive extraction window from commit boundary
// timestamps. The normal case spans previous commit through current commit.
// A zero prev (first commit, or git unavailable) produces a fixed lookback
// from current. Commit-bounded windows are preferred over fixed clock windows
// because they align the extracted conversation with the unit of work being
// documented.
func ComputeWindow(prev, current time.Time) TimeWindow {
	if current.IsZero() {
		current = time.Now()
	}
	if prev.IsZero() {
		return TimeWindow{
			Start:    current.Add(-FallbackLookback),
			End:      current,
			Strategy: "fallback-24h",
		}
	}
	return TimeWindow{
		Start:    prev,
		End:      current,
		Strategy: "commit-window",
	}
}

// FilterByWindow restricts messages to the window, extended by lagBuffer on
// the upper bound. Message content can lag session-header updates in the
// source store, so callers may widen the window for historical sessions;
// zero keeps the strict boundary. An inverted window yields an empty set
// rather than an error; untimestamped messages pass through per
// TimeWindow.Contains.
func FilterByWindow(messages []ReconstructedMessage, window TimeWindow, lagBuffer time.Duration) []ReconstructedMessage {
	if window.Inverted() {
		return nil
	}
	if lagBuffer > 0 {
		window.End = window.End.Add(lagBuffer)
	}

	filtered := make([]ReconstructedMessage, 0, len(messages))
	for _, msg := range messages {
		if window.Contains(msg.Timestamp) {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}
