package internal

import (
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CommitWindow derives the extraction window from the repository at repoPath:
// the previous commit's timestamp through HEAD's. The first commit in a
// repository, and any git failure, fall back to a 24-hour lookback (merge
// commits are the invoking hook's concern; this function just reads the
// first-parent chain). It never returns an error: the window is always
// usable.
func CommitWindow(repoPath string) TimeWindow {
	current, err := commitTime(repoPath, "HEAD")
	if err != nil {
		LogDebug("failed to read HEAD commit time in %s: %v", repoPath, err)
		return ComputeWindow(time.Time{}, time.Time{})
	}

	prev, err := commitTime(repoPath, "HEAD~1")
	if err != nil {
		// First commit, or shallow clone boundary.
		LogDebug("no previous commit in %s: %v", repoPath, err)
		return ComputeWindow(time.Time{}, current)
	}

	return ComputeWindow(prev, current)
}

// commitTime reads one commit's committer timestamp.
func commitTime(repoPath, rev string) (time.Time, error) {
	out, err := exec.Command("git", "-C", repoPath, "log", "-1", "--format=%ct", rev).Output()
	if err != nil {
		return time.Time{}, err
	}

	secs, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}
