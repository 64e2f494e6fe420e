package internal

import (
	"os"
	"path/filepath"
	"strings"
)

// StorageOverrideEnv replaces the entire candidate list when set. It takes
// precedence over all automatic detection; the --storage flag wins over it.
const StorageOverrideEnv = "CURSOR_STORAGE_PATH"

// Platform describes the host environment for root detection. Kept as an
// explicit input (rather than read from runtime at point of use) so candidate
// ordering is independently testable per OS/WSL combination.
type Platform struct {
	OS       string // runtime.GOOS value: "darwin", "linux", "windows"
	Home     string
	AppData  string // %APPDATA% on windows, ignored elsewhere
	WSL      bool
	Override string // explicit storage root; short-circuits everything else
}

// CurrentPlatform captures the running host.
func CurrentPlatform(goos string, override string) Platform {
	home, _ := os.UserHomeDir()
	if override == "" {
		override = os.Getenv(StorageOverrideEnv)
	}
	return Platform{
		OS:       goos,
		Home:     home,
		AppData:  os.Getenv("APPDATA"),
		WSL:      detectWSL(),
		Override: override,
	}
}

// detectWSL probes /proc/version for the WSL marker.
func detectWSL() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}

// CandidateRoots returns candidate storage roots ordered highest-confidence
// first. Each root is a Cursor "User" directory expected to contain both
// workspaceStorage/ and globalStorage/. An unknown platform yields an empty
// list, which callers treat as "no workspace found", not an error.
func CandidateRoots(p Platform) []string {
	if p.Override != "" {
		return []string{p.Override}
	}

	var roots []string
	switch p.OS {
	case "darwin":
		if p.Home != "" {
			roots = append(roots, filepath.Join(p.Home, "Library", "Application Support", "Cursor", "User"))
		}
	case "linux":
		// Inside WSL the databases usually live on the Windows side; probe
		// the mounted AppData path first, then the native Linux path.
		if p.WSL {
			roots = append(roots, wslWindowsRoots()...)
		}
		if p.Home != "" {
			roots = append(roots, filepath.Join(p.Home, ".config", "Cursor", "User"))
		}
	case "windows":
		if p.AppData != "" {
			roots = append(roots, filepath.Join(p.AppData, "Cursor", "User"))
		}
	}
	return roots
}

// WorkspaceStorageDir returns the per-workspace storage directory under root.
func WorkspaceStorageDir(root string) string {
	return filepath.Join(root, "workspaceStorage")
}

// GlobalStorageDB returns the global store database path under root. Session
// message records live only in the global store, so it accompanies every
// candidate root.
func GlobalStorageDB(root string) string {
	return filepath.Join(root, "globalStorage", StorageFileName)
}

// wslWindowsRoots translates the Windows AppData convention through the
// /mnt/c mount. Without knowing the Windows username we enumerate
// /mnt/c/Users; one entry per user that has a Cursor profile directory.
func wslWindowsRoots() []string {
	const usersDir = "/mnt/c/Users"
	entries, err := os.ReadDir(usersDir)
	if err != nil {
		return nil
	}

	var roots []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "Public" || name == "Default" || name == "Default User" || name == "All Users" {
			continue
		}
		root := filepath.Join(usersDir, name, "AppData", "Roaming", "Cursor", "User")
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			roots = append(roots, root)
		}
	}
	return roots
}
