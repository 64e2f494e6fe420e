package internal

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// MatchWorkspaces finds the workspace directories under the candidate roots
// that correspond to projectPath. All exact matches are returned (one project
// can have several directories due to rotation). When no exact match exists,
// the most-recently-modified workspace containing a storage file is returned
// on the assumption that a plausible recent workspace beats none at all.
func MatchWorkspaces(roots []string, projectPath string) []WorkspaceDescriptor {
	target := normalizeProjectPath(projectPath)

	var exact []WorkspaceDescriptor
	var newest *WorkspaceDescriptor
	var newestMod int64

	for _, root := range roots {
		storageDir := WorkspaceStorageDir(root)
		entries, err := os.ReadDir(storageDir)
		if err != nil {
			// Root doesn't exist on this machine; not an error.
			LogDebug("no workspaceStorage under %s: %v", root, err)
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			desc := WorkspaceDescriptor{
				RootPath:    root,
				WorkspaceID: entry.Name(),
			}
			wsDir := filepath.Join(storageDir, entry.Name())

			// A corrupt or missing workspace.json is skipped for exact
			// matching but the directory can still win the recency fallback.
			if folder, err := readWorkspaceFolder(wsDir); err == nil {
				desc.ProjectPathHint = folder
				if pathsMatch(normalizeProjectPath(folder), target) {
					exact = append(exact, desc)
					continue
				}
			} else {
				LogDebug("skipping workspace.json in %s: %v", wsDir, err)
			}

			dbPath := filepath.Join(wsDir, StorageFileName)
			if info, err := os.Stat(dbPath); err == nil {
				if mod := info.ModTime().UnixNano(); newest == nil || mod > newestMod {
					d := desc
					newest = &d
					newestMod = mod
				}
			}
		}
	}

	if len(exact) > 0 {
		return exact
	}
	if newest != nil {
		LogDebug("no exact workspace match for %s, falling back to most recent: %s", projectPath, newest.WorkspaceID)
		return []WorkspaceDescriptor{*newest}
	}
	return nil
}

// StorageDBPath returns the workspace database path for a descriptor.
func (d WorkspaceDescriptor) StorageDBPath() string {
	return filepath.Join(WorkspaceStorageDir(d.RootPath), d.WorkspaceID, StorageFileName)
}

// readWorkspaceFolder reads the folder mapping from a workspace.json file.
func readWorkspaceFolder(wsDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(wsDir, "workspace.json"))
	if err != nil {
		return "", err
	}

	var meta struct {
		Folder string `json:"folder"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	return meta.Folder, nil
}

// normalizeProjectPath lowercases, strips a file:// scheme, decodes
// percent-escapes and removes trailing separators so stored URIs compare
// against plain filesystem paths.
func normalizeProjectPath(p string) string {
	if strings.HasPrefix(p, "file://") {
		if u, err := url.Parse(p); err == nil {
			p = u.Path
			// Windows drive paths come through as /C:/...
			if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
				p = p[1:]
			}
		} else {
			p = strings.TrimPrefix(p, "file://")
		}
	}
	p = filepath.ToSlash(p)
	p = strings.TrimRight(p, "/")
	return strings.ToLower(p)
}

// pathsMatch reports whether a recorded folder corresponds to the query
// path: equality, or containment at a path boundary (the stored mapping may
// point at a parent folder of the project, or vice versa).
func pathsMatch(recorded, target string) bool {
	if recorded == "" || target == "" {
		return false
	}
	if recorded == target {
		return true
	}
	return strings.HasPrefix(target, recorded+"/") || strings.HasPrefix(recorded, target+"/")
}
