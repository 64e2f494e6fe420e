package internal

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestCandidateRoots(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		want     []string
	}{
		{
			name:     "darwin",
			platform: Platform{OS: "darwin", Home: "/Users/dev"},
			want: []string{
				filepath.Join("/Users/dev", "Library", "Application Support", "Cursor", "User"),
			},
		},
		{
			name:     "linux",
			platform: Platform{OS: "linux", Home: "/home/dev"},
			want: []string{
				filepath.Join("/home/dev", ".config", "Cursor", "User"),
			},
		},
		{
			name:     "windows",
			platform: Platform{OS: "windows", AppData: `C:\Users\dev\AppData\Roaming`},
			want: []string{
				filepath.Join(`C:\Users\dev\AppData\Roaming`, "Cursor", "User"),
			},
		},
		{
			name:     "unknown platform yields empty list",
			platform: Platform{OS: "plan9", Home: "/home/dev"},
			want:     nil,
		},
		{
			name:     "override short-circuits detection",
			platform: Platform{OS: "darwin", Home: "/Users/dev", Override: "/custom/storage"},
			want:     []string{"/custom/storage"},
		},
		{
			name:     "override wins even on unknown platform",
			platform: Platform{OS: "plan9", Override: "/custom/storage"},
			want:     []string{"/custom/storage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CandidateRoots(tt.platform)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CandidateRoots() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCandidateRootsDeterministic(t *testing.T) {
	// Order must be stable across repeated calls for every supported
	// platform/WSL combination.
	platforms := []Platform{
		{OS: "darwin", Home: "/Users/dev"},
		{OS: "linux", Home: "/home/dev"},
		{OS: "linux", Home: "/home/dev", WSL: true},
		{OS: "windows", AppData: `C:\Users\dev\AppData\Roaming`},
	}

	for _, p := range platforms {
		first := CandidateRoots(p)
		for i := 0; i < 5; i++ {
			if got := CandidateRoots(p); !reflect.DeepEqual(got, first) {
				t.Errorf("CandidateRoots(%+v) not deterministic: %v vs %v", p, got, first)
			}
		}
	}
}

func TestStoragePathHelpers(t *testing.T) {
	root := "/data/Cursor/User"
	if got := WorkspaceStorageDir(root); got != filepath.Join(root, "workspaceStorage") {
		t.Errorf("WorkspaceStorageDir() = %v", got)
	}
	if got := GlobalStorageDB(root); got != filepath.Join(root, "globalStorage", "state.vscdb") {
		t.Errorf("GlobalStorageDB() = %v", got)
	}
}
