package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheVersion = "1"

// ResultCache stores per-database reconstructed messages keyed by database
// path and modification time, so repeated hook invocations against an
// unchanged store skip the query and reconstruction work. Cached messages
// are pre-filter: the time window is applied after loading.
type ResultCache struct {
	dir string
}

// NewResultCache creates a cache rooted at dir.
func NewResultCache(dir string) *ResultCache {
	return &ResultCache{dir: dir}
}

// DefaultCacheDir returns the per-user cache location.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "commit-story")
}

type cacheIndex struct {
	Version string       `yaml:"version"`
	Entries []cacheEntry `yaml:"entries"`
}

type cacheEntry struct {
	DBPath    string    `yaml:"db_path"`
	DBModTime time.Time `yaml:"db_mod_time"`
	File      string    `yaml:"file"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// cachedMessage mirrors ReconstructedMessage including the sort sequence
// fields, which the public JSON shape deliberately omits.
type cachedMessage struct {
	SessionID  string    `json:"session_id"`
	MessageID  string    `json:"message_id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	SessionSeq int       `json:"session_seq"`
	RefSeq     int       `json:"ref_seq"`
}

// Load returns the cached messages for a database handle, or ok=false when
// the cache is absent, stale, or unreadable. Cache failures are never
// surfaced: the caller just re-extracts.
func (c *ResultCache) Load(handle DatabaseHandle) ([]ReconstructedMessage, bool) {
	if c == nil || c.dir == "" {
		return nil, false
	}

	index, err := c.loadIndex()
	if err != nil {
		return nil, false
	}

	for _, entry := range index.Entries {
		if entry.DBPath != handle.Path {
			continue
		}
		if !entry.DBModTime.Equal(handle.LastModified) {
			return nil, false
		}

		data, err := os.ReadFile(filepath.Join(c.dir, entry.File))
		if err != nil {
			return nil, false
		}
		var cached []cachedMessage
		if err := json.Unmarshal(data, &cached); err != nil {
			return nil, false
		}

		messages := make([]ReconstructedMessage, 0, len(cached))
		for _, m := range cached {
			messages = append(messages, ReconstructedMessage{
				SessionID:  m.SessionID,
				MessageID:  m.MessageID,
				Role:       m.Role,
				Content:    m.Content,
				Timestamp:  m.Timestamp,
				SessionSeq: m.SessionSeq,
				RefSeq:     m.RefSeq,
			})
		}
		return messages, true
	}
	return nil, false
}

// Store writes one database's reconstructed messages and updates the index.
func (c *ResultCache) Store(handle DatabaseHandle, messages []ReconstructedMessage) error {
	if c == nil || c.dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	cached := make([]cachedMessage, 0, len(messages))
	for _, m := range messages {
		cached = append(cached, cachedMessage{
			SessionID:  m.SessionID,
			MessageID:  m.MessageID,
			Role:       m.Role,
			Content:    m.Content,
			Timestamp:  m.Timestamp,
			SessionSeq: m.SessionSeq,
			RefSeq:     m.RefSeq,
		})
	}

	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cached messages: %w", err)
	}

	file := fmt.Sprintf("messages_%s.json", pathDigest(handle.Path))
	if err := os.WriteFile(filepath.Join(c.dir, file), data, 0o644); err != nil {
		return err
	}

	index, err := c.loadIndex()
	if err != nil {
		index = &cacheIndex{Version: cacheVersion}
	}

	entry := cacheEntry{
		DBPath:    handle.Path,
		DBModTime: handle.LastModified,
		File:      file,
		UpdatedAt: time.Now(),
	}
	replaced := false
	for i := range index.Entries {
		if index.Entries[i].DBPath == handle.Path {
			index.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		index.Entries = append(index.Entries, entry)
	}

	return c.saveIndex(index)
}

// Clear removes the cache directory contents.
func (c *ResultCache) Clear() error {
	if c == nil || c.dir == "" {
		return nil
	}
	index, err := c.loadIndex()
	if err == nil {
		for _, entry := range index.Entries {
			_ = os.Remove(filepath.Join(c.dir, entry.File))
		}
	}
	if err := os.Remove(c.indexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *ResultCache) indexPath() string {
	return filepath.Join(c.dir, "index.yaml")
}

func (c *ResultCache) loadIndex() (*cacheIndex, error) {
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		return nil, err
	}

	var index cacheIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache index: %w", err)
	}
	if index.Version != cacheVersion {
		return nil, fmt.Errorf("cache version mismatch: %s", index.Version)
	}
	return &index, nil
}

func (c *ResultCache) saveIndex(index *cacheIndex) error {
	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal cache index: %w", err)
	}
	return os.WriteFile(c.indexPath(), data, 0o644)
}

func pathDigest(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:8])
}
