package cache

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores positioned graphs on disk, one file per layout key, so
// repeated CLI invocations for the same topology snapshot skip the layout
// computation entirely. Beyond the Cache interface it can enumerate and
// prune its entries, which backs the `cache` CLI commands.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// fileEntry is the on-disk representation of one cached layout. The key is
// stored alongside the payload so entries can be enumerated without
// reversing the path hash.
type fileEntry struct {
	Key       string          `json:"key"`
	StoredAt  time.Time       `json:"storedAt"`
	ExpiresAt time.Time       `json:"expiresAt,omitempty"`
	Graph     json.RawMessage `json:"graph"`
}

func (e *fileEntry) expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Get retrieves a positioned graph. An expired entry is removed and
// reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, path, err := c.read(key)
	if err != nil {
		return nil, false, err
	}
	if entry == nil {
		return nil, false, nil
	}
	if entry.expired() {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Graph, true, nil
}

// Set stores a positioned graph. The payload must be JSON (the engine
// always stores marshaled graphs), which keeps the entry files inspectable.
// A ttl of zero means the entry never expires on its own.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{
		Key:      key,
		StoredAt: time.Now(),
		Graph:    json.RawMessage(data),
	}
	if ttl > 0 {
		entry.ExpiresAt = entry.StoredAt.Add(ttl)
	}

	blob, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0644)
}

// Delete removes an entry. Deleting a missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing; entries persist across processes on purpose.
func (c *FileCache) Close() error { return nil }

// EntryInfo describes one stored layout for the cache CLI.
type EntryInfo struct {
	Key       string
	Size      int64
	StoredAt  time.Time
	ExpiresAt time.Time
	Expired   bool
}

// Entries enumerates the stored layouts, including expired ones not yet
// pruned. Files that do not parse as cache entries are skipped.
func (c *FileCache) Entries(ctx context.Context) ([]EntryInfo, error) {
	var out []EntryInfo
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		blob, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var entry fileEntry
		if err := json.Unmarshal(blob, &entry); err != nil || entry.Key == "" {
			return nil
		}
		out = append(out, EntryInfo{
			Key:       entry.Key,
			Size:      int64(len(blob)),
			StoredAt:  entry.StoredAt,
			ExpiresAt: entry.ExpiresAt,
			Expired:   entry.expired(),
		})
		return nil
	})
	return out, err
}

// Prune removes expired entries and returns how many were deleted.
func (c *FileCache) Prune(ctx context.Context) (int, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if !e.Expired {
			continue
		}
		if err := c.Delete(ctx, e.Key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// read loads and decodes the entry for a key. Missing and malformed files
// both come back as a nil entry; malformed files are removed.
func (c *FileCache) read(key string) (*fileEntry, string, error) {
	path := c.path(key)
	blob, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, path, nil
	}
	if err != nil {
		return nil, path, err
	}
	var entry fileEntry
	if err := json.Unmarshal(blob, &entry); err != nil {
		_ = os.Remove(path)
		return nil, path, nil
	}
	return &entry, path, nil
}

// path shards entries by the first byte of the key hash so one directory
// never accumulates every layout.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
