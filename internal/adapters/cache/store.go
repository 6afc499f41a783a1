package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// document is the on-disk form of the cache: one JSON object keyed by source path.
type document map[string]*domain.CacheEntry

// Load replaces the in-memory entries with the persisted document. A missing
// file is an empty cache. On any error the cache is left empty.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*domain.CacheEntry)
	c.memory = 0

	data, err := afero.ReadFile(c.fs, c.limits.File)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(domain.ErrCacheReadFailed, err.Error()), "path", c.limits.File)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheUnmarshalFailed, err.Error()), "path", c.limits.File)
	}

	for path, entry := range doc {
		if entry == nil || entry.OutputPath == "" {
			continue
		}
		c.entries[path] = entry
		c.memory += entry.Size
	}

	// A document written under larger limits is trimmed on load.
	c.evictIfNeededLocked(0)
	return nil
}

// Save writes the cache through a temporary file and a rename so a crash
// never leaves a truncated document behind. Concurrent saves are serialized
// and each writes its own temporary file.
func (c *Cache) Save() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	data, err := json.MarshalIndent(document(c.entries), "", "  ")
	c.mu.Unlock()
	if err != nil {
		return zerr.Wrap(domain.ErrCacheMarshalFailed, err.Error())
	}

	dir := filepath.Dir(c.limits.File)
	if err := c.fs.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", dir)
	}

	f, err := afero.TempFile(c.fs, dir, filepath.Base(c.limits.File)+".*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", dir)
	}
	tmp := f.Name()
	_, werr := f.Write(data)
	if err := errors.Join(werr, f.Close(), c.fs.Chmod(tmp, domain.FilePerm)); err != nil {
		_ = c.fs.Remove(tmp)
		return zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", tmp)
	}
	if err := c.fs.Rename(tmp, c.limits.File); err != nil {
		_ = c.fs.Remove(tmp)
		return zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", c.limits.File)
	}

	return nil
}

// Clear empties the cache and deletes the persisted document.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[string]*domain.CacheEntry)
	c.memory = 0
	c.mu.Unlock()

	if err := c.fs.Remove(c.limits.File); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, err.Error()), "path", c.limits.File)
	}
	return nil
}
