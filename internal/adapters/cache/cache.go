// Package cache implements the persisted compilation cache.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.CompilationCache = (*Cache)(nil)

const (
	// fillRatio is the fraction of each limit at which eviction starts.
	fillRatio = 0.8
	// heapFloor is the entry count below which the heap valve stays shut.
	heapFloor = 10
	// heapBatch is how many entries the heap valve evicts on an insert.
	heapBatch = 5
)

// NowFunc returns the current time.
type NowFunc func() time.Time

// Cache implements ports.CompilationCache.
//
// Entries, memory accounting and the dependency graph share one mutex.
// Hashing and stat calls run outside it. Saves are serialized by saveMu.
type Cache struct {
	mu      sync.Mutex
	saveMu  sync.Mutex
	entries map[string]*domain.CacheEntry
	memory  int64
	graph   *domain.DependencyGraph

	limits  domain.CacheConfig
	fp      ports.Fingerprinter
	logger  ports.Logger
	fs      afero.Fs
	probe   ports.MemoryProbe
	metrics ports.MetricsRecorder
	now     NowFunc
}

// Option configures a Cache.
type Option func(*Cache)

// WithFs sets the filesystem used for stat calls and persistence.
func WithFs(fs afero.Fs) Option {
	return func(c *Cache) {
		c.fs = fs
	}
}

// WithMemoryProbe enables the heap safety valve.
func WithMemoryProbe(probe ports.MemoryProbe) Option {
	return func(c *Cache) {
		c.probe = probe
	}
}

// WithMetrics sets the recorder for lookups and evictions.
func WithMetrics(recorder ports.MetricsRecorder) Option {
	return func(c *Cache) {
		c.metrics = recorder
	}
}

// WithNowFunc sets the clock used for LRU ranking.
func WithNowFunc(now NowFunc) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates an empty cache bounded by limits.
func New(limits domain.CacheConfig, fp ports.Fingerprinter, logger ports.Logger, options ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*domain.CacheEntry),
		graph:   domain.NewDependencyGraph(),
		limits:  limits,
		fp:      fp,
		logger:  logger,
		fs:      afero.NewOsFs(),
		metrics: metrics.NoopRecorder{},
		now:     time.Now,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// IsValid reports whether the entry of path still matches the file, the
// configuration, the environment and the dependency state, and whether its
// artifact still exists. A mismatching entry is removed.
func (c *Cache) IsValid(path string) bool {
	c.mu.Lock()
	entry, ok := c.entries[path]
	var snapshot domain.CacheEntry
	if ok {
		snapshot = *entry
	}
	c.mu.Unlock()

	if !ok {
		c.metrics.IncCacheLookup(false)
		return false
	}

	if reason := c.staleReason(path, &snapshot); reason != "" {
		c.mu.Lock()
		// A concurrent Set may have replaced the entry meanwhile.
		if c.entries[path] == entry {
			c.removeLocked(path)
		}
		c.mu.Unlock()

		c.logger.Debug(fmt.Sprintf("cache entry for %s is stale: %s", path, reason))
		c.metrics.IncCacheEviction(metrics.EvictionStale)
		c.metrics.IncCacheLookup(false)
		return false
	}

	c.mu.Lock()
	if current, ok := c.entries[path]; ok {
		current.LastUsed = c.now().UnixNano()
	}
	c.mu.Unlock()

	c.metrics.IncCacheLookup(true)
	return true
}

// staleReason returns why entry no longer describes path, or "" when it does.
func (c *Cache) staleReason(path string, entry *domain.CacheEntry) string {
	if axes := entry.Diff(c.fp.Fingerprint(path)); len(axes) > 0 {
		return strings.Join(axes, ",") + " changed"
	}

	if _, err := c.fs.Stat(entry.OutputPath); err != nil {
		return "artifact missing"
	}

	info, err := c.fs.Stat(path)
	if err != nil {
		return "source unreadable"
	}
	if info.ModTime().UnixNano() > entry.Mtime {
		return "source modified"
	}

	return ""
}

// Get returns a copy of the entry for path without validating it.
func (c *Cache) Get(path string) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		return domain.CacheEntry{}, false
	}
	return *entry, true
}

// Set records a successful build of path. A file that cannot be stat'ed is
// simply not cached.
func (c *Cache) Set(path, outputPath string) {
	info, err := c.fs.Stat(path)
	if err != nil {
		c.logger.Debug(fmt.Sprintf("not caching %s: %v", path, err))
		return
	}

	entry := &domain.CacheEntry{
		Fingerprint: c.fp.Fingerprint(path),
		Mtime:       info.ModTime().UnixNano(),
		OutputPath:  outputPath,
		LastUsed:    c.now().UnixNano(),
		Size:        info.Size(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(path)
	c.evictIfNeededLocked(entry.Size)
	c.entries[path] = entry
	c.memory += entry.Size
}

// evictIfNeededLocked makes room for an entry of newSize bytes.
func (c *Cache) evictIfNeededLocked(newSize int64) {
	maxEntries := int(float64(c.limits.MaxEntries) * fillRatio)
	maxMemory := int64(float64(c.limits.MaxMemoryBytes) * fillRatio)

	for len(c.entries) > 0 && (len(c.entries) >= maxEntries || c.memory+newSize > maxMemory) {
		c.evictLRULocked(metrics.EvictionLRU)
	}

	if c.heapAboveHighWater() && len(c.entries) > heapFloor {
		for range heapBatch {
			c.evictLRULocked(metrics.EvictionHeap)
		}
	}
}

// evictLRULocked removes the entry with the smallest LastUsed. Ties go to the
// lexically smallest path so eviction order is deterministic.
func (c *Cache) evictLRULocked(reason string) bool {
	var victim string
	var oldest int64
	found := false

	for path, entry := range c.entries {
		if !found || entry.LastUsed < oldest || (entry.LastUsed == oldest && path < victim) {
			victim, oldest, found = path, entry.LastUsed, true
		}
	}

	if !found {
		return false
	}

	c.removeLocked(victim)
	c.metrics.IncCacheEviction(reason)
	return true
}

func (c *Cache) removeLocked(path string) {
	if entry, ok := c.entries[path]; ok {
		c.memory -= entry.Size
		delete(c.entries, path)
	}
}

func (c *Cache) heapAboveHighWater() bool {
	if c.probe == nil || c.limits.HeapHighWaterBytes <= 0 {
		return false
	}
	return c.probe.HeapAlloc() > uint64(c.limits.HeapHighWaterBytes)
}

// Delete removes the entry for path and its outgoing dependency edges.
func (c *Cache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(path)
	c.graph.Remove(path)
}

// RegisterDependencies replaces the dependency set of file.
func (c *Cache) RegisterDependencies(file string, deps []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.graph.Register(file, deps)
}

// InvalidateCascade removes file and every file that transitively depends on
// it, and returns the dependents.
func (c *Cache) InvalidateCascade(file string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	dependents := c.graph.TransitiveDependents(file)
	c.removeLocked(file)
	for _, dep := range dependents {
		c.removeLocked(dep)
	}
	return dependents
}

// InvalidateAll drops every entry and makes the fingerprinter re-read the
// project-wide state. The dependency graph survives.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*domain.CacheEntry)
	c.memory = 0
	c.mu.Unlock()

	c.fp.Reset()
}

// Relieve evicts up to n entries when the process heap is above the
// high-water mark.
func (c *Cache) Relieve(n int) int {
	if !c.heapAboveHighWater() {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for evicted < n && c.evictLRULocked(metrics.EvictionHeap) {
		evicted++
	}
	if evicted > 0 {
		c.logger.Debug(fmt.Sprintf("heap above high-water mark, evicted %d cache entries", evicted))
	}
	return evicted
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// MemoryUsage returns the summed source size of all entries.
func (c *Cache) MemoryUsage() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory
}
