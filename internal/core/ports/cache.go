package ports

// CompilationCache is the persisted map from source path to built artifact.
// Implementations are safe for concurrent use.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type CompilationCache interface {
	// IsValid recomputes the fingerprint of path and reports whether its entry
	// is still usable. A stale entry is removed.
	IsValid(path string) bool

	// Set records a successful build of path. Failures are swallowed.
	Set(path, outputPath string)

	// Delete removes the entry for path and its outgoing dependency edges.
	Delete(path string)

	// RegisterDependencies replaces the dependency set of file.
	RegisterDependencies(file string, deps []string)

	// InvalidateCascade removes file and every transitive dependent, and
	// returns the dependents in sorted order.
	InvalidateCascade(file string) []string

	// InvalidateAll drops every entry.
	InvalidateAll()

	// Relieve evicts up to n least-recently-used entries when the process heap
	// is above its high-water mark, and returns how many were evicted.
	Relieve(n int) int

	// Len returns the number of entries.
	Len() int

	// Load reads the persisted document. Errors leave the cache empty.
	Load() error

	// Save persists the cache.
	Save() error

	// Clear empties the cache and deletes the persisted document.
	Clear() error
}
