package ports

import "go.trai.ch/kiln/internal/core/domain"

// Fingerprinter computes the composite cache key of a source file.
//
//go:generate mockgen -source=fingerprint.go -destination=mocks/mock_fingerprint.go -package=mocks
type Fingerprinter interface {
	// Fingerprint never fails. Unreadable inputs fold into the hashes so the
	// result is a guaranteed mismatch rather than an error.
	Fingerprint(path string) domain.Fingerprint

	// Reset drops memoized project-wide hashes so the next call re-reads the
	// environment and the dependency state.
	Reset()
}
