// Package build holds version metadata set at link time.
package build

// Set via -ldflags "-X go.trai.ch/kiln/internal/build.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
