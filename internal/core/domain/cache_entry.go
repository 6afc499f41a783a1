package domain

// Fingerprint is the composite cache key of a source file.
// The four axes are kept apart so a mismatch can be attributed.
type Fingerprint struct {
	ContentHash    string `json:"contentHash"`
	ConfigHash     string `json:"configHash"`
	EnvHash        string `json:"envHash"`
	DependencyHash string `json:"dependencyHash"`
}

// Fingerprint axis names, used in invalidation reasons.
const (
	AxisContent    = "content"
	AxisConfig     = "config"
	AxisEnv        = "env"
	AxisDependency = "dependency"
)

// Diff returns the names of the axes on which f and other disagree.
func (f Fingerprint) Diff(other Fingerprint) []string {
	var axes []string
	if f.ContentHash != other.ContentHash {
		axes = append(axes, AxisContent)
	}
	if f.ConfigHash != other.ConfigHash {
		axes = append(axes, AxisConfig)
	}
	if f.EnvHash != other.EnvHash {
		axes = append(axes, AxisEnv)
	}
	if f.DependencyHash != other.DependencyHash {
		axes = append(axes, AxisDependency)
	}
	return axes
}

// CacheEntry is the cached build record of one source file.
// Mtime and LastUsed are Unix nanoseconds.
type CacheEntry struct {
	Fingerprint

	Mtime      int64  `json:"mtime"`
	OutputPath string `json:"outputPath"`
	LastUsed   int64  `json:"lastUsed"`
	Size       int64  `json:"size"`
}
