package domain

import (
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// Default configuration values.
const (
	DefaultSourceRoot       = "src"
	DefaultDestRoot         = "dist"
	DefaultMaxEntries       = 1000
	DefaultMaxMemoryMB      = 100
	DefaultHeapHighWaterMB  = 200
	DefaultHardCap          = 16
	DefaultWorkers          = 2
	DefaultDebounce         = 100 * time.Millisecond
	DefaultFileTimeout      = 60 * time.Second
	DefaultWorkerTimeout    = 30 * time.Second
	DefaultIdleTimeout      = 30 * time.Second
	DefaultDependencySample = 10
	DefaultManifest         = "package.json"
	DefaultLockfile         = "package-lock.json"
	DefaultDependencyRoot   = "node_modules"
	BuildExtension          = ".js"
)

// LintConfig toggles the lint runners.
type LintConfig struct {
	Enabled bool
	Config  string
}

// TypeCheckConfig configures the type-check worker pool.
type TypeCheckConfig struct {
	Config        string
	Command       []string
	Workers       int
	Timeout       time.Duration
	IdleTimeout   time.Duration
	NoiseCodes    []int
	NoisePatterns []string
}

// StageCommands holds the command lines of the external stage collaborators.
// An empty command means the stage is not configured.
type StageCommands struct {
	Template    []string
	Typed       []string
	Standardize []string
	Minify      []string
	CSS         []string
	Lint        []string
}

// CacheConfig bounds the compilation cache.
type CacheConfig struct {
	MaxEntries         int
	MaxMemoryBytes     int64
	HeapHighWaterBytes int64
	File               string
}

// ConcurrencyConfig bounds batch parallelism.
// Max is an operator override; zero means computed.
type ConcurrencyConfig struct {
	Max     int
	HardCap int
}

// DependencyConfig names the files that make up the project's dependency state.
type DependencyConfig struct {
	Manifest string
	Lockfile string
	Root     string
	Sample   int
}

// Config is the resolved project configuration. All paths are absolute.
type Config struct {
	Root         string
	SourceRoot   string
	DestRoot     string
	Production   bool
	Verbose      bool
	Lint         LintConfig
	TypeCheck    TypeCheckConfig
	TargetLibs   []string
	Aliases      map[string]string
	Extensions   map[string]string
	Stages       StageCommands
	Cache        CacheConfig
	Concurrency  ConcurrencyConfig
	Dependencies DependencyConfig
	Debounce     time.Duration
	Timeout      time.Duration
	MetricsAddr  string
}

// DefaultExtensions maps source extensions to the build extension.
func DefaultExtensions() map[string]string {
	return map[string]string{
		".vue": BuildExtension,
		".ts":  BuildExtension,
		".tsx": BuildExtension,
		".js":  BuildExtension,
	}
}

// DefaultConfig returns the configuration used for a project rooted at root
// when kiln.yaml sets nothing.
func DefaultConfig(root string) *Config {
	return &Config{
		Root:       root,
		SourceRoot: filepath.Join(root, DefaultSourceRoot),
		DestRoot:   filepath.Join(root, DefaultDestRoot),
		TypeCheck: TypeCheckConfig{
			Workers:     DefaultWorkers,
			Timeout:     DefaultWorkerTimeout,
			IdleTimeout: DefaultIdleTimeout,
		},
		Aliases:    map[string]string{},
		Extensions: DefaultExtensions(),
		Cache: CacheConfig{
			MaxEntries:         DefaultMaxEntries,
			MaxMemoryBytes:     DefaultMaxMemoryMB << 20,
			HeapHighWaterBytes: DefaultHeapHighWaterMB << 20,
			File:               DefaultCachePath(root),
		},
		Concurrency: ConcurrencyConfig{HardCap: DefaultHardCap},
		Dependencies: DependencyConfig{
			Manifest: filepath.Join(root, DefaultManifest),
			Lockfile: filepath.Join(root, DefaultLockfile),
			Root:     filepath.Join(root, DefaultDependencyRoot),
			Sample:   DefaultDependencySample,
		},
		Debounce: DefaultDebounce,
		Timeout:  DefaultFileTimeout,
	}
}

// IsSource reports whether path has a mapped source extension.
func (c *Config) IsSource(path string) bool {
	_, ok := c.Extensions[filepath.Ext(path)]
	return ok
}

// IsDependencyState reports whether path is the manifest, the lockfile,
// or lives under the dependency root.
func (c *Config) IsDependencyState(path string) bool {
	if path == c.Dependencies.Manifest || path == c.Dependencies.Lockfile {
		return true
	}
	return within(c.Dependencies.Root, path)
}

// OutputPathFor maps a source file to its artifact location: the source root
// prefix is replaced by the destination root and the extension is remapped.
func (c *Config) OutputPathFor(src string) (string, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "cannot resolve source path"), "path", src)
	}

	rel, err := filepath.Rel(c.SourceRoot, abs)
	if err != nil || !within(c.SourceRoot, abs) || rel == "." {
		return "", zerr.With(zerr.Wrap(ErrPathOutsideSourceRoot, "cannot map output path"), "path", abs)
	}

	ext := filepath.Ext(rel)
	target, ok := c.Extensions[ext]
	if !ok {
		return "", zerr.With(zerr.Wrap(ErrUnsupportedExtension, "cannot map output path"), "path", abs)
	}

	return filepath.Join(c.DestRoot, strings.TrimSuffix(rel, ext)+target), nil
}

func within(dir, path string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
