// Package fingerprint computes the four-axis cache key of source files.
package fingerprint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.Fingerprinter = (*Engine)(nil)

// EnvAllowList is the fixed set of variables that affect build output.
// Nothing outside it ever reaches the env hash.
var EnvAllowList = []string{
	"KILN_ALIASES",
	"KILN_DEST_ROOT",
	"KILN_LINT",
	"KILN_LINT_CONFIG",
	"KILN_PRODUCTION",
	"KILN_SOURCE_ROOT",
	"KILN_TSCONFIG",
	"KILN_VERBOSE",
	"NODE_ENV",
}

// LookupEnvFunc reads one environment variable.
type LookupEnvFunc func(key string) (string, bool)

// NowFunc returns the current time.
type NowFunc func() time.Time

// Engine implements ports.Fingerprinter.
//
// The config hash is fixed at construction. The env and dependency hashes
// are project-wide and memoized until Reset.
type Engine struct {
	fs        afero.Fs
	cfg       *domain.Config
	lookupEnv LookupEnvFunc
	now       NowFunc

	configHash string

	mu      sync.Mutex
	envHash string
	depHash string
}

// Option configures an Engine.
type Option func(*Engine)

// WithFs sets the filesystem the engine reads from.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithLookupEnv sets the environment accessor.
func WithLookupEnv(fn LookupEnvFunc) Option {
	return func(e *Engine) {
		e.lookupEnv = fn
	}
}

// WithNowFunc sets the clock used for unreadable-file fallbacks.
func WithNowFunc(fn NowFunc) Option {
	return func(e *Engine) {
		e.now = fn
	}
}

// New creates an engine for cfg.
func New(cfg *domain.Config, options ...Option) *Engine {
	e := &Engine{
		fs:        afero.NewOsFs(),
		cfg:       cfg,
		lookupEnv: os.LookupEnv,
		now:       time.Now,
	}
	for _, option := range options {
		option(e)
	}
	e.configHash = ConfigHash(cfg)
	return e
}

// Fingerprint computes the composite key of path.
func (e *Engine) Fingerprint(path string) domain.Fingerprint {
	e.mu.Lock()
	if e.envHash == "" {
		e.envHash = EnvHash(e.lookupEnv)
	}
	if e.depHash == "" {
		e.depHash = DependencyHash(e.fs, e.cfg.Dependencies)
	}
	envHash, depHash := e.envHash, e.depHash
	e.mu.Unlock()

	return domain.Fingerprint{
		ContentHash:    e.contentHash(path),
		ConfigHash:     e.configHash,
		EnvHash:        envHash,
		DependencyHash: depHash,
	}
}

// Reset drops the memoized env and dependency hashes.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.envHash = ""
	e.depHash = ""
}

func (e *Engine) contentHash(path string) string {
	hasher := xxhash.New()

	f, err := e.fs.Open(path)
	if err == nil {
		_, err = io.Copy(hasher, f)
		_ = f.Close()
	}
	if err != nil {
		// Unreadable files must never hit.
		hasher.Reset()
		_, _ = hasher.WriteString(path)
		_, _ = hasher.WriteString(e.now().Format(time.RFC3339Nano))
	}

	return hex(hasher)
}

// configSnapshot is the subset of configuration that affects build output.
type configSnapshot struct {
	Production  bool              `json:"production"`
	TargetLibs  []string          `json:"targetLibs"`
	LintEnabled bool              `json:"lintEnabled"`
	LintConfig  string            `json:"lintConfig"`
	Aliases     map[string]string `json:"aliases"`
	TSConfig    string            `json:"tsconfig"`
	Extensions  map[string]string `json:"extensions"`
	Stages      [][]string        `json:"stages"`
}

// ConfigHash digests the output-affecting configuration. Maps are key-sorted
// by the encoder and nil collections are normalized so equal effective
// configurations hash identically.
func ConfigHash(cfg *domain.Config) string {
	snap := configSnapshot{
		Production:  cfg.Production,
		TargetLibs:  orEmpty(cfg.TargetLibs),
		LintEnabled: cfg.Lint.Enabled,
		LintConfig:  cfg.Lint.Config,
		Aliases:     cfg.Aliases,
		TSConfig:    cfg.TypeCheck.Config,
		Extensions:  cfg.Extensions,
		Stages: [][]string{
			orEmpty(cfg.Stages.Template),
			orEmpty(cfg.Stages.Typed),
			orEmpty(cfg.Stages.Standardize),
			orEmpty(cfg.Stages.Minify),
		},
	}
	if snap.Aliases == nil {
		snap.Aliases = map[string]string{}
	}
	if snap.Extensions == nil {
		snap.Extensions = map[string]string{}
	}

	hasher := xxhash.New()
	data, err := json.Marshal(snap)
	if err != nil {
		_, _ = hasher.WriteString("config-error:" + err.Error())
	} else {
		_, _ = hasher.Write(data)
	}
	return hex(hasher)
}

// EnvHash digests the allow-listed variables as KEY=value lines in name order.
// Unset variables contribute an empty value.
func EnvHash(lookup LookupEnvFunc) string {
	hasher := xxhash.New()
	for _, key := range EnvAllowList {
		value, _ := lookup(key)
		_, _ = hasher.WriteString(key)
		_, _ = hasher.Write([]byte{'='})
		_, _ = hasher.WriteString(value)
		_, _ = hasher.Write([]byte{'\n'})
	}
	return hex(hasher)
}

func hex(hasher *xxhash.Digest) string {
	return fmt.Sprintf("%016x", hasher.Sum64())
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func joinRoot(root, name string) string {
	return filepath.Join(root, filepath.FromSlash(name))
}
