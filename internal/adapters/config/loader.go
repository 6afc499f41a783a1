// Package config provides the configuration loader for kiln.
package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the loader.
const (
	EnvProduction  = "KILN_PRODUCTION"
	EnvVerbose     = "KILN_VERBOSE"
	EnvSourceRoot  = "KILN_SOURCE_ROOT"
	EnvDestRoot    = "KILN_DEST_ROOT"
	EnvLint        = "KILN_LINT"
	EnvLintConfig  = "KILN_LINT_CONFIG"
	EnvTSConfig    = "KILN_TSCONFIG"
	EnvAliases     = "KILN_ALIASES"
	EnvConcurrency = "KILN_CONCURRENCY"
	EnvNodeEnv     = "NODE_ENV"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     afero.Fs
	Env    Environment
}

// NewLoader creates a new Loader reading from the OS filesystem and environment.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: afero.NewOsFs(), Env: OSEnv{}}
}

// Load discovers kiln.yaml from cwd and returns the resolved configuration.
// Precedence, lowest first: defaults, kiln.yaml, .env, process environment.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	root, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	var kilnfile Kilnfile
	if err := l.readAndUnmarshalYAML(filepath.Join(root, domain.ConfigFileName), &kilnfile); err != nil {
		return nil, err
	}

	if err := l.loadDotEnv(root); err != nil {
		return nil, err
	}

	cfg := domain.DefaultConfig(root)
	applyKilnfile(cfg, &kilnfile)

	if err := l.applyEnvironment(cfg); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DiscoverRoot walks up from cwd until it finds a directory holding kiln.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "cannot resolve working directory"), "cwd", cwd)
	}

	for {
		if _, err := l.FS.Stat(filepath.Join(currentDir, domain.ConfigFileName)); err == nil {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "cannot discover project root"), "cwd", cwd)
}

// loadDotEnv applies the project .env file. Variables already present in the
// environment win over the file.
func (l *Loader) loadDotEnv(root string) error {
	path := filepath.Join(root, domain.EnvFileName)
	f, err := l.FS.Open(path)
	if err != nil {
		// A missing .env is the common case.
		return nil
	}
	defer func() { _ = f.Close() }()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrEnvFileLoadFailed, err.Error()), "path", path)
	}

	for key, value := range vars {
		if _, set := l.Env.LookupEnv(key); set {
			continue
		}
		if err := l.Env.Setenv(key, value); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrEnvFileLoadFailed.Error()), "key", key)
		}
	}

	l.Logger.Debug(fmt.Sprintf("loaded %d variables from %s", len(vars), domain.EnvFileName))
	return nil
}

func applyKilnfile(cfg *domain.Config, k *Kilnfile) {
	if k.SourceRoot != "" {
		cfg.SourceRoot = resolvePath(cfg.Root, k.SourceRoot)
	}
	if k.DestRoot != "" {
		cfg.DestRoot = resolvePath(cfg.Root, k.DestRoot)
	}
	cfg.Production = k.Production
	cfg.Verbose = k.Verbose

	cfg.Lint.Enabled = k.Lint.Enabled
	if k.Lint.Config != "" {
		cfg.Lint.Config = resolvePath(cfg.Root, k.Lint.Config)
	}

	applyTypeCheck(cfg, &k.TypeCheck)

	cfg.TargetLibs = canonicalizeStrings(k.TargetLibs)
	for prefix, target := range k.Aliases {
		cfg.Aliases[prefix] = target
	}
	if len(k.Extensions) > 0 {
		cfg.Extensions = make(map[string]string, len(k.Extensions))
		for src, dst := range k.Extensions {
			cfg.Extensions[normalizeExt(src)] = normalizeExt(dst)
		}
	}

	cfg.Stages = domain.StageCommands{
		Template:    k.Stages.Template,
		Typed:       k.Stages.Typed,
		Standardize: k.Stages.Standardize,
		Minify:      k.Stages.Minify,
		CSS:         k.Stages.CSS,
		Lint:        k.Stages.Lint,
	}

	applyCache(cfg, &k.Cache)

	if k.Concurrency.Max != 0 {
		cfg.Concurrency.Max = k.Concurrency.Max
	}
	if k.Concurrency.HardCap != 0 {
		cfg.Concurrency.HardCap = k.Concurrency.HardCap
	}

	applyDependencies(cfg, &k.Dependencies)

	if k.Watch.Debounce != 0 {
		cfg.Debounce = k.Watch.Debounce
	}
	if k.Timeout != 0 {
		cfg.Timeout = k.Timeout
	}
	cfg.MetricsAddr = k.MetricsAddr
}

func applyTypeCheck(cfg *domain.Config, tc *TypeCheckDTO) {
	if tc.Config != "" {
		cfg.TypeCheck.Config = resolvePath(cfg.Root, tc.Config)
	}
	cfg.TypeCheck.Command = tc.Command
	if tc.Workers != 0 {
		cfg.TypeCheck.Workers = tc.Workers
	}
	if tc.Timeout != 0 {
		cfg.TypeCheck.Timeout = tc.Timeout
	}
	if tc.IdleTimeout != 0 {
		cfg.TypeCheck.IdleTimeout = tc.IdleTimeout
	}
	cfg.TypeCheck.NoiseCodes = tc.NoiseCodes
	cfg.TypeCheck.NoisePatterns = tc.NoisePatterns
}

func applyCache(cfg *domain.Config, c *CacheDTO) {
	if c.MaxEntries != 0 {
		cfg.Cache.MaxEntries = c.MaxEntries
	}
	if c.MaxMemoryMB != 0 {
		cfg.Cache.MaxMemoryBytes = c.MaxMemoryMB << 20
	}
	if c.HeapHighWaterMB != 0 {
		cfg.Cache.HeapHighWaterBytes = c.HeapHighWaterMB << 20
	}
	if c.File != "" {
		cfg.Cache.File = resolvePath(cfg.Root, c.File)
	}
}

func applyDependencies(cfg *domain.Config, d *DependenciesDTO) {
	if d.Manifest != "" {
		cfg.Dependencies.Manifest = resolvePath(cfg.Root, d.Manifest)
	}
	if d.Lockfile != "" {
		cfg.Dependencies.Lockfile = resolvePath(cfg.Root, d.Lockfile)
	}
	if d.Root != "" {
		cfg.Dependencies.Root = resolvePath(cfg.Root, d.Root)
	}
	if d.Sample != 0 {
		cfg.Dependencies.Sample = d.Sample
	}
}

//nolint:cyclop // flat list of overrides
func (l *Loader) applyEnvironment(cfg *domain.Config) error {
	if v, ok := l.Env.LookupEnv(EnvNodeEnv); ok && v == "production" {
		cfg.Production = true
	}
	if err := l.envBool(EnvProduction, &cfg.Production); err != nil {
		return err
	}
	if err := l.envBool(EnvVerbose, &cfg.Verbose); err != nil {
		return err
	}
	if err := l.envBool(EnvLint, &cfg.Lint.Enabled); err != nil {
		return err
	}
	if v, ok := l.Env.LookupEnv(EnvSourceRoot); ok && v != "" {
		cfg.SourceRoot = resolvePath(cfg.Root, v)
	}
	if v, ok := l.Env.LookupEnv(EnvDestRoot); ok && v != "" {
		cfg.DestRoot = resolvePath(cfg.Root, v)
	}
	if v, ok := l.Env.LookupEnv(EnvLintConfig); ok && v != "" {
		cfg.Lint.Config = resolvePath(cfg.Root, v)
	}
	if v, ok := l.Env.LookupEnv(EnvTSConfig); ok && v != "" {
		cfg.TypeCheck.Config = resolvePath(cfg.Root, v)
	}
	if v, ok := l.Env.LookupEnv(EnvAliases); ok && v != "" {
		aliases, err := parseAliases(v)
		if err != nil {
			return err
		}
		for prefix, target := range aliases {
			cfg.Aliases[prefix] = target
		}
	}
	if v, ok := l.Env.LookupEnv(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "cannot parse "+EnvConcurrency), "value", v)
		}
		cfg.Concurrency.Max = n
	}
	return nil
}

func (l *Loader) envBool(key string, dst *bool) error {
	v, ok := l.Env.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "cannot parse "+key), "value", v)
	}
	*dst = b
	return nil
}

// parseAliases reads a comma separated list of prefix=target pairs.
func parseAliases(s string) (map[string]string, error) {
	aliases := make(map[string]string)
	for pair := range strings.SplitSeq(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		prefix, target, ok := strings.Cut(pair, "=")
		if !ok || prefix == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "cannot parse "+EnvAliases), "pair", pair)
		}
		aliases[prefix] = target
	}
	return aliases, nil
}

func validate(cfg *domain.Config) error {
	invalid := func(field string, value any) error {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid value"), "field", field), "value", value)
	}

	switch {
	case cfg.Cache.MaxEntries < 1:
		return invalid("cache.maxEntries", cfg.Cache.MaxEntries)
	case cfg.Cache.MaxMemoryBytes < 1:
		return invalid("cache.maxMemoryMB", cfg.Cache.MaxMemoryBytes>>20)
	case cfg.Concurrency.HardCap < 1:
		return invalid("concurrency.hardCap", cfg.Concurrency.HardCap)
	case cfg.Concurrency.Max < 0:
		return invalid("concurrency.max", cfg.Concurrency.Max)
	case cfg.TypeCheck.Workers < 1:
		return invalid("typeCheck.workers", cfg.TypeCheck.Workers)
	case cfg.Timeout <= 0:
		return invalid("timeout", cfg.Timeout.String())
	case cfg.SourceRoot == cfg.DestRoot:
		return invalid("destRoot", cfg.DestRoot)
	}
	return nil
}

func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(strs))
	out := make([]string, 0, len(strs))
	for _, s := range strs {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func normalizeExt(ext string) string {
	if strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(root, p))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func (l *Loader) readAndUnmarshalYAML(configPath string, target *Kilnfile) error {
	configFile, err := afero.ReadFile(l.FS, configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, parseErr.Error()), "path", configPath)
	}

	return nil
}
