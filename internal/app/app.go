// Package app implements the application layer for kiln.
package app

import (
	"io"
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	probe        ports.MemoryProbe
	metrics      ports.MetricsRecorder
	registry     *prom.Registry
	newWatcher   watcher.Factory

	fs      afero.Fs
	workDir string
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	probe ports.MemoryProbe,
	recorder ports.MetricsRecorder,
	registry *prom.Registry,
	newWatcher watcher.Factory,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		probe:        probe,
		metrics:      recorder,
		registry:     registry,
		newWatcher:   newWatcher,
		fs:           afero.NewOsFs(),
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput sets where progress and summaries are printed.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithWorkDir sets the directory kiln.yaml is searched from and relative
// file arguments are resolved against. It defaults to the process working
// directory.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// Overrides are command-line settings that take precedence over kiln.yaml.
type Overrides struct {
	Production  bool
	Verbose     bool
	Concurrency int
}

func (o Overrides) apply(cfg *domain.Config) {
	if o.Production {
		cfg.Production = true
	}
	if o.Verbose {
		cfg.Verbose = true
	}
	if o.Concurrency > 0 {
		cfg.Concurrency.Max = o.Concurrency
	}
}

func (a *App) cwd() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "cannot determine working directory")
	}
	return wd, nil
}

// loadConfig loads kiln.yaml and applies the command-line overrides.
func (a *App) loadConfig(o Overrides) (*domain.Config, error) {
	cwd, err := a.cwd()
	if err != nil {
		return nil, err
	}

	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	o.apply(cfg)
	return cfg, nil
}

// resolve makes a file argument absolute against the working directory.
func (a *App) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	cwd, err := a.cwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, path), nil
}
