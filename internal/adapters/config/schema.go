package config

import "time"

// Kilnfile represents the structure of the kiln.yaml configuration file.
type Kilnfile struct {
	Version      string            `yaml:"version"`
	SourceRoot   string            `yaml:"sourceRoot"`
	DestRoot     string            `yaml:"destRoot"`
	Production   bool              `yaml:"production"`
	Verbose      bool              `yaml:"verbose"`
	Lint         LintDTO           `yaml:"lint"`
	TypeCheck    TypeCheckDTO      `yaml:"typeCheck"`
	TargetLibs   []string          `yaml:"targetLibs"`
	Aliases      map[string]string `yaml:"aliases"`
	Extensions   map[string]string `yaml:"extensions"`
	Stages       StagesDTO         `yaml:"stages"`
	Cache        CacheDTO          `yaml:"cache"`
	Concurrency  ConcurrencyDTO    `yaml:"concurrency"`
	Dependencies DependenciesDTO   `yaml:"dependencies"`
	Watch        WatchDTO          `yaml:"watch"`
	Timeout      time.Duration     `yaml:"timeout"`
	MetricsAddr  string            `yaml:"metricsAddr"`
}

// LintDTO represents the lint section.
type LintDTO struct {
	Enabled bool   `yaml:"enabled"`
	Config  string `yaml:"config"`
}

// TypeCheckDTO represents the typeCheck section.
type TypeCheckDTO struct {
	Config        string        `yaml:"config"`
	Command       []string      `yaml:"command"`
	Workers       int           `yaml:"workers"`
	Timeout       time.Duration `yaml:"timeout"`
	IdleTimeout   time.Duration `yaml:"idleTimeout"`
	NoiseCodes    []int         `yaml:"noiseCodes"`
	NoisePatterns []string      `yaml:"noisePatterns"`
}

// StagesDTO holds the command line of each external stage.
type StagesDTO struct {
	Template    []string `yaml:"template"`
	Typed       []string `yaml:"typed"`
	Standardize []string `yaml:"standardize"`
	Minify      []string `yaml:"minify"`
	CSS         []string `yaml:"css"`
	Lint        []string `yaml:"lint"`
}

// CacheDTO represents the cache section. Sizes are in megabytes.
type CacheDTO struct {
	MaxEntries      int    `yaml:"maxEntries"`
	MaxMemoryMB     int64  `yaml:"maxMemoryMB"`
	HeapHighWaterMB int64  `yaml:"heapHighWaterMB"`
	File            string `yaml:"file"`
}

// ConcurrencyDTO represents the concurrency section.
type ConcurrencyDTO struct {
	Max     int `yaml:"max"`
	HardCap int `yaml:"hardCap"`
}

// DependenciesDTO overrides the files that make up the dependency state.
type DependenciesDTO struct {
	Manifest string `yaml:"manifest"`
	Lockfile string `yaml:"lockfile"`
	Root     string `yaml:"root"`
	Sample   int    `yaml:"sample"`
}

// WatchDTO represents the watch section.
type WatchDTO struct {
	Debounce time.Duration `yaml:"debounce"`
}
