package config

import (
	"maps"
	"os"
)

// Environment abstracts process environment access for testability.
type Environment interface {
	// LookupEnv returns the value of key and whether it is set.
	LookupEnv(key string) (string, bool)
	// Setenv sets key to value.
	Setenv(key, value string) error
}

// OSEnv implements Environment using the process environment.
type OSEnv struct{}

// LookupEnv returns the value of key and whether it is set.
func (OSEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Setenv sets key to value.
func (OSEnv) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

// MapEnv implements Environment on top of a plain map for testing.
type MapEnv map[string]string

// NewMapEnv copies vars into a new MapEnv.
func NewMapEnv(vars map[string]string) MapEnv {
	m := MapEnv{}
	maps.Copy(m, vars)
	return m
}

// LookupEnv returns the value of key and whether it is set.
func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Setenv sets key to value.
func (m MapEnv) Setenv(key, value string) error {
	m[key] = value
	return nil
}
