// Package detector picks the log format from the terminal and CI environment.
package detector

import (
	"os"

	"golang.org/x/term"
)

// LogFormat is the output format for logs and progress.
type LogFormat int

const (
	// FormatAuto defers to detection.
	FormatAuto LogFormat = iota
	// FormatPretty is coloured human-readable output.
	FormatPretty
	// FormatJSON is structured output for machines and CI.
	FormatJSON
)

// String returns the flag spelling of f.
func (f LogFormat) String() string {
	switch f {
	case FormatPretty:
		return "pretty"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// IsCI reports whether CI is set to a truthy value.
func IsCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// DetectEnvironment returns FormatJSON when stderr is not a terminal or CI is
// set, and FormatPretty otherwise.
func DetectEnvironment() LogFormat {
	if IsCI() || !term.IsTerminal(int(os.Stderr.Fd())) {
		return FormatJSON
	}
	return FormatPretty
}

// ResolveFormat applies the --log-format flag to the detected format.
// Unknown values fall back to detection.
func ResolveFormat(detected LogFormat, flag string) LogFormat {
	switch flag {
	case "pretty", "text":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return detected
	}
}
