package typecheck

import (
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
)

// Diagnostic codes that are never reported.
const (
	// CodeCannotFindModule is "Cannot find module". Module resolution is not
	// the worker's job; the bundler reports it.
	CodeCannotFindModule = 2307
	// CodeModuleResolution is the bundler-resolution variant of 2307.
	CodeModuleResolution = 2792
)

// NoisePolicy drops diagnostics that are false positives of a minimal host.
type NoisePolicy struct {
	Codes    []int
	Patterns []string
}

// DefaultNoisePolicy returns the policy used when kiln.yaml names none.
func DefaultNoisePolicy() NoisePolicy {
	return NoisePolicy{
		Codes: []int{CodeCannotFindModule, CodeModuleResolution},
		Patterns: []string{
			"Parameter '$event' implicitly has an 'any' type",
			"Parameter '_ctx' implicitly",
			"Parameter '_cache' implicitly",
			"Binding element '_' implicitly",
		},
	}
}

// NewNoisePolicy builds a policy from configured codes and patterns, falling
// back to the defaults when both are empty.
func NewNoisePolicy(codes []int, patterns []string) NoisePolicy {
	if len(codes) == 0 && len(patterns) == 0 {
		return DefaultNoisePolicy()
	}
	return NoisePolicy{Codes: slices.Clone(codes), Patterns: slices.Clone(patterns)}
}

// IsNoise reports whether d matches a code or a message pattern of the policy.
func (p NoisePolicy) IsNoise(d domain.Diagnostic) bool {
	if slices.Contains(p.Codes, d.Code) {
		return true
	}
	for _, pattern := range p.Patterns {
		if strings.Contains(d.Message, pattern) {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics that are not noise, in their original order.
func (p NoisePolicy) Filter(diags []domain.Diagnostic) []domain.Diagnostic {
	out := make([]domain.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if !p.IsNoise(d) {
			out = append(out, d)
		}
	}
	return out
}
