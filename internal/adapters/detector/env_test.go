package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/detector"
)

func TestDetectEnvironment_CI(t *testing.T) {
	tests := []struct {
		name    string
		ciValue string
	}{
		{name: "CI=true", ciValue: "true"},
		{name: "CI=1", ciValue: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CI", tt.ciValue)

			assert.True(t, detector.IsCI())
			assert.Equal(t, detector.FormatJSON, detector.DetectEnvironment())
		})
	}
}

func TestDetectEnvironment_NotCI(t *testing.T) {
	t.Setenv("CI", "false")

	assert.False(t, detector.IsCI())
	assert.Contains(t, []detector.LogFormat{detector.FormatPretty, detector.FormatJSON}, detector.DetectEnvironment())
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		detected detector.LogFormat
		flag     string
		want     detector.LogFormat
	}{
		{detected: detector.FormatJSON, flag: "pretty", want: detector.FormatPretty},
		{detected: detector.FormatJSON, flag: "text", want: detector.FormatPretty},
		{detected: detector.FormatPretty, flag: "json", want: detector.FormatJSON},
		{detected: detector.FormatPretty, flag: "auto", want: detector.FormatPretty},
		{detected: detector.FormatJSON, flag: "", want: detector.FormatJSON},
		{detected: detector.FormatPretty, flag: "yaml", want: detector.FormatPretty},
	}

	for _, tt := range tests {
		t.Run(tt.detected.String()+"/"+tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.ResolveFormat(tt.detected, tt.flag))
		})
	}
}
