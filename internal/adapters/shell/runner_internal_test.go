package shell

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		sysEnv   []string
		cmdEnv   map[string]string
		expected []string
	}{
		{
			name:     "System Only (Allowed)",
			sysEnv:   []string{"USER=test", "PATH=/bin", "HOME=/home/test", "NODE_ENV=production"},
			expected: []string{"USER=test", "PATH=/bin", "HOME=/home/test", "NODE_ENV=production"},
		},
		{
			name:     "System Only (Filtered)",
			sysEnv:   []string{"USER=test", "SSH_AUTH_SOCK=/tmp/ssh", "SECRET=key"},
			expected: []string{"USER=test"},
		},
		{
			name:     "Command Override",
			sysEnv:   []string{"USER=test", "PATH=/bin"},
			cmdEnv:   map[string]string{"USER": "kiln", "KILN_STAGE_PRODUCTION": "true"},
			expected: []string{"USER=kiln", "PATH=/bin", "KILN_STAGE_PRODUCTION=true"},
		},
		{
			name:     "Malformed Entries",
			sysEnv:   []string{"PATH", "TERM=xterm"},
			expected: []string{"TERM=xterm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveEnvironment(tt.sysEnv, tt.cmdEnv)

			// Sort for deterministic comparison
			sort.Strings(got)
			sort.Strings(tt.expected)

			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLookPath_EmptyPATH(t *testing.T) {
	_, err := lookPath("echo", []string{"USER=test"})
	assert.Error(t, err)
}

func TestLookPath_ExecutableNotFound(t *testing.T) {
	_, err := lookPath("nonexistent-command", []string{"PATH=/nonexistent/dir"})
	assert.Error(t, err)
}

func TestLookPath_EmptyDirectory(t *testing.T) {
	// PATH with empty directory should default to "."
	_, err := lookPath("nonexistent", []string{"PATH=:" + t.TempDir()})
	assert.Error(t, err)
}

func TestFindExecutable(t *testing.T) {
	assert.Error(t, findExecutable("/nonexistent/file"))
	assert.Error(t, findExecutable(t.TempDir()), "directories are not executable")
}
