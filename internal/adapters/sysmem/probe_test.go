package sysmem_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/sysmem"
)

func TestProbe_SystemUsage(t *testing.T) {
	tests := []struct {
		name    string
		meminfo string
		want    float64
		ok      bool
	}{
		{
			name:    "quarter used",
			meminfo: "MemTotal:       16000000 kB\nMemFree:         1000000 kB\nMemAvailable:   12000000 kB\n",
			want:    0.25,
			ok:      true,
		},
		{
			name:    "missing available",
			meminfo: "MemTotal:       16000000 kB\nMemFree:         1000000 kB\n",
			ok:      false,
		},
		{
			name:    "garbage",
			meminfo: "not a meminfo file",
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, sysmem.MeminfoPath, []byte(tt.meminfo), 0o644))

			usage, ok := sysmem.NewWithFS(fs, sysmem.MeminfoPath).SystemUsage()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, usage, 1e-9)
			}
		})
	}
}

func TestProbe_SystemUsage_NoFile(t *testing.T) {
	_, ok := sysmem.NewWithFS(afero.NewMemMapFs(), sysmem.MeminfoPath).SystemUsage()
	assert.False(t, ok)
}

func TestProbe_HeapAlloc(t *testing.T) {
	p := sysmem.New()
	p.Collect()
	assert.Positive(t, p.HeapAlloc())
}
