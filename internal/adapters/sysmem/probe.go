// Package sysmem reports process heap and host memory usage.
package sysmem

import (
	"bufio"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// MeminfoPath is where Linux exposes host memory counters.
const MeminfoPath = "/proc/meminfo"

// Probe implements ports.MemoryProbe.
type Probe struct {
	fs      afero.Fs
	meminfo string
}

// New creates a probe reading host counters from the OS filesystem.
func New() *Probe {
	return NewWithFS(afero.NewOsFs(), MeminfoPath)
}

// NewWithFS creates a probe reading host counters from meminfo on fs.
func NewWithFS(fs afero.Fs, meminfo string) *Probe {
	return &Probe{fs: fs, meminfo: meminfo}
}

// HeapAlloc returns the bytes of allocated heap objects.
func (p *Probe) HeapAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

// Collect runs a garbage collection.
func (p *Probe) Collect() {
	runtime.GC()
}

// SystemUsage returns 1 - MemAvailable/MemTotal. Hosts without a readable
// meminfo report ok=false.
func (p *Probe) SystemUsage() (float64, bool) {
	f, err := p.fs.Open(p.meminfo)
	if err != nil {
		return 0, false
	}
	defer func() { _ = f.Close() }()

	var total, available uint64
	var haveTotal, haveAvailable bool

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		n, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			continue
		}
		switch key {
		case "MemTotal":
			total, haveTotal = n, true
		case "MemAvailable":
			available, haveAvailable = n, true
		}
	}

	if !haveTotal || !haveAvailable || total == 0 || available > total {
		return 0, false
	}
	return 1 - float64(available)/float64(total), true
}
