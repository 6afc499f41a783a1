package scheduler

// MemoryPressureThreshold is the host memory usage above which batch
// concurrency is cut to a quarter.
const MemoryPressureThreshold = 0.9

// minCores is assumed when the host reports a single core, which usually
// means a container with a misreported quota.
const minCores = 2

// CeilingInput holds what the batch concurrency ceiling is computed from.
type CeilingInput struct {
	Cores       int
	Files       int
	MemoryUsage float64
	MemoryKnown bool
	// Override is the operator's explicit choice; zero means computed.
	Override int
	HardCap  int
}

// Ceiling returns the number of files compiled at once. The result is always
// within [1, HardCap] and never exceeds a known file count.
func Ceiling(in CeilingInput) int {
	n := max(in.Cores, minCores)

	if in.Files > 0 && in.Files < n {
		n = in.Files
	}

	if in.MemoryKnown && in.MemoryUsage > MemoryPressureThreshold {
		n /= 4
	}

	if in.Override > 0 {
		n = in.Override
		if in.Files > 0 {
			n = min(n, in.Files)
		}
	}

	hardCap := max(in.HardCap, 1)
	return min(max(n, 1), hardCap)
}
