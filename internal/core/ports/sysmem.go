package ports

// MemoryProbe reports process and host memory state.
//
//go:generate mockgen -source=sysmem.go -destination=mocks/mock_sysmem.go -package=mocks
type MemoryProbe interface {
	// HeapAlloc returns the bytes of allocated heap objects.
	HeapAlloc() uint64
	// SystemUsage returns host memory usage as a fraction in [0, 1].
	// ok is false when the host does not expose it.
	SystemUsage() (usage float64, ok bool)
	// Collect runs a garbage collection.
	Collect()
}
