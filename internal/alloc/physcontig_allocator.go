package alloc

import "sync"

// PhysContigAllocator produces a virtually contiguous region whose page
// frames are also contiguous, by over-allocating, reading each page's PFN
// from /proc/self/pagemap, selecting the longest consecutive run, and
// remapping it to a fixed virtual address.
type PhysContigAllocator struct {
	mu    sync.Mutex
	sizes map[uintptr]int64 // base address -> allocation size, for Deallocate
}

const (
	physTargetVA   = 0x1_0000_0000
	physMaxRetries = 10
)

// amplificationFor returns the over-allocation multiplier for a requested
// size. Small requests need a much larger haystack to find a long
// consecutive PFN run in.
func amplificationFor(size int64) int64 {
	const gib = 1 << 30
	switch {
	case size < gib:
		return 56
	case size <= 4*gib:
		return 20
	default:
		return 10
	}
}

func NewPhysContigAllocator() *PhysContigAllocator {
	return &PhysContigAllocator{sizes: make(map[uintptr]int64)}
}

// Close is a no-op; PhysContigAllocator holds no process-wide OS resource
// beyond the mappings tracked in sizes, each released by its own Deallocate.
func (a *PhysContigAllocator) Close() {}
