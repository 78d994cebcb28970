// Package alloc implements the NUMA-aware memory allocators the worker
// pool uses to back each worker's measurement buffer: a façade over a
// plain mmap strategy and a physically-contiguous strategy, plus a
// hugetlbfs-backed contiguous-huge-page strategy.
package alloc

import (
	"sync"
	"unsafe"

	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/jobmodel"
)

// Allocator is the common contract every strategy implements.
type Allocator interface {
	// Allocate returns size bytes bound to node, or an *errs.Error of Kind
	// AllocFailed on failure. Allocating 0 bytes returns a nil pointer, not
	// a fault.
	Allocate(size int64, node int) (unsafe.Pointer, error)

	// Deallocate releases a region previously returned by Allocate.
	Deallocate(addr unsafe.Pointer, size int64) error
}

var (
	mu            sync.Mutex
	mmapSingleton *MmapAllocator
	hugeSingleton *HugePageAllocator
	physSingleton *PhysContigAllocator
)

// For selects the allocator for the given strategy, creating its
// process-wide singleton lazily on first use. At most one instance per
// strategy exists for the lifetime of the process; Shutdown tears all of
// them down explicitly rather than relying on file-scope statics leaking
// past process exit.
func For(allocType jobmodel.AllocType) (Allocator, error) {
	mu.Lock()
	defer mu.Unlock()

	switch allocType {
	case jobmodel.NonContiguousHuge:
		if mmapSingleton == nil {
			mmapSingleton = NewMmapAllocator(true)
		}
		return mmapSingleton, nil
	case jobmodel.ContiguousHuge:
		if physSingleton == nil {
			physSingleton = NewPhysContigAllocator()
		}
		return physSingleton, nil
	default:
		return nil, errs.New(errs.Config, unknownAllocType(allocType))
	}
}

// HugePage returns the hugetlbfs-backed allocator singleton directly; it
// is not reachable through JobInfo.Alloc (that enum only distinguishes
// contiguous vs. non-contiguous huge pages), and neither the mmap nor the
// physically-contiguous strategy uses it. It is only obtained by calling
// HugePage explicitly.
func HugePage() *HugePageAllocator {
	mu.Lock()
	defer mu.Unlock()
	if hugeSingleton == nil {
		hugeSingleton = NewHugePageAllocator()
	}
	return hugeSingleton
}

// Shutdown tears down every allocator singleton created so far: unmounts
// hugetlbfs if mounted and forgets the lazily-created instances. Call this
// once, from the coordinator, at process exit.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	var firstErr error
	if hugeSingleton != nil {
		if err := hugeSingleton.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		hugeSingleton = nil
	}
	if physSingleton != nil {
		physSingleton.Close()
		physSingleton = nil
	}
	mmapSingleton = nil
	return firstErr
}

func unknownAllocType(a jobmodel.AllocType) error {
	return &unknownAllocTypeErr{a}
}

type unknownAllocTypeErr struct {
	a jobmodel.AllocType
}

func (e *unknownAllocTypeErr) Error() string {
	return "unrecognized allocation strategy: " + e.a.String()
}
