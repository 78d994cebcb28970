//go:build !linux

package alloc

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/cxlbench/tiermark/internal/errs"
)

// Huge pages and NUMA binding (mbind, hugetlbfs, /proc/self/pagemap) are
// Linux-specific concepts; on other platforms a plain anonymous mapping is
// the best this allocator can offer. The node argument is ignored: the
// mapping is returned without any node placement and without an error.
func (a *MmapAllocator) Allocate(size int64, node int) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errs.NewSub(errs.AllocFailed, errs.SubKindMmap, err)
	}
	return unsafe.Pointer(&data[0]), nil
}

func (a *MmapAllocator) Deallocate(addr unsafe.Pointer, size int64) error {
	if addr == nil || size == 0 {
		return nil
	}
	data := unsafe.Slice((*byte)(addr), size)
	if err := unix.Munmap(data); err != nil {
		return errs.NewSub(errs.AllocFailed, errs.SubKindMmap, err)
	}
	return nil
}
