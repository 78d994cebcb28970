//go:build !linux

package alloc

import (
	"fmt"
	"unsafe"

	"github.com/cxlbench/tiermark/internal/errs"
)

// Physical-frame introspection requires /proc/self/pagemap, which is
// Linux-specific; this strategy is simply unavailable elsewhere.
func (a *PhysContigAllocator) Allocate(size int64, node int) (unsafe.Pointer, error) {
	return nil, errs.NewSub(errs.AllocFailed, errs.SubKindNoContiguousRun, fmt.Errorf("physically contiguous allocation requires /proc/self/pagemap, unsupported on this platform"))
}

func (a *PhysContigAllocator) Deallocate(addr unsafe.Pointer, size int64) error {
	return nil
}

// IsPhysicallyContiguous cannot be checked without pagemap access.
func IsPhysicallyContiguous(base unsafe.Pointer, size int64) bool {
	return false
}
