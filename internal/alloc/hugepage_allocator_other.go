//go:build !linux

package alloc

import (
	"fmt"
	"unsafe"

	"github.com/cxlbench/tiermark/internal/errs"
)

// hugetlbfs has no equivalent outside Linux; this strategy is simply
// unavailable there.
func (a *HugePageAllocator) Allocate(size int64, node int) (unsafe.Pointer, error) {
	return nil, errs.NewSub(errs.AllocFailed, errs.SubKindMount, fmt.Errorf("hugetlbfs allocation is not supported on this platform"))
}

func (a *HugePageAllocator) Deallocate(addr unsafe.Pointer, size int64) error {
	return nil
}

func (a *HugePageAllocator) Close() error {
	return nil
}
