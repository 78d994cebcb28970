//go:build linux

package alloc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/cxlbench/tiermark/internal/errs"
)

const nativePageSize = 4096

// mpolBind is Linux's MPOL_BIND NUMA policy mode; mpolMFStrict adds
// MPOL_MF_STRICT so the kernel fails the call outright rather than
// silently falling back to another node, and mpolMFMove (MPOL_MF_MOVE)
// migrates pages already placed elsewhere.
const (
	mpolBind     = 2
	mpolMFStrict = 1 << 0
	mpolMFMove   = 1 << 1
)

func roundUp(size int64, unit int64) int64 {
	if size <= 0 {
		return 0
	}
	return ((size + unit - 1) / unit) * unit
}

func (a *MmapAllocator) Allocate(size int64, node int) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}

	pageSize := int64(nativePageSize)
	flags := unix.MAP_PRIVATE | unix.MAP_ANONYMOUS
	if a.useHugePages {
		pageSize = hugePageSizeBytes()
		flags |= unix.MAP_HUGETLB | log2(pageSize)<<unix.MAP_HUGE_SHIFT
	}
	size = roundUp(size, pageSize)

	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, flags)
	if err != nil {
		return nil, errs.NewSub(errs.AllocFailed, errs.SubKindMmap, fmt.Errorf("mmap %d bytes: %w", size, err))
	}
	addr := unsafe.Pointer(&data[0])

	if !a.useHugePages {
		_ = unix.Madvise(data, unix.MADV_NOHUGEPAGE)
	}

	if err := bindToNode(addr, uintptr(size), node); err != nil {
		_ = unix.Munmap(data)
		return nil, errs.NewSub(errs.AllocFailed, errs.SubKindNumaBind, err)
	}

	return addr, nil
}

func (a *MmapAllocator) Deallocate(addr unsafe.Pointer, size int64) error {
	if addr == nil || size == 0 {
		return nil
	}
	pageSize := int64(nativePageSize)
	if a.useHugePages {
		pageSize = hugePageSizeBytes()
	}
	size = roundUp(size, pageSize)
	data := unsafe.Slice((*byte)(addr), size)
	if err := unix.Munmap(data); err != nil {
		return errs.NewSub(errs.AllocFailed, errs.SubKindMmap, err)
	}
	return nil
}

// bindToNode issues mbind(2) with mode MPOL_BIND and flags
// MPOL_MF_STRICT|MPOL_MF_MOVE restricted to a single-node mask, failing the
// allocation rather than silently placing pages on the wrong tier if the
// kernel can't honor it.
func bindToNode(addr unsafe.Pointer, length uintptr, node int) error {
	if node < 0 {
		return nil
	}
	var nodemask uint64
	if node >= 64 {
		return fmt.Errorf("node %d exceeds single-word nodemask", node)
	}
	nodemask = 1 << uint(node)

	_, _, errno := unix.Syscall6(
		unix.SYS_MBIND,
		uintptr(addr),
		length,
		uintptr(mpolBind),
		uintptr(unsafe.Pointer(&nodemask)),
		uintptr(64), // maxnode
		uintptr(mpolMFStrict|mpolMFMove),
	)
	if errno != 0 {
		return fmt.Errorf("mbind node %d: %w", node, errno)
	}
	return nil
}

// log2 returns the position of the highest set bit, the encoding
// MAP_HUGE_SHIFT expects for the huge-page size.
func log2(v int64) int {
	n := 0
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

func hugePageSizeBytes() int64 {
	size, err := readHugepagesizeKB()
	if err != nil || size <= 0 {
		return 2 * 1024 * 1024 // 2 MiB default, matching most x86_64/arm64 platforms.
	}
	return size * 1024
}
