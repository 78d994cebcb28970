//go:build linux

package alloc

import (
	"fmt"
	"sort"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/cxlbench/tiermark/internal/errs"
)

type pfnVA struct {
	pfn uint64
	va  uintptr
}

// mmapAt issues a MAP_FIXED_NOREPLACE anonymous mapping at the given
// address hint via the raw mmap syscall, since the x/sys/unix Mmap wrapper
// has no address parameter.
func mmapAt(addr uintptr, size int64) (unsafe.Pointer, error) {
	const mapFixedNoreplace = 0x100000
	ret, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		addr,
		uintptr(size),
		uintptr(unix.PROT_READ|unix.PROT_WRITE),
		uintptr(unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|mapFixedNoreplace),
		^uintptr(0), // fd = -1
		0,
	)
	if errno != 0 {
		return nil, errno
	}
	return unsafe.Pointer(ret), nil
}

// Allocate over-allocates an amplified haystack, touches every page to
// force physical backing, reads each page's PFN from /proc/self/pagemap,
// finds the longest run of consecutive PFNs, and remaps that run to a
// fixed virtual address. It retries up to physMaxRetries times if no run
// of the required length is found.
func (a *PhysContigAllocator) Allocate(size int64, node int) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}
	pageSize := int64(nativePageSize)
	size = roundUp(size, pageSize)
	numPages := size / pageSize

	var lastErr error
	for attempt := 0; attempt < physMaxRetries; attempt++ {
		amp := amplificationFor(size)
		haystackPages := numPages * amp
		haystackSize := haystackPages * pageSize

		over, err := unix.Mmap(-1, 0, int(haystackSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
		if err != nil {
			return nil, errs.NewSub(errs.AllocFailed, errs.SubKindMmap, fmt.Errorf("over-allocate %d bytes: %w", haystackSize, err))
		}

		// Touch every page to force physical backing before reading PFNs.
		for i := int64(0); i < haystackPages; i++ {
			over[i*pageSize] = 1
		}

		baseVA := uintptr(unsafe.Pointer(&over[0]))
		entries := make([]pfnVA, 0, haystackPages)
		pfnErr := false
		for i := int64(0); i < haystackPages; i++ {
			va := baseVA + uintptr(i*pageSize)
			pfn, err := pagemapPFN(va, pageSize)
			if err != nil {
				pfnErr = true
				break
			}
			entries = append(entries, pfnVA{pfn: pfn, va: va})
		}
		if pfnErr {
			_ = unix.Munmap(over)
			lastErr = fmt.Errorf("read pagemap entries: a page was not resident")
			continue
		}

		if err := bindToNode(unsafe.Pointer(baseVA), uintptr(haystackSize), node); err != nil {
			_ = unix.Munmap(over)
			return nil, errs.NewSub(errs.AllocFailed, errs.SubKindNumaBind, err)
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].pfn < entries[j].pfn })

		runStart, runLen := longestConsecutiveRun(entries)
		if int64(runLen) < numPages {
			_ = unix.Munmap(over)
			lastErr = fmt.Errorf("longest contiguous PFN run is %d pages, need %d", runLen, numPages)
			continue
		}

		selected := entries[runStart : runStart+int(numPages)]
		target, err := remapRunToFixedVA(selected, size, pageSize)
		if err != nil {
			_ = unix.Munmap(over)
			lastErr = err
			continue
		}

		// Release the rest of the haystack; the selected pages were moved by
		// mremap and are no longer part of `over`'s mapping.
		_ = unix.Munmap(over)

		a.mu.Lock()
		a.sizes[uintptr(target)] = size
		a.mu.Unlock()

		return target, nil
	}

	return nil, errs.NewSub(errs.AllocFailed, errs.SubKindNoContiguousRun, lastErr)
}

// longestConsecutiveRun scans PFN-sorted entries and returns the start
// index and length of the longest run of consecutive page-frame numbers.
func longestConsecutiveRun(entries []pfnVA) (start, length int) {
	bestStart, bestLen := 0, 0
	curStart, curLen := 0, 0
	for i := range entries {
		if i == 0 || entries[i].pfn == entries[i-1].pfn+1 {
			if i == 0 || curLen == 0 {
				curStart = i
				curLen = 1
			} else {
				curLen++
			}
		} else {
			curStart = i
			curLen = 1
		}
		if curLen > bestLen {
			bestLen = curLen
			bestStart = curStart
		}
	}
	return bestStart, bestLen
}

// remapRunToFixedVA reserves the target virtual address with a fixed
// anonymous mapping, then mremaps each selected page into its slot in the
// reserved region, and verifies physical contiguity by re-reading pagemap.
func remapRunToFixedVA(run []pfnVA, size, pageSize int64) (unsafe.Pointer, error) {
	reserved, err := mmapAt(uintptr(physTargetVA), size)
	if err != nil {
		// Fall back to a kernel-chosen address if the hint is unavailable;
		// physical contiguity does not require a specific VA, only that the
		// selected pages land in one contiguous virtual span.
		data, merr := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
		if merr != nil {
			return nil, fmt.Errorf("reserve target VA: %w", err)
		}
		reserved = unsafe.Pointer(&data[0])
	}

	base := uintptr(reserved)
	for i, e := range run {
		dest := base + uintptr(int64(i)*pageSize)
		newAddr, _, errno := unix.Syscall6(
			unix.SYS_MREMAP,
			e.va,
			uintptr(pageSize),
			uintptr(pageSize),
			unix.MREMAP_MAYMOVE|unix.MREMAP_FIXED,
			dest,
			0,
		)
		if errno != 0 {
			return nil, fmt.Errorf("mremap page %d to %#x: %w", i, dest, errno)
		}
		if newAddr != uintptr(dest) {
			return nil, fmt.Errorf("mremap page %d landed at %#x, want %#x", i, newAddr, dest)
		}
	}

	var prev uint64
	for i := range run {
		va := base + uintptr(int64(i)*pageSize)
		pfn, err := pagemapPFN(va, pageSize)
		if err != nil {
			return nil, fmt.Errorf("verify contiguity of remapped page %d: %w", i, err)
		}
		if i > 0 && pfn != prev+1 {
			return nil, fmt.Errorf("remapped page %d has PFN %d, want %d", i, pfn, prev+1)
		}
		prev = pfn
	}

	return reserved, nil
}

// Deallocate releases a region previously returned by Allocate.
func (a *PhysContigAllocator) Deallocate(addr unsafe.Pointer, size int64) error {
	if addr == nil || size == 0 {
		return nil
	}
	a.mu.Lock()
	recorded, ok := a.sizes[uintptr(addr)]
	delete(a.sizes, uintptr(addr))
	a.mu.Unlock()
	if !ok {
		return errs.NewSub(errs.AllocFailed, errs.SubKindMap, fmt.Errorf("deallocate: unknown base address %p", addr))
	}
	data := unsafe.Slice((*byte)(addr), recorded)
	if err := unix.Munmap(data); err != nil {
		return errs.NewSub(errs.AllocFailed, errs.SubKindMap, err)
	}
	return nil
}

// IsPhysicallyContiguous re-derives the PFN of every page in [base,
// base+size) and reports whether they form one consecutive run, the
// property exercised directly by the testable-properties suite.
func IsPhysicallyContiguous(base unsafe.Pointer, size int64) bool {
	pageSize := int64(nativePageSize)
	numPages := roundUp(size, pageSize) / pageSize
	baseVA := uintptr(base)
	var prev uint64
	for i := int64(0); i < numPages; i++ {
		pfn, err := pagemapPFN(baseVA+uintptr(i*pageSize), pageSize)
		if err != nil {
			return false
		}
		if i > 0 && pfn != prev+1 {
			return false
		}
		prev = pfn
	}
	return true
}
