//go:build linux

package alloc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/cxlbench/tiermark/internal/errs"
)

// nrHugepagesPath returns the per-node sysfs control for the huge-page
// count, e.g. /sys/devices/system/node/node0/hugepages/hugepages-2048kB/nr_hugepages.
func nrHugepagesPath(node int, pageSizeKB int64) string {
	return fmt.Sprintf("/sys/devices/system/node/node%d/hugepages/hugepages-%dkB/nr_hugepages", node, pageSizeKB)
}

func (a *HugePageAllocator) ensureMounted() error {
	if a.mounted {
		return nil
	}
	if err := os.MkdirAll(a.mountPoint, 0o755); err != nil {
		return errs.NewSub(errs.AllocFailed, errs.SubKindMount, err)
	}
	if err := unix.Mount("hugetlbfs", a.mountPoint, "hugetlbfs", 0, ""); err != nil {
		if err != unix.EBUSY {
			return errs.NewSub(errs.AllocFailed, errs.SubKindMount, err)
		}
	}
	a.mounted = true
	return nil
}

func (a *HugePageAllocator) reserve(size int64, node int) (int64, error) {
	pageSizeKB, err := readHugepagesizeKB()
	if err != nil {
		return 0, errs.NewSub(errs.AllocFailed, errs.SubKindHugepageReserve, err)
	}
	pageSizeBytes := pageSizeKB * 1024
	count := (size + pageSizeBytes - 1) / pageSizeBytes

	path := nrHugepagesPath(node, pageSizeKB)
	if err := os.WriteFile(path, []byte(strconv.FormatInt(count, 10)), 0o644); err != nil {
		return 0, errs.NewSub(errs.AllocFailed, errs.SubKindHugepageReserve, fmt.Errorf("write %s: %w", path, err))
	}
	return pageSizeBytes, nil
}

func (a *HugePageAllocator) Allocate(size int64, node int) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}
	if err := a.ensureMounted(); err != nil {
		return nil, err
	}
	pageSizeBytes, err := a.reserve(size, node)
	if err != nil {
		return nil, err
	}
	size = roundUp(size, pageSizeBytes)

	f, err := os.CreateTemp(a.mountPoint, "tiermark-*")
	if err != nil {
		return nil, errs.NewSub(errs.AllocFailed, errs.SubKindMap, err)
	}
	name := f.Name()
	defer os.Remove(name)
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, errs.NewSub(errs.AllocFailed, errs.SubKindMap, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_HUGETLB)
	f.Close()
	if err != nil {
		return nil, errs.NewSub(errs.AllocFailed, errs.SubKindMap, err)
	}
	addr := unsafe.Pointer(&data[0])

	if err := bindToNode(addr, uintptr(size), node); err != nil {
		_ = unix.Munmap(data)
		return nil, errs.NewSub(errs.AllocFailed, errs.SubKindNumaBind, err)
	}
	return addr, nil
}

func (a *HugePageAllocator) Deallocate(addr unsafe.Pointer, size int64) error {
	if addr == nil || size == 0 {
		return nil
	}
	data := unsafe.Slice((*byte)(addr), size)
	if err := unix.Munmap(data); err != nil {
		return errs.NewSub(errs.AllocFailed, errs.SubKindMap, err)
	}
	return nil
}

// Close unmounts hugetlbfs if this allocator mounted it. The huge-page
// count itself is restored by the kernel at process exit; Close only
// undoes the mount.
func (a *HugePageAllocator) Close() error {
	if !a.mounted {
		return nil
	}
	a.mounted = false
	if err := unix.Unmount(a.mountPoint, 0); err != nil {
		return errs.NewSub(errs.AllocFailed, errs.SubKindMount, err)
	}
	return os.Remove(filepath.Clean(a.mountPoint))
}
