package alloc

// HugePageAllocator implements the contiguous-huge-page-via-hugetlbfs
// strategy: reserve N huge pages on the target node through sysfs, mount
// hugetlbfs at a well-known mount point, back an mmap region with a unique
// file there, and bind the mapping strictly to the node.
type HugePageAllocator struct {
	mountPoint string
	mounted    bool
}

const defaultHugeMountPoint = "/mnt/huge"

// NewHugePageAllocator constructs the allocator. The hugetlbfs mount is
// established lazily on first Allocate call, not at construction time.
func NewHugePageAllocator() *HugePageAllocator {
	return &HugePageAllocator{mountPoint: defaultHugeMountPoint}
}
