//go:build amd64 && !noasm

package memutils

//go:generate go tool goat c/flush_amd64.c -O3 -e="--target=x86_64" -e="-mclflushopt"

import "unsafe"

func flush_range_amd64(addr unsafe.Pointer, nbytes int64)
func fence_amd64()

type amd64Impl struct{}

func (amd64Impl) FlushRange(addr uintptr, n int) {
	flush_range_amd64(unsafe.Pointer(addr), int64(n))
}

func (amd64Impl) Fence() {
	fence_amd64()
}

var defaultImpl FlushFence = amd64Impl{}
