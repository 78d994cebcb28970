//go:build arm64 && !noasm

package memutils

//go:generate go tool goat c/flush_arm64.c -O3 -e="--target=arm64" -e="-march=armv8-a+simd+fp"

import "unsafe"

func flush_range_arm64(addr unsafe.Pointer, nbytes int64)
func fence_arm64()

type arm64Impl struct{}

func (arm64Impl) FlushRange(addr uintptr, n int) {
	flush_range_arm64(unsafe.Pointer(addr), int64(n))
}

func (arm64Impl) Fence() {
	fence_arm64()
}

var defaultImpl FlushFence = arm64Impl{}
