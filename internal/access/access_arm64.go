//go:build arm64 && !noasm

package access

//go:generate go tool goat c/ldst_arm64.c -O3 -e="--target=arm64" -e="-march=armv8-a+simd+fp" -e="-fno-builtin-memset"

import "unsafe"

func cnt_freq_arm64(out unsafe.Pointer)
func load_block_64_arm64(addr unsafe.Pointer, nbytes int64)
func load_block_128_arm64(addr unsafe.Pointer, nbytes int64)
func load_block_256_arm64(addr unsafe.Pointer, nbytes int64)
func load_block_512_arm64(addr unsafe.Pointer, nbytes int64)
func store_block_64_arm64(addr unsafe.Pointer, nbytes int64)
func store_block_128_arm64(addr unsafe.Pointer, nbytes int64)
func store_block_256_arm64(addr unsafe.Pointer, nbytes int64)
func store_block_512_arm64(addr unsafe.Pointer, nbytes int64)
func load_with_flush_arm64(addr unsafe.Pointer, nbytes int64, outTicks unsafe.Pointer)
func store_with_flush_arm64(addr unsafe.Pointer, nbytes int64, outTicks unsafe.Pointer)
func ptr_chase_load_arm64(base unsafe.Pointer, regionBytes, stride, blockSize int64, outTicks unsafe.Pointer)
func ptr_chase_store_arm64(base unsafe.Pointer, regionBytes, stride, blockSize int64, nextIndex unsafe.Pointer, outTicks unsafe.Pointer)

// nsPerTick converts the cntvct_el0 tick totals the timed primitives
// report into nanoseconds, using the generic timer's architecturally
// reported frequency.
var nsPerTick = cntNSPerTick()

func cntNSPerTick() float64 {
	var freq int64
	cnt_freq_arm64(unsafe.Pointer(&freq))
	if freq <= 0 {
		return 1
	}
	return 1e9 / float64(freq)
}

func ticksToNS(ticks int64) int64 {
	return int64(float64(ticks) * nsPerTick)
}

type arm64Impl struct{}

func (arm64Impl) LoadBlock(addr unsafe.Pointer, totalBytes int64, blockSize int) {
	switch blockSize {
	case 64:
		load_block_64_arm64(addr, totalBytes)
	case 128:
		load_block_128_arm64(addr, totalBytes)
	case 256:
		load_block_256_arm64(addr, totalBytes)
	case 512:
		load_block_512_arm64(addr, totalBytes)
	}
}

func (arm64Impl) StoreBlock(addr unsafe.Pointer, totalBytes int64, blockSize int) {
	switch blockSize {
	case 64:
		store_block_64_arm64(addr, totalBytes)
	case 128:
		store_block_128_arm64(addr, totalBytes)
	case 256:
		store_block_256_arm64(addr, totalBytes)
	case 512:
		store_block_512_arm64(addr, totalBytes)
	}
}

func (arm64Impl) LoadWithFlush(addr unsafe.Pointer, totalBytes int64) int64 {
	var ns int64
	load_with_flush_arm64(addr, totalBytes, unsafe.Pointer(&ns))
	return ticksToNS(ns)
}

func (arm64Impl) StoreWithFlush(addr unsafe.Pointer, totalBytes int64) int64 {
	var ns int64
	store_with_flush_arm64(addr, totalBytes, unsafe.Pointer(&ns))
	return ticksToNS(ns)
}

func (arm64Impl) PtrChaseLoad(base unsafe.Pointer, regionBytes int64, stride, blockSize int) int64 {
	var ns int64
	ptr_chase_load_arm64(base, regionBytes, int64(stride), int64(blockSize), unsafe.Pointer(&ns))
	return ticksToNS(ns)
}

func (arm64Impl) PtrChaseStore(base unsafe.Pointer, regionBytes int64, stride, blockSize int, nextIndex []uint32) int64 {
	var ns int64
	var tablePtr unsafe.Pointer
	if len(nextIndex) > 0 {
		tablePtr = unsafe.Pointer(&nextIndex[0])
	}
	ptr_chase_store_arm64(base, regionBytes, int64(stride), int64(blockSize), tablePtr, unsafe.Pointer(&ns))
	return ticksToNS(ns)
}

var defaultImpl Primitives = arm64Impl{}
