//go:build amd64 && !noasm

package access

//go:generate go tool goat c/ldst_amd64.c -O3 -e="--target=x86_64" -e="-mavx512f" -e="-mclflushopt"

import (
	"time"
	"unsafe"
)

func tsc_now_amd64(out unsafe.Pointer)
func load_block_64_amd64(addr unsafe.Pointer, nbytes int64)
func load_block_128_amd64(addr unsafe.Pointer, nbytes int64)
func load_block_256_amd64(addr unsafe.Pointer, nbytes int64)
func load_block_512_amd64(addr unsafe.Pointer, nbytes int64)
func store_block_64_amd64(addr unsafe.Pointer, nbytes int64)
func store_block_128_amd64(addr unsafe.Pointer, nbytes int64)
func store_block_256_amd64(addr unsafe.Pointer, nbytes int64)
func store_block_512_amd64(addr unsafe.Pointer, nbytes int64)
func load_with_flush_amd64(addr unsafe.Pointer, nbytes int64, outTicks unsafe.Pointer)
func store_with_flush_amd64(addr unsafe.Pointer, nbytes int64, outTicks unsafe.Pointer)
func ptr_chase_load_amd64(base unsafe.Pointer, regionBytes, stride, blockSize int64, outTicks unsafe.Pointer)
func ptr_chase_store_amd64(base unsafe.Pointer, regionBytes, stride, blockSize int64, nextIndex unsafe.Pointer, outTicks unsafe.Pointer)

// nsPerTick converts the TSC tick totals the timed primitives report into
// nanoseconds. Calibrated once at startup against the monotonic clock; the
// TSC is invariant on every platform this harness targets, so a single
// sample window suffices.
var nsPerTick = calibrateTSC()

func calibrateTSC() float64 {
	var t0, t1 int64
	start := time.Now()
	tsc_now_amd64(unsafe.Pointer(&t0))
	time.Sleep(20 * time.Millisecond)
	tsc_now_amd64(unsafe.Pointer(&t1))
	elapsed := time.Since(start).Nanoseconds()
	if t1 <= t0 || elapsed <= 0 {
		return 1
	}
	return float64(elapsed) / float64(t1-t0)
}

func ticksToNS(ticks int64) int64 {
	return int64(float64(ticks) * nsPerTick)
}

type amd64Impl struct{}

func (amd64Impl) LoadBlock(addr unsafe.Pointer, totalBytes int64, blockSize int) {
	switch blockSize {
	case 64:
		load_block_64_amd64(addr, totalBytes)
	case 128:
		load_block_128_amd64(addr, totalBytes)
	case 256:
		load_block_256_amd64(addr, totalBytes)
	case 512:
		load_block_512_amd64(addr, totalBytes)
	}
}

func (amd64Impl) StoreBlock(addr unsafe.Pointer, totalBytes int64, blockSize int) {
	switch blockSize {
	case 64:
		store_block_64_amd64(addr, totalBytes)
	case 128:
		store_block_128_amd64(addr, totalBytes)
	case 256:
		store_block_256_amd64(addr, totalBytes)
	case 512:
		store_block_512_amd64(addr, totalBytes)
	}
}

func (amd64Impl) LoadWithFlush(addr unsafe.Pointer, totalBytes int64) int64 {
	var ns int64
	load_with_flush_amd64(addr, totalBytes, unsafe.Pointer(&ns))
	return ticksToNS(ns)
}

func (amd64Impl) StoreWithFlush(addr unsafe.Pointer, totalBytes int64) int64 {
	var ns int64
	store_with_flush_amd64(addr, totalBytes, unsafe.Pointer(&ns))
	return ticksToNS(ns)
}

func (amd64Impl) PtrChaseLoad(base unsafe.Pointer, regionBytes int64, stride, blockSize int) int64 {
	var ns int64
	ptr_chase_load_amd64(base, regionBytes, int64(stride), int64(blockSize), unsafe.Pointer(&ns))
	return ticksToNS(ns)
}

func (amd64Impl) PtrChaseStore(base unsafe.Pointer, regionBytes int64, stride, blockSize int, nextIndex []uint32) int64 {
	var ns int64
	var tablePtr unsafe.Pointer
	if len(nextIndex) > 0 {
		tablePtr = unsafe.Pointer(&nextIndex[0])
	}
	ptr_chase_store_amd64(base, regionBytes, int64(stride), int64(blockSize), tablePtr, unsafe.Pointer(&ns))
	return ticksToNS(ns)
}

var defaultImpl Primitives = amd64Impl{}
