//go:build (!amd64 && !arm64) || noasm

// Mock variant: plain memory copies standing in for the vector
// non-temporal primitives, so the harness can compile and run (and its
// patterns be exercised in tests) on hosts that lack the real extensions.
// Observationally, a store_block followed by a load_block over the same
// region is a no-op modulo the timer, which is exactly the round-trip
// property this variant exists to make checkable on any architecture.
package access

import (
	"time"
	"unsafe"

	"github.com/cxlbench/tiermark/internal/memutils"
)

type mockImpl struct {
	mu memutils.FlushFence
}

func bytesOf(addr unsafe.Pointer, n int64) []byte {
	return unsafe.Slice((*byte)(addr), n)
}

func (m mockImpl) LoadBlock(addr unsafe.Pointer, totalBytes int64, blockSize int) {
	buf := bytesOf(addr, totalBytes)
	var sink byte
	for i := 0; i < len(buf); i += blockSize {
		sink ^= buf[i]
	}
	_ = sink
}

func (m mockImpl) StoreBlock(addr unsafe.Pointer, totalBytes int64, blockSize int) {
	buf := bytesOf(addr, totalBytes)
	for i := 0; i < len(buf); i += blockSize {
		buf[i] = 0
	}
}

func (m mockImpl) LoadWithFlush(addr unsafe.Pointer, totalBytes int64) int64 {
	buf := bytesOf(addr, totalBytes)
	var total int64
	for i := 0; i < len(buf); i += 64 {
		start := time.Now()
		_ = buf[i]
		m.mu.Fence()
		total += time.Since(start).Nanoseconds()
		m.mu.FlushRange(uintptr(addr)+uintptr(i), 64)
	}
	return total
}

func (m mockImpl) StoreWithFlush(addr unsafe.Pointer, totalBytes int64) int64 {
	buf := bytesOf(addr, totalBytes)
	var total int64
	for i := 0; i < len(buf); i += 64 {
		start := time.Now()
		buf[i] = 0
		m.mu.Fence()
		total += time.Since(start).Nanoseconds()
		m.mu.FlushRange(uintptr(addr)+uintptr(i), 64)
	}
	return total
}

func (m mockImpl) PtrChaseLoad(base unsafe.Pointer, regionBytes int64, stride, blockSize int) int64 {
	buf := bytesOf(base, regionBytes)
	var total int64
	var idx int64
	hops := regionBytes / int64(stride)
	for h := int64(0); h < hops; h++ {
		slot := idx * int64(stride)
		m.mu.FlushRange(uintptr(base)+uintptr(slot), 8)
		m.mu.Fence()
		start := time.Now()
		next := readUint64(buf, slot)
		m.mu.Fence()
		total += time.Since(start).Nanoseconds()
		idx = int64(next)
	}
	return total
}

func (m mockImpl) PtrChaseStore(base unsafe.Pointer, regionBytes int64, stride, blockSize int, nextIndex []uint32) int64 {
	buf := bytesOf(base, regionBytes)
	var total int64
	var idx uint32
	hops := regionBytes / int64(stride)
	for h := int64(0); h < hops; h++ {
		if int(idx) >= len(nextIndex) {
			break
		}
		next := nextIndex[idx]
		slot := int64(idx) * int64(stride)
		m.mu.FlushRange(uintptr(base)+uintptr(slot), 8)
		m.mu.Fence()
		start := time.Now()
		writeUint64(buf, slot, uint64(next))
		m.mu.Fence()
		total += time.Since(start).Nanoseconds()
		idx = next
	}
	return total
}

func readUint64(buf []byte, off int64) uint64 {
	if off < 0 || off+8 > int64(len(buf)) {
		return 0
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(buf[off+int64(i)]) << (8 * i)
	}
	return v
}

func writeUint64(buf []byte, off int64, v uint64) {
	if off < 0 || off+8 > int64(len(buf)) {
		return
	}
	for i := 0; i < 8; i++ {
		buf[off+int64(i)] = byte(v >> (8 * i))
	}
}

var defaultImpl Primitives = mockImpl{mu: memutils.New()}
