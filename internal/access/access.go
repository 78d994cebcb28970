// Package access provides the architecture-dependent bulk load/store and
// timed single-access primitives the pattern generators are built from.
// Primitives never allocate or lock, and never suspend except for the
// serializing fence each one issues immediately before its timer stop.
package access

import "unsafe"

// Primitives is the full primitive set the pattern generators consume.
// BlockSize arguments are always one of 64, 128, 256, 512.
type Primitives interface {
	// LoadBlock scans totalBytes at addr in blockSize-byte groups using
	// non-temporal loads.
	LoadBlock(addr unsafe.Pointer, totalBytes int64, blockSize int)

	// StoreBlock is the symmetric non-temporal store form.
	StoreBlock(addr unsafe.Pointer, totalBytes int64, blockSize int)

	// LoadWithFlush times, per 64-byte line in [addr, addr+totalBytes): a
	// non-temporal load, a fence, then a flush of that line. It returns the
	// sum of the per-line timed intervals in nanoseconds.
	LoadWithFlush(addr unsafe.Pointer, totalBytes int64) int64

	// StoreWithFlush is the symmetric write form.
	StoreWithFlush(addr unsafe.Pointer, totalBytes int64) int64

	// PtrChaseLoad walks a dependent-load chain of length
	// regionBytes/stride starting at base: for each hop it flushes the
	// current slot, fences, times a load of the next index stored there,
	// fences, then jumps. It returns the summed per-access nanoseconds,
	// one timed 8-byte load per hop; blockSize does not change what is
	// read.
	PtrChaseLoad(base unsafe.Pointer, regionBytes int64, stride, blockSize int) int64

	// PtrChaseStore is the write-form counterpart, walking nextIndex
	// (a precomputed successor table) instead of reading the chain from
	// the buffer itself.
	PtrChaseStore(base unsafe.Pointer, regionBytes int64, stride, blockSize int, nextIndex []uint32) int64
}

// New returns the Primitives implementation for the running architecture.
func New() Primitives {
	return defaultImpl
}

// IsValidBlockSize reports whether w is one of the four supported widths.
func IsValidBlockSize(w int) bool {
	switch w {
	case 64, 128, 256, 512:
		return true
	default:
		return false
	}
}
