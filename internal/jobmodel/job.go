package jobmodel

import (
	"fmt"

	"github.com/cxlbench/tiermark/internal/errs"
)

// JobInfo is the immutable, externally-supplied job description. Every
// worker and pattern generator reads it but never mutates it.
type JobInfo struct {
	Kind JobKind

	NumWorkers int
	// BufferSizeMiB is the per-thread buffer size, declared in MiB in the
	// job descriptor and multiplied by MiB inside the core.
	BufferSizeMiB int

	NumaNode int
	SocketID int

	LoadStore LoadStoreType
	Alloc     AllocType

	LatencyPattern   LatencyPatternKind
	BandwidthPattern BandwidthPatternKind

	// BlockSize applies to whichever pattern is selected; one of 64/128/256/512.
	LoadBlockSize  int
	StoreBlockSize int

	// BandwidthStrideBytes and BandwidthAccessCount parameterize
	// StrideBandwidthPattern: each sweep issues BandwidthAccessCount
	// block-sized accesses, each BandwidthStrideBytes apart, clamped so
	// the sweep never reads past the buffer.
	BandwidthStrideBytes int
	BandwidthAccessCount int

	// Latency-pattern parameters.
	LatencyAccessSize int
	LatencyBlockSize  int
	LatencyStride     int

	// InterAccessDelayNS is an optional per-operation delay, in nanoseconds.
	InterAccessDelayNS int

	// PatternIteration is the sweep count for latency patterns.
	PatternIteration int

	CoreLayout CoreLayout
}

// BufferSize returns the per-thread buffer size in bytes.
func (j JobInfo) BufferSize() int64 {
	return int64(j.BufferSizeMiB) * MiB
}

// Validate checks valid enumerants, positive worker counts, buffer sizes,
// strides and access counts, latency iteration counts, and well-formed
// block sizes. It does not compare the buffer size against stride*count;
// StrideBandwidthPattern clamps the count instead (see ClampAccessCount).
// It returns an *errs.Error of Kind Config on the first violation found.
func (j JobInfo) Validate() error {
	if !j.Kind.Valid() {
		return errs.New(errs.Config, fmt.Errorf("unrecognized job kind %d", j.Kind))
	}
	if j.NumWorkers <= 0 {
		return errs.New(errs.Config, fmt.Errorf("num_workers must be > 0, got %d", j.NumWorkers))
	}
	if j.BufferSizeMiB <= 0 {
		return errs.New(errs.Config, fmt.Errorf("buffer size must be > 0 MiB, got %d", j.BufferSizeMiB))
	}
	if !j.LoadStore.Valid() {
		return errs.New(errs.Config, fmt.Errorf("unrecognized load/store type %d", j.LoadStore))
	}
	if !j.Alloc.Valid() {
		return errs.New(errs.Config, fmt.Errorf("unrecognized alloc type %d", j.Alloc))
	}

	if j.Kind == Latency || j.Kind == BandwidthVsLatency {
		if !j.LatencyPattern.Valid() {
			return errs.New(errs.Config, fmt.Errorf("unrecognized latency pattern %d", j.LatencyPattern))
		}
		// pattern_iteration < 2 divides by zero in the mean-excluding-warmup
		// computation, so it is rejected outright rather than silently
		// producing NaN/Inf.
		if j.PatternIteration < 2 {
			return errs.New(errs.Config, fmt.Errorf("pattern_iteration must be >= 2 for latency jobs, got %d", j.PatternIteration))
		}
		if j.LatencyPattern == LatencyStride {
			if !ValidBlockSize(j.LatencyBlockSize) {
				return errs.New(errs.Config, fmt.Errorf("latency block size %d is not one of 64/128/256/512", j.LatencyBlockSize))
			}
			if j.LatencyStride <= 0 {
				return errs.New(errs.Config, fmt.Errorf("latency stride must be > 0, got %d", j.LatencyStride))
			}
		}
		if j.LatencyPattern == LatencyRandomPtrChase && j.LatencyStride <= 0 {
			return errs.New(errs.Config, fmt.Errorf("pointer-chase stride must be > 0, got %d", j.LatencyStride))
		}
	}

	if j.Kind == Bandwidth || j.Kind == BandwidthVsLatency {
		if !j.BandwidthPattern.Valid() {
			return errs.New(errs.Config, fmt.Errorf("unrecognized bandwidth pattern %d", j.BandwidthPattern))
		}
		if !ValidBlockSize(j.LoadBlockSize) {
			return errs.New(errs.Config, fmt.Errorf("load block size %d is not one of 64/128/256/512", j.LoadBlockSize))
		}
		if !ValidBlockSize(j.StoreBlockSize) {
			return errs.New(errs.Config, fmt.Errorf("store block size %d is not one of 64/128/256/512", j.StoreBlockSize))
		}
		if j.BandwidthPattern == BandwidthStride {
			if j.BandwidthStrideBytes <= 0 {
				return errs.New(errs.Config, fmt.Errorf("bandwidth stride must be > 0, got %d", j.BandwidthStrideBytes))
			}
			if j.BandwidthAccessCount <= 0 {
				return errs.New(errs.Config, fmt.Errorf("bandwidth access count must be > 0, got %d", j.BandwidthAccessCount))
			}
		}
	}

	if j.Kind == PointerChase {
		if j.LatencyStride <= 0 {
			return errs.New(errs.Config, fmt.Errorf("pointer-chase stride must be > 0, got %d", j.LatencyStride))
		}
		if j.PatternIteration < 1 {
			return errs.New(errs.Config, fmt.Errorf("pattern_iteration must be >= 1, got %d", j.PatternIteration))
		}
	}

	return nil
}

// ClampAccessCount clamps an access count so stride*count never exceeds the
// buffer size, per the StrideBandwidthPattern boundary behavior.
func ClampAccessCount(bufferSize int64, stride, count int) int {
	if stride <= 0 || count <= 0 {
		return 0
	}
	maxCount := int(bufferSize / int64(stride))
	if count > maxCount {
		return maxCount
	}
	return count
}
