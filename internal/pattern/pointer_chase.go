package pattern

import (
	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/jobmodel"
	"github.com/cxlbench/tiermark/internal/worker"
)

// PointerChaseLatencyPattern walks a dependent-load chain built over the
// worker's buffer, measuring the mean per-access latency across
// PatternIteration repetitions.
type PointerChaseLatencyPattern struct {
	Deps Deps
}

func (p PointerChaseLatencyPattern) Handle(ctx *worker.Context) error {
	job := ctx.Job
	if job.LatencyStride <= 0 || ctx.Size <= 0 {
		ctx.SignalComplete()
		return nil
	}

	chainLen := int(ctx.Size / int64(job.LatencyStride))
	random := job.LatencyPattern != jobmodel.LatencyStride
	next, err := loadOrBuildChain(chainLen, ctx.WorkerIndex, random)
	if err != nil {
		return err
	}

	blockSize := job.LatencyBlockSize
	if blockSize <= 0 {
		blockSize = 64
	}

	switch job.LoadStore {
	case jobmodel.Load, jobmodel.LoadWithFlush:
		encodeChainIntoBuffer(ctx, next, job.LatencyStride)
		var sum int64
		for i := 0; i < job.PatternIteration; i++ {
			sum += p.Deps.Access.PtrChaseLoad(ctx.Addr, ctx.Size, job.LatencyStride, blockSize)
			ctx.Log.BytesTouched += int64(chainLen) * int64(blockSize)
		}
		if job.PatternIteration > 0 {
			ctx.Log.NanosecondsElapsed = sum / int64(job.PatternIteration) / int64(max1(chainLen))
		}
	case jobmodel.Store, jobmodel.StoreWithFlush:
		var sum int64
		for i := 0; i < job.PatternIteration; i++ {
			sum += p.Deps.Access.PtrChaseStore(ctx.Addr, ctx.Size, job.LatencyStride, blockSize, next)
			ctx.Log.BytesTouched += int64(chainLen) * int64(blockSize)
		}
		if job.PatternIteration > 0 {
			ctx.Log.NanosecondsElapsed = sum / int64(job.PatternIteration) / int64(max1(chainLen))
		}
	default:
		ctx.SignalComplete()
		return errs.New(errs.UnknownPattern, unsupportedLdSt(job.LoadStore))
	}

	ctx.SignalComplete()
	return nil
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// encodeChainIntoBuffer walks the chain once, writing next[i] into each
// slot of the worker's buffer so the chain is encoded in the buffer itself,
// the way PtrChaseLoad reads it back (each hop's address depends on the
// previously loaded value).
func encodeChainIntoBuffer(ctx *worker.Context, next []uint32, stride int) {
	buf := bufferBytes(ctx)
	for i, v := range next {
		off := i * stride
		if off+8 > len(buf) {
			break
		}
		writeLE64(buf, off, uint64(v))
	}
}

func bufferBytes(ctx *worker.Context) []byte {
	return toBytes(ctx.Addr, ctx.Size)
}

func writeLE64(buf []byte, off int, v uint64) {
	for i := 0; i < 8; i++ {
		buf[off+i] = byte(v >> (8 * i))
	}
}
