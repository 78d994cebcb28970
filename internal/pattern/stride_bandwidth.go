package pattern

import (
	"time"
	"unsafe"

	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/jobmodel"
	"github.com/cxlbench/tiermark/internal/timer"
	"github.com/cxlbench/tiermark/internal/worker"
)

// subopWait is how long StrideBandwidthPattern and SimpleLdStBandwidthPattern
// block on subopStop between sweeps: long enough to keep busy-wait overhead
// negligible, short enough that cancellation lands within one sweep.
const subopWait = time.Millisecond

// StrideBandwidthPattern repeatedly issues block-sized accesses spaced
// stride bytes apart across the worker's buffer until the handler requests
// a stop.
type StrideBandwidthPattern struct {
	Deps Deps
}

func (p StrideBandwidthPattern) Handle(ctx *worker.Context) error {
	job := ctx.Job
	blockFn, accessSize, err := p.blockFunc(job)
	if err != nil {
		return err
	}

	count := jobmodel.ClampAccessCount(ctx.Size, job.BandwidthStrideBytes, job.BandwidthAccessCount)
	if count <= 0 {
		return nil
	}
	stride := job.BandwidthStrideBytes

	p.Deps.Flush.FlushRange(uintptr(ctx.Addr), int(ctx.Size))

	addr := ctx.Addr
	t := timer.New()
	for {
		t.Start()
		for i := 0; i < count; i++ {
			blockFn(advance(addr, i, stride), int64(accessSize))
		}
		elapsed := t.ElapsedNS()

		ctx.Log.NanosecondsElapsed += elapsed
		ctx.Log.BytesTouched += int64(accessSize) * int64(count)

		addr = nextSweepStart(addr, ctx.Addr, ctx.EndAddr, count, stride, accessSize)

		if ctx.WaitSubopStop(subopWait) {
			return nil
		}
	}
}

func advance(addr unsafe.Pointer, n, stride int) unsafe.Pointer {
	return unsafe.Add(addr, n*stride)
}

// nextSweepStart returns where the following sweep begins, wrapping to base
// when that sweep's footprint would not fit: it accesses from the advanced
// cursor through cursor+(count-1)*stride+accessSize, so testing the bare
// cursor against end is not enough once the buffer size is not an exact
// multiple of count*stride.
func nextSweepStart(addr, base unsafe.Pointer, end uintptr, count, stride, accessSize int) unsafe.Pointer {
	next := advance(addr, count, stride)
	if uintptr(advance(next, count-1, stride))+uintptr(accessSize) > end {
		return base
	}
	return next
}

// blockFunc resolves the bulk primitive for the worker's load/store mode.
// Only LOAD and STORE are wired to a bandwidth block function; every other
// code (including the never-implemented NT_LOAD/NT_STORE per the open
// design question) is UnknownPattern.
func (p StrideBandwidthPattern) blockFunc(job jobmodel.JobInfo) (func(unsafe.Pointer, int64), int, error) {
	switch job.LoadStore {
	case jobmodel.Load:
		return func(addr unsafe.Pointer, n int64) { p.Deps.Access.LoadBlock(addr, n, job.LoadBlockSize) }, job.LoadBlockSize, nil
	case jobmodel.Store:
		return func(addr unsafe.Pointer, n int64) { p.Deps.Access.StoreBlock(addr, n, job.StoreBlockSize) }, job.StoreBlockSize, nil
	default:
		return nil, 0, errs.New(errs.UnknownPattern, unsupportedLdSt(job.LoadStore))
	}
}

type unsupportedLdStErr struct{ t jobmodel.LoadStoreType }

func (e unsupportedLdStErr) Error() string {
	return "load/store mode " + e.t.String() + " has no bandwidth block primitive wired"
}

func unsupportedLdSt(t jobmodel.LoadStoreType) error { return unsupportedLdStErr{t} }
