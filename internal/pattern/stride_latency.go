package pattern

import (
	"unsafe"

	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/jobmodel"
	"github.com/cxlbench/tiermark/internal/worker"
)

// StrideLatencyPattern runs PatternIteration sweeps of the *_WITH_FLUSH
// primitive over successive stride-separated chunks, reporting the mean
// per-line latency across every sweep but the first (warm-up).
type StrideLatencyPattern struct {
	Deps Deps
}

func (p StrideLatencyPattern) Handle(ctx *worker.Context) error {
	job := ctx.Job
	measure, err := p.measureFunc(job)
	if err != nil {
		return err
	}

	accessSize := int64(job.LatencyAccessSize)
	if accessSize <= 0 {
		ctx.SignalComplete()
		return nil
	}
	lines := accessSize / 64
	if lines <= 0 {
		lines = 1
	}

	addr := ctx.Addr
	var sumNS int64
	var measured int
	for i := 0; i < job.PatternIteration; i++ {
		ns := measure(addr, accessSize)
		if i > 0 {
			sumNS += ns / lines
			measured++
		}
		ctx.Log.BytesTouched += accessSize

		addr = advance(addr, 1, job.LatencyStride)
		if uintptr(addr)+uintptr(accessSize) > ctx.EndAddr {
			addr = ctx.Addr
		}
	}

	if measured > 0 {
		ctx.Log.NanosecondsElapsed = sumNS / int64(measured)
	}
	ctx.SignalComplete()
	return nil
}

// measureFunc resolves the *_WITH_FLUSH primitive for the worker's
// load/store mode, mapping the plain LOAD/STORE codes onto their
// with-flush counterparts.
func (p StrideLatencyPattern) measureFunc(job jobmodel.JobInfo) (func(unsafe.Pointer, int64) int64, error) {
	switch job.LoadStore {
	case jobmodel.Load, jobmodel.LoadWithFlush:
		return p.Deps.Access.LoadWithFlush, nil
	case jobmodel.Store, jobmodel.StoreWithFlush:
		return p.Deps.Access.StoreWithFlush, nil
	default:
		return nil, errs.New(errs.UnknownPattern, unsupportedLdSt(job.LoadStore))
	}
}
