package pattern

import (
	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/jobmodel"
	"github.com/cxlbench/tiermark/internal/timer"
	"github.com/cxlbench/tiermark/internal/worker"
)

// SimpleLdStBandwidthPattern repeatedly scans the worker's entire buffer
// with one bulk load or store call per sweep, timing the call as a whole.
type SimpleLdStBandwidthPattern struct {
	Deps Deps
}

func (p SimpleLdStBandwidthPattern) Handle(ctx *worker.Context) error {
	job := ctx.Job
	if ctx.Size <= 0 {
		return nil
	}

	t := timer.New()
	switch job.LoadStore {
	case jobmodel.Load:
		for {
			t.Start()
			p.Deps.Access.LoadBlock(ctx.Addr, ctx.Size, job.LoadBlockSize)
			recordSweep(ctx, t.ElapsedNS())
			if ctx.WaitSubopStop(subopWait) {
				return nil
			}
		}
	case jobmodel.Store:
		for {
			t.Start()
			p.Deps.Access.StoreBlock(ctx.Addr, ctx.Size, job.StoreBlockSize)
			recordSweep(ctx, t.ElapsedNS())
			if ctx.WaitSubopStop(subopWait) {
				return nil
			}
		}
	default:
		return errs.New(errs.UnknownPattern, unsupportedLdSt(job.LoadStore))
	}
}

func recordSweep(ctx *worker.Context, elapsedNS int64) {
	ctx.Log.NanosecondsElapsed += elapsedNS
	ctx.Log.BytesTouched += ctx.Size
}
