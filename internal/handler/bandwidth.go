package handler

import (
	"time"

	"github.com/cxlbench/tiermark/internal/jobmodel"
	"github.com/cxlbench/tiermark/internal/pattern"
	"github.com/cxlbench/tiermark/internal/worker"
)

// measurementWindow is the fixed duration BandwidthHandler lets every
// worker run before requesting a stop. Kept a constant rather than a job
// field: no job has needed a different window yet.
const measurementWindow = 10 * time.Second

// BandwidthHandler runs a BANDWIDTH job: every worker runs the job's
// configured bandwidth pattern until the fixed measurement window elapses,
// then every worker is cooperatively stopped.
type BandwidthHandler struct {
	Job  jobmodel.JobInfo
	Deps pattern.Deps
}

func (h BandwidthHandler) Run(pool *worker.Pool) (Report, error) {
	gen, err := bandwidthPatternFor(h.Job.BandwidthPattern, h.Deps)
	if err != nil {
		return Report{}, err
	}

	pool.Start(func(i int, ctx *worker.Context) error {
		return gen.Handle(ctx)
	})

	time.Sleep(measurementWindow)
	for _, ctx := range pool.Contexts {
		ctx.RequestStop()
	}
	pool.WrapUp()

	return h.report(pool), nil
}

func (h BandwidthHandler) report(pool *worker.Pool) Report {
	results := collectWorkerResults(pool)
	return Report{
		JobKind:            h.Job.Kind,
		Workers:            results,
		HasBandwidth:       true,
		TotalBandwidthMiBs: sumBandwidth(results),
	}
}

// sumBandwidth adds every worker's MiB/s for the total line.
func sumBandwidth(results []WorkerResult) float64 {
	var total float64
	for _, r := range results {
		total += r.MiBPerSec()
	}
	return total
}
