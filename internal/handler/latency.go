package handler

import (
	"github.com/cxlbench/tiermark/internal/jobmodel"
	"github.com/cxlbench/tiermark/internal/pattern"
	"github.com/cxlbench/tiermark/internal/worker"
)

// LatencyHandler runs a LATENCY job: every worker runs the job's configured
// latency pattern, which self-terminates after PatternIteration sweeps and
// signals Complete; the handler only needs to wait for every worker to
// finish, which WrapUp already guarantees.
type LatencyHandler struct {
	Job  jobmodel.JobInfo
	Deps pattern.Deps
}

func (h LatencyHandler) Run(pool *worker.Pool) (Report, error) {
	gen, err := latencyPatternFor(h.Job.LatencyPattern, h.Deps)
	if err != nil {
		return Report{}, err
	}

	pool.Start(func(i int, ctx *worker.Context) error {
		return gen.Handle(ctx)
	})

	// Latency patterns self-terminate after PatternIteration sweeps; there
	// is nothing further for the orchestrator to wait on beyond WrapUp.
	pool.WrapUp()

	return h.report(pool), nil
}

func (h LatencyHandler) report(pool *worker.Pool) Report {
	results := collectWorkerResults(pool)
	return Report{
		JobKind:     h.Job.Kind,
		Workers:     results,
		HasLatency:  true,
		MeanLatency: meanLatencyNS(results),
	}
}

// meanLatencyNS is the unweighted mean of every worker's measured latency.
func meanLatencyNS(results []WorkerResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum int64
	for _, r := range results {
		sum += r.NanosecondsElapsed
	}
	return float64(sum) / float64(len(results))
}
