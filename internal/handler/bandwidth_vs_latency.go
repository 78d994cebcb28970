package handler

import (
	"github.com/cxlbench/tiermark/internal/jobmodel"
	"github.com/cxlbench/tiermark/internal/pattern"
	"github.com/cxlbench/tiermark/internal/worker"
)

// BandwidthVsLatencyHandler runs a BANDWIDTH_VS_LATENCY job: worker 0 runs
// the latency pattern and self-terminates; every other worker runs the
// bandwidth pattern and must be cooperatively stopped once worker 0
// completes.
type BandwidthVsLatencyHandler struct {
	Job  jobmodel.JobInfo
	Deps pattern.Deps
}

func (h BandwidthVsLatencyHandler) Run(pool *worker.Pool) (Report, error) {
	latencyGen, err := latencyPatternFor(h.Job.LatencyPattern, h.Deps)
	if err != nil {
		return Report{}, err
	}
	bandwidthGen, err := bandwidthPatternFor(h.Job.BandwidthPattern, h.Deps)
	if err != nil {
		return Report{}, err
	}

	pool.Start(func(i int, ctx *worker.Context) error {
		if i == 0 {
			return latencyGen.Handle(ctx)
		}
		return bandwidthGen.Handle(ctx)
	})

	if len(pool.Contexts) > 0 {
		pool.Contexts[0].WaitComplete()
	}
	for _, ctx := range pool.Contexts[min1(len(pool.Contexts)):] {
		ctx.RequestStop()
	}
	pool.WrapUp()

	return h.report(pool), nil
}

// min1 returns 1 unless there are no contexts at all, in which case it
// returns 0 so the stop-request slice below stays empty instead of
// panicking on an index out of range.
func min1(n int) int {
	if n < 1 {
		return n
	}
	return 1
}

func (h BandwidthVsLatencyHandler) report(pool *worker.Pool) Report {
	results := collectWorkerResults(pool)
	return Report{
		JobKind:            h.Job.Kind,
		Workers:            results,
		HasBandwidth:       true,
		TotalBandwidthMiBs: sumBandwidth(results[min1(len(results)):]),
		HasLatency:         true,
		MeanLatency:        workerZeroLatencyNS(results),
	}
}

// workerZeroLatencyNS returns worker 0's measured latency directly;
// worker 0 is the only latency worker in this job class, so there is
// nothing to average.
func workerZeroLatencyNS(results []WorkerResult) float64 {
	if len(results) == 0 {
		return 0
	}
	return float64(results[0].NanosecondsElapsed)
}
