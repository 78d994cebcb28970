// Package handler implements the job-class policies: which pattern each
// worker runs, how the orchestrator waits for completion, and how results
// are assembled into a Report. Dispatch tables are built once at
// construction and are read-only afterward.
package handler

import (
	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/jobmodel"
	"github.com/cxlbench/tiermark/internal/pattern"
	"github.com/cxlbench/tiermark/internal/worker"
)

// WorkerResult is one worker's contribution to a Report.
type WorkerResult struct {
	WorkerIndex        int
	CoreID             int
	BytesTouched       int64
	NanosecondsElapsed int64
}

// MiBPerSec converts a WorkerResult's measurement into bandwidth:
// bytes * 1e9 / ns / MiB.
func (r WorkerResult) MiBPerSec() float64 {
	if r.NanosecondsElapsed <= 0 {
		return 0
	}
	return float64(r.BytesTouched) * 1e9 / float64(r.NanosecondsElapsed) / float64(jobmodel.MiB)
}

// Report is what a Handler hands back to the coordinator for logging.
type Report struct {
	JobKind jobmodel.JobKind
	Workers []WorkerResult

	HasBandwidth       bool
	TotalBandwidthMiBs float64

	HasLatency  bool
	MeanLatency float64 // nanoseconds
}

// Handler is the job-class policy contract: assign a pattern to every
// worker, wait for the run to finish by whatever rule the job class uses,
// and summarize results.
type Handler interface {
	Run(pool *worker.Pool) (Report, error)
}

// For selects the handler for a job's kind. PointerChase is not handled
// here: that job kind routes to the kernel collaborator instead of the
// worker pool (see internal/kernelpc and the coordinator).
func For(job jobmodel.JobInfo, deps pattern.Deps) (Handler, error) {
	switch job.Kind {
	case jobmodel.Bandwidth:
		return BandwidthHandler{Job: job, Deps: deps}, nil
	case jobmodel.Latency:
		return LatencyHandler{Job: job, Deps: deps}, nil
	case jobmodel.BandwidthVsLatency:
		return BandwidthVsLatencyHandler{Job: job, Deps: deps}, nil
	default:
		return nil, errs.New(errs.UnknownPattern, unknownJobKind(job.Kind))
	}
}

type unknownJobKindErr struct{ k jobmodel.JobKind }

func (e unknownJobKindErr) Error() string { return "no handler for job kind " + e.k.String() }

func unknownJobKind(k jobmodel.JobKind) error { return unknownJobKindErr{k} }

// bandwidthPatternFor resolves a BANDWIDTH-pattern generator from the job's
// BandwidthPattern field.
func bandwidthPatternFor(kind jobmodel.BandwidthPatternKind, deps pattern.Deps) (pattern.Generator, error) {
	switch kind {
	case jobmodel.BandwidthStride:
		return pattern.StrideBandwidthPattern{Deps: deps}, nil
	case jobmodel.BandwidthSimple:
		return pattern.SimpleLdStBandwidthPattern{Deps: deps}, nil
	default:
		return nil, errs.New(errs.UnknownPattern, unknownBandwidthPattern(kind))
	}
}

// latencyPatternFor resolves a LATENCY-pattern generator from the job's
// LatencyPattern field.
func latencyPatternFor(kind jobmodel.LatencyPatternKind, deps pattern.Deps) (pattern.Generator, error) {
	switch kind {
	case jobmodel.LatencyStride:
		return pattern.StrideLatencyPattern{Deps: deps}, nil
	case jobmodel.LatencyRandomPtrChase:
		return pattern.PointerChaseLatencyPattern{Deps: deps}, nil
	default:
		return nil, errs.New(errs.UnknownPattern, unknownLatencyPattern(kind))
	}
}

type unknownBandwidthPatternErr struct{ k jobmodel.BandwidthPatternKind }

func (e unknownBandwidthPatternErr) Error() string {
	return "no generator for bandwidth pattern " + e.k.String()
}
func unknownBandwidthPattern(k jobmodel.BandwidthPatternKind) error {
	return unknownBandwidthPatternErr{k}
}

type unknownLatencyPatternErr struct{ k jobmodel.LatencyPatternKind }

func (e unknownLatencyPatternErr) Error() string {
	return "no generator for latency pattern " + e.k.String()
}
func unknownLatencyPattern(k jobmodel.LatencyPatternKind) error { return unknownLatencyPatternErr{k} }

func collectWorkerResults(pool *worker.Pool) []WorkerResult {
	results := make([]WorkerResult, len(pool.Contexts))
	for i, ctx := range pool.Contexts {
		results[i] = WorkerResult{
			WorkerIndex:        ctx.WorkerIndex,
			CoreID:             ctx.CoreID,
			BytesTouched:       ctx.Log.BytesTouched,
			NanosecondsElapsed: ctx.Log.NanosecondsElapsed,
		}
	}
	return results
}
