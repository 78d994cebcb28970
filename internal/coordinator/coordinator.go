// Package coordinator is the top-level orchestrator: it owns a job's
// entire lifecycle from validated JobInfo to emitted Report, selecting
// between the worker-pool handlers and the kernel pointer-chase
// collaborator by job kind, and mapping the outcome to a process exit
// code.
package coordinator

import (
	"errors"
	"fmt"

	"github.com/cxlbench/tiermark/internal/alloc"
	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/handler"
	"github.com/cxlbench/tiermark/internal/jobmodel"
	"github.com/cxlbench/tiermark/internal/kernelpc"
	"github.com/cxlbench/tiermark/internal/pattern"
	"github.com/cxlbench/tiermark/internal/resultlog"
	"github.com/cxlbench/tiermark/internal/worker"
)

// Exit codes: 0 success, 1 a measurement run failed, negative a
// pre-flight rejection before any allocation happened.
const (
	ExitSuccess        = 0
	ExitMeasurementRun = 1
	ExitPreflightCheck = -1
)

// Run loads nothing itself: it takes an already-validated job plus an
// open Logger and drives the job to completion, returning the process
// exit code the caller should use. It always calls alloc.Shutdown before
// returning, so a hugetlbfs mount never outlives one job; the huge-page
// count written to sysfs is not reset by Shutdown.
func Run(job jobmodel.JobInfo, log *resultlog.Logger) int {
	defer func() {
		if err := alloc.Shutdown(); err != nil {
			log.Appendf("allocator shutdown: %v", err)
		}
	}()

	if job.Kind == jobmodel.PointerChase {
		return runPointerChase(job, log)
	}
	return runWorkerPoolJob(job, log)
}

// runWorkerPoolJob covers BANDWIDTH, LATENCY and BANDWIDTH_VS_LATENCY:
// every job kind whose measurement runs inside this process's own
// WorkerPool rather than the external kernel collaborator.
func runWorkerPoolJob(job jobmodel.JobInfo, log *resultlog.Logger) int {
	if err := preflightCheck(job); err != nil {
		log.Appendf("preflight check failed: %v", err)
		return ExitPreflightCheck
	}

	log.Append(resultlog.TestInfoPreamble(job))

	deps := pattern.DefaultDeps()
	h, err := handler.For(job, deps)
	if err != nil {
		log.Appendf("no handler for job: %v", err)
		return ExitMeasurementRun
	}

	pool, err := worker.Initialize(job)
	if err != nil {
		log.Appendf("worker pool initialization failed: %v", err)
		return ExitMeasurementRun
	}

	for _, aerr := range pool.AffinityErrors() {
		log.Appendf("affinity warning: %v", aerr)
	}

	report, err := h.Run(pool)
	if err != nil {
		log.Appendf("measurement run failed: %v", err)
		return ExitMeasurementRun
	}
	if firstErr := pool.FirstError(); firstErr != nil {
		log.Appendf("worker error: %v", firstErr)
		return ExitMeasurementRun
	}

	resultlog.WriteReport(log, report)
	return ExitSuccess
}

// runPointerChase covers the POINTER_CHASE job kind, which routes to the
// external kernel collaborator instead of a WorkerPool (see
// internal/kernelpc and handler.For's doc comment).
func runPointerChase(job jobmodel.JobInfo, log *resultlog.Logger) int {
	if err := preflightCheck(job); err != nil {
		log.Appendf("preflight check failed: %v", err)
		return ExitPreflightCheck
	}

	log.Append(resultlog.TestInfoPreamble(job))

	dev, err := kernelpc.Open()
	if err != nil {
		log.Appendf("kernel collaborator unavailable: %v", err)
		return ExitMeasurementRun
	}
	defer dev.Close()

	args := argsFromJob(job)
	_, result, err := dev.Run(args)
	if err != nil {
		log.Appendf("measurement run failed: %v", err)
		return ExitMeasurementRun
	}

	log.Appendf("Worker : [%d] Load Latency : %.4f ns, Store Latency : %.4f ns",
		job.CoreLayout.CoreFor(0, job.SocketID), result.LatencyNSLoad, result.LatencyNSStore)
	return ExitSuccess
}

// preflightCheck rejects a pointer-chase job whose walked region
// (block_num * stride) does not fit strictly inside the test region,
// before any allocation happens. It only applies to jobs that define both
// a block count and a buffer size to check it against; BANDWIDTH/LATENCY
// jobs size their own buffers from BufferSizeMiB directly and have no
// separate block_num, so the check is vacuous for them.
func preflightCheck(job jobmodel.JobInfo) error {
	if job.Kind != jobmodel.PointerChase {
		return nil
	}
	blockNum := job.BandwidthAccessCount
	stride := job.LatencyStride
	testSize := job.BufferSize()
	if blockNum <= 0 || stride <= 0 {
		return nil
	}
	if int64(blockNum)*int64(stride) >= testSize {
		return fmt.Errorf("block_num(%d) * stride(%d) >= test_size(%d)", blockNum, stride, testSize)
	}
	return nil
}

func argsFromJob(job jobmodel.JobInfo) kernelpc.Args {
	useFlush := uint64(0)
	if job.LoadStore == jobmodel.LoadWithFlush || job.LoadStore == jobmodel.StoreWithFlush {
		useFlush = 1
	}
	return kernelpc.Args{
		BlockNum:    uint64(job.BandwidthAccessCount),
		StrideSize:  uint64(job.LatencyStride),
		Repeat:      uint64(job.PatternIteration),
		CoreID:      uint64(job.CoreLayout.CoreFor(0, job.SocketID)),
		NodeID:      uint64(job.NumaNode),
		UseFlush:    useFlush,
		AccessOrder: 0,
		TestSize:    uint64(job.BufferSize()),
		SocketNum:   uint64(job.SocketID),
		LdStType:    uint64(job.LoadStore),
	}
}

// IsFatal reports whether err should be treated as a fatal process error
// rather than a recoverable per-worker warning, delegating to errs.Kind
// where the error carries one.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Kind.IsFatal()
	}
	return true
}
