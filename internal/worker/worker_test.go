package worker

import (
	"errors"
	"testing"
	"time"
	"unsafe"

	"github.com/cxlbench/tiermark/internal/jobmodel"
)

func TestContextRequestStop(t *testing.T) {
	c := newContext(0, 3, jobmodel.JobInfo{})
	if c.StopRequested() {
		t.Fatal("StopRequested() = true before RequestStop")
	}
	c.RequestStop()
	if !c.StopRequested() {
		t.Fatal("StopRequested() = false after RequestStop")
	}
}

func TestContextWaitSubopStopReturnsImmediatelyWhenAlreadyStopped(t *testing.T) {
	c := newContext(0, 0, jobmodel.JobInfo{})
	c.RequestStop()

	start := time.Now()
	stopped := c.WaitSubopStop(50 * time.Millisecond)
	if !stopped {
		t.Fatal("WaitSubopStop() = false, want true")
	}
	if elapsed := time.Since(start); elapsed > 25*time.Millisecond {
		t.Errorf("WaitSubopStop() took %v, want near-instant return for an already-stopped context", elapsed)
	}
}

func TestContextWaitSubopStopTimesOutWhenNeverStopped(t *testing.T) {
	c := newContext(0, 0, jobmodel.JobInfo{})

	start := time.Now()
	stopped := c.WaitSubopStop(10 * time.Millisecond)
	if stopped {
		t.Fatal("WaitSubopStop() = true, want false when RequestStop was never called")
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("WaitSubopStop() returned after %v, want at least the requested duration", elapsed)
	}
}

func TestContextSignalCompleteWakesWaitComplete(t *testing.T) {
	c := newContext(0, 0, jobmodel.JobInfo{})
	done := make(chan struct{})
	go func() {
		c.WaitComplete()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitComplete() returned before SignalComplete was called")
	case <-time.After(10 * time.Millisecond):
	}

	c.SignalComplete()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitComplete() did not return after SignalComplete")
	}
}

type failingAllocator struct{}

func (failingAllocator) Allocate(size int64, node int) (unsafe.Pointer, error) {
	return nil, errors.New("alloc refused")
}

func (failingAllocator) Deallocate(addr unsafe.Pointer, size int64) error { return nil }

func TestRunWorkerSignalsCompleteOnAllocFailure(t *testing.T) {
	job := jobmodel.JobInfo{NumWorkers: 1, BufferSizeMiB: 1}
	p := &Pool{job: job, allocator: failingAllocator{}}
	ctx := newContext(0, 0, job)

	p.wg.Add(1)
	go p.runWorker(ctx)
	ctx.install(func(*Context) error { return nil })

	// An orchestrator blocked on this worker's completion (worker 0 of a
	// BANDWIDTH_VS_LATENCY job) must still be released when the worker
	// fails before its pattern runs.
	done := make(chan struct{})
	go func() {
		ctx.WaitComplete()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("WaitComplete() did not return after the worker's allocation failed")
	}

	p.WrapUp()
	if p.FirstError() == nil {
		t.Error("FirstError() = nil, want the allocation failure")
	}
}

func TestMemsetNonzero(t *testing.T) {
	buf := make([]byte, 16)
	memsetNonzero(unsafe.Pointer(&buf[0]), int64(len(buf)))
	for i, b := range buf {
		if b == 0 {
			t.Fatalf("buf[%d] = 0, want nonzero after memsetNonzero", i)
		}
	}
}

func TestMemsetNonzeroNoopOnZeroSize(t *testing.T) {
	memsetNonzero(nil, 0)
}

func TestPoolRecordErrorKeepsFirst(t *testing.T) {
	p := &Pool{}
	first := errors.New("first")
	second := errors.New("second")
	p.recordError(first)
	p.recordError(second)
	if got := p.FirstError(); got != first {
		t.Errorf("FirstError() = %v, want %v", got, first)
	}
}

func TestPoolRecordErrorIgnoresNil(t *testing.T) {
	p := &Pool{}
	p.recordError(nil)
	if got := p.FirstError(); got != nil {
		t.Errorf("FirstError() = %v, want nil", got)
	}
}

func TestPoolAffinityErrorsAccumulate(t *testing.T) {
	p := &Pool{}
	e1 := errors.New("pin failed on core 0")
	e2 := errors.New("pin failed on core 1")
	p.recordAffinityError(e1)
	p.recordAffinityError(e2)
	got := p.AffinityErrors()
	if len(got) != 2 || got[0] != e1 || got[1] != e2 {
		t.Errorf("AffinityErrors() = %v, want [%v %v]", got, e1, e2)
	}
}
