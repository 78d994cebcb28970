// Package worker implements the pinned worker pool: one goroutine locked to
// an OS thread per worker, each bound to a physical core, coordinated
// through a mutex and three condition variables (ready / subopStop /
// complete).
package worker

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/cxlbench/tiermark/internal/alloc"
	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/jobmodel"
)

// Log records what a worker actually measured: bytes touched and the
// elapsed nanoseconds the pattern attributes to those bytes.
type Log struct {
	BytesTouched       int64
	NanosecondsElapsed int64
}

// Func is the per-worker work function the handler installs once the pool
// has allocated the worker's buffer. It runs with the buffer already live
// in ctx.Addr/ctx.EndAddr and must write its result into ctx.Log.
type Func func(ctx *Context) error

// Context is the per-worker state, owned by the Pool for its lifetime and
// borrowed by exactly one worker goroutine and the orchestrating handler.
// Pattern generators mutate only Log and observe StopRequested/Complete;
// everything else is read-only from their perspective.
type Context struct {
	CoreID      int
	WorkerIndex int

	Job jobmodel.JobInfo

	// Addr/EndAddr/Size describe the worker's private buffer, owned by
	// MemAllocator between allocation and deallocation. Size 0 / Addr nil
	// means no buffer is currently held.
	Addr    unsafe.Pointer
	EndAddr uintptr
	Size    int64

	Log Log

	// Err is the first error the worker's run loop or pattern observed;
	// Affinity errors are logged separately and do not populate this.
	Err error

	mu        sync.Mutex
	ready     sync.Cond
	subopStop sync.Cond
	complete  sync.Cond

	fn           Func
	fnInstalled  bool
	stopFlag     bool
	completeFlag bool
}

func newContext(index, coreID int, job jobmodel.JobInfo) *Context {
	c := &Context{WorkerIndex: index, CoreID: coreID, Job: job}
	c.ready = sync.Cond{L: &c.mu}
	c.subopStop = sync.Cond{L: &c.mu}
	c.complete = sync.Cond{L: &c.mu}
	return c
}

// install sets the work function and wakes the worker waiting on ready.
// Called by the handler under the pool's Start.
func (c *Context) install(fn Func) {
	c.mu.Lock()
	c.fn = fn
	c.fnInstalled = true
	c.mu.Unlock()
	c.ready.Broadcast()
}

func (c *Context) waitForWork() Func {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.fnInstalled {
		c.ready.Wait()
	}
	return c.fn
}

// RequestStop sets stopFlag under the mutex and notifies subopStop, the
// cooperative-cancellation signal every bandwidth pattern polls between
// sweeps.
func (c *Context) RequestStop() {
	c.mu.Lock()
	c.stopFlag = true
	c.mu.Unlock()
	c.subopStop.Broadcast()
}

// StopRequested reports whether RequestStop has been called.
func (c *Context) StopRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopFlag
}

// WaitSubopStop performs the bounded wait a bandwidth pattern makes between
// sweeps: block on the subopStop condition for at most d, then report
// whether a stop was requested. sync.Cond has no native timed wait, so a
// one-shot timer broadcasts the same condition if d elapses first. The
// bounded wait doubles as the cancellation check and the busy-wait
// limiter between sweeps.
func (c *Context) WaitSubopStop(d time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopFlag {
		return true
	}
	timer := time.AfterFunc(d, func() {
		c.mu.Lock()
		c.subopStop.Broadcast()
		c.mu.Unlock()
	})
	c.subopStop.Wait()
	timer.Stop()
	return c.stopFlag
}

// SignalComplete marks the worker's latency measurement finished and wakes
// any orchestrator blocked in WaitComplete.
func (c *Context) SignalComplete() {
	c.mu.Lock()
	c.completeFlag = true
	c.mu.Unlock()
	c.complete.Broadcast()
}

// WaitComplete blocks until SignalComplete has been called for this
// worker. Used by BandwidthVsLatencyHandler to wait on worker 0.
func (c *Context) WaitComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.completeFlag {
		c.complete.Wait()
	}
}

// Pool owns one Context per worker, the goroutines running them, and the
// allocator each worker's buffer comes from. Its lifetime spans
// Initialize..WrapUp; after WrapUp returns no worker goroutine is alive and
// no buffer remains allocated.
type Pool struct {
	Contexts []*Context

	job       jobmodel.JobInfo
	allocator alloc.Allocator
	wg        sync.WaitGroup

	mu        sync.Mutex
	firstErr  error
	affErrors []error
}

// Initialize creates job.NumWorkers contexts, resolves the allocator for
// job.Alloc, and spawns one goroutine per worker locked to its target core.
// Each worker then blocks on ready until Start installs its work function.
func Initialize(job jobmodel.JobInfo) (*Pool, error) {
	allocator, err := alloc.For(job.Alloc)
	if err != nil {
		return nil, err
	}

	p := &Pool{job: job, allocator: allocator}
	p.Contexts = make([]*Context, job.NumWorkers)
	for i := 0; i < job.NumWorkers; i++ {
		core := job.CoreLayout.CoreFor(i, job.SocketID)
		p.Contexts[i] = newContext(i, core, job)
	}

	p.wg.Add(job.NumWorkers)
	for i := 0; i < job.NumWorkers; i++ {
		go p.runWorker(p.Contexts[i])
	}
	return p, nil
}

// Start installs assign(i, ctx) as the work function for every worker and
// releases them from the ready barrier.
func (p *Pool) Start(assign func(i int, ctx *Context) error) {
	for i, ctx := range p.Contexts {
		idx, c := i, ctx
		c.install(func(ctx *Context) error {
			return assign(idx, ctx)
		})
	}
}

// runWorker is the per-worker loop: pin to its core and raise RT priority
// (logged, non-fatal on failure), wait for its work function, allocate its
// buffer, memset it so pages are materialized, run the function, and
// deallocate on every exit path including panic.
func (p *Pool) runWorker(ctx *Context) {
	defer p.wg.Done()

	if err := pinAndElevate(ctx.CoreID); err != nil {
		p.recordAffinityError(errs.New(errs.Affinity, err))
	}

	fn := ctx.waitForWork()

	// Cleanup runs on every exit path including panic: release the buffer
	// if one is held, and signal completion so an orchestrator blocked in
	// WaitComplete (worker 0 of a BANDWIDTH_VS_LATENCY job) is never left
	// hanging on a worker that failed before its pattern could signal.
	defer func() {
		if r := recover(); r != nil {
			ctx.Err = errs.New(errs.Config, panicError{r})
			p.recordError(ctx.Err)
		}
		if ctx.Addr != nil {
			_ = p.allocator.Deallocate(ctx.Addr, ctx.Size)
			ctx.Addr = nil
		}
		ctx.SignalComplete()
	}()

	size := ctx.Job.BufferSize()
	addr, allocErr := p.allocator.Allocate(size, ctx.Job.NumaNode)
	if allocErr != nil {
		ctx.Err = allocErr
		p.recordError(allocErr)
		return
	}
	ctx.Addr = addr
	ctx.Size = size
	if addr != nil {
		ctx.EndAddr = uintptr(addr) + uintptr(size)
	}

	if addr != nil {
		memsetNonzero(addr, size)
	}

	if fn == nil {
		return
	}
	if err := fn(ctx); err != nil {
		ctx.Err = err
		p.recordError(err)
	}
}

func memsetNonzero(addr unsafe.Pointer, size int64) {
	if size <= 0 {
		return
	}
	buf := unsafe.Slice((*byte)(addr), size)
	for i := range buf {
		buf[i] = 1
	}
}

type panicError struct{ v any }

func (p panicError) Error() string { return fmt.Sprintf("worker panic recovered: %v", p.v) }

func (p *Pool) recordError(err error) {
	if err == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.firstErr == nil {
		p.firstErr = err
	}
}

func (p *Pool) recordAffinityError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.affErrors = append(p.affErrors, err)
}

// FirstError returns the first non-Affinity error any worker encountered,
// or nil if every worker completed cleanly.
func (p *Pool) FirstError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.firstErr
}

// AffinityErrors returns every Affinity error logged during the run, for
// the coordinator to surface as warnings without failing the job.
func (p *Pool) AffinityErrors() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]error(nil), p.affErrors...)
}

// WrapUp joins every worker goroutine. After it returns, no worker is
// alive and no buffer remains allocated (each worker's deferred cleanup
// guarantees this even on error or panic).
func (p *Pool) WrapUp() {
	p.wg.Wait()
}
