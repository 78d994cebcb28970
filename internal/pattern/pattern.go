// Package pattern implements the family of access-pattern generators that
// drive a worker's measurement: strided bandwidth, strided
// latency-with-flush, simple vectorized bulk load/store, and randomized
// pointer-chase. Every generator is stateless: it consumes a borrowed
// *worker.Context and writes only through that worker's own Log.
package pattern

import (
	"github.com/cxlbench/tiermark/internal/access"
	"github.com/cxlbench/tiermark/internal/memutils"
	"github.com/cxlbench/tiermark/internal/worker"
)

// Generator is the capability every pattern implements. Handle runs until
// the pattern's own termination condition (cooperative stop_flag poll for
// bandwidth patterns, pattern_iteration sweeps for latency patterns).
type Generator interface {
	Handle(ctx *worker.Context) error
}

// Deps bundles the architecture primitives every generator needs; real
// code uses access.New()/memutils.New(), tests can substitute fakes.
type Deps struct {
	Access access.Primitives
	Flush  memutils.FlushFence
}

// DefaultDeps resolves the architecture-appropriate primitive set for the
// running host.
func DefaultDeps() Deps {
	return Deps{Access: access.New(), Flush: memutils.New()}
}
