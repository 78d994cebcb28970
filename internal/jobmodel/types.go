// Package jobmodel defines the immutable job description and the derived
// per-worker state the rest of the engine operates on.
package jobmodel

// JobKind selects the top-level benchmark the coordinator runs.
type JobKind int

const (
	BandwidthVsLatency JobKind = 100
	Bandwidth          JobKind = 101
	Latency            JobKind = 102
	PointerChase       JobKind = 200
)

func (k JobKind) String() string {
	switch k {
	case BandwidthVsLatency:
		return "bandwidth_vs_latency"
	case Bandwidth:
		return "bandwidth"
	case Latency:
		return "latency"
	case PointerChase:
		return "pointer_chase"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the four recognized job kinds.
func (k JobKind) Valid() bool {
	switch k {
	case BandwidthVsLatency, Bandwidth, Latency, PointerChase:
		return true
	default:
		return false
	}
}

// LoadStoreType selects the memory operation a pattern issues.
type LoadStoreType int

const (
	Load LoadStoreType = iota
	Store
	NTLoad
	NTStore
	LoadWithFlush
	StoreWithFlush
)

func (t LoadStoreType) String() string {
	switch t {
	case Load:
		return "load"
	case Store:
		return "store"
	case NTLoad:
		return "nt_load"
	case NTStore:
		return "nt_store"
	case LoadWithFlush:
		return "load_with_flush"
	case StoreWithFlush:
		return "store_with_flush"
	default:
		return "unknown"
	}
}

func (t LoadStoreType) Valid() bool {
	return t >= Load && t <= StoreWithFlush
}

// AllocType selects the allocation strategy backing a worker's buffer.
type AllocType int

const (
	ContiguousHuge    AllocType = 0
	NonContiguousHuge AllocType = 1
)

func (a AllocType) String() string {
	switch a {
	case ContiguousHuge:
		return "contiguous_huge"
	case NonContiguousHuge:
		return "non_contiguous_huge"
	default:
		return "unknown"
	}
}

func (a AllocType) Valid() bool {
	return a == ContiguousHuge || a == NonContiguousHuge
}

// LatencyPatternKind selects the access pattern for a LATENCY job.
type LatencyPatternKind int

const (
	LatencyStride         LatencyPatternKind = 0
	LatencyRandomPtrChase LatencyPatternKind = 1
)

func (p LatencyPatternKind) String() string {
	switch p {
	case LatencyStride:
		return "stride"
	case LatencyRandomPtrChase:
		return "random_pc"
	default:
		return "unknown"
	}
}

func (p LatencyPatternKind) Valid() bool {
	return p == LatencyStride || p == LatencyRandomPtrChase
}

// BandwidthPatternKind selects the access pattern for a BANDWIDTH job.
type BandwidthPatternKind int

const (
	BandwidthStride BandwidthPatternKind = 0
	BandwidthSimple BandwidthPatternKind = 1
)

func (p BandwidthPatternKind) String() string {
	switch p {
	case BandwidthStride:
		return "stride"
	case BandwidthSimple:
		return "simple"
	default:
		return "unknown"
	}
}

func (p BandwidthPatternKind) Valid() bool {
	return p == BandwidthStride || p == BandwidthSimple
}

// ValidBlockSize reports whether b is one of the four accepted block sizes.
func ValidBlockSize(b int) bool {
	switch b {
	case 64, 128, 256, 512:
		return true
	default:
		return false
	}
}

// Memory unit constants.
const (
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30
)

// CoreLayout describes the platform's core-per-socket topology, used to
// map (worker index, socket id) to a physical core.
type CoreLayout struct {
	CoresPerSocket int
	MaxSockets     int
}

// DefaultCoreLayout is used when the job file does not declare the
// platform's own topology.
var DefaultCoreLayout = CoreLayout{CoresPerSocket: 10, MaxSockets: 2}

// CoreFor maps a worker index to its physical core: the base offset is
// the socket's first core; for a worker index at or beyond one socket's
// core count, (MaxSockets-1)*CoresPerSocket + 1 is added to the base, which
// places it past the cores of the remaining sockets plus one guard core.
func (c CoreLayout) CoreFor(workerIndex, socketID int) int {
	base := socketID * c.CoresPerSocket
	if workerIndex >= c.CoresPerSocket {
		base += (c.MaxSockets-1)*c.CoresPerSocket + 1
	}
	return base + workerIndex
}
