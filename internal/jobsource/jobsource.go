// Package jobsource loads a JobInfo from a YAML job file. Enumerated
// fields accept either the integer codes from the job-descriptor contract
// or a human-readable string alias (job_kind: bandwidth as well as
// job_kind: 101).
package jobsource

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/jobmodel"
)

// rawJob is the YAML schema: one document covers all four job kinds.
// Enum fields are decoded through yaml.Node so they can accept either an
// int code or a string alias.
type rawJob struct {
	JobKind          yaml.Node `yaml:"job_kind"`
	NumThreads       int       `yaml:"num_threads"`
	ThreadBufferSize int       `yaml:"thread_buffer_size"` // MiB
	NumaType         int       `yaml:"numa_type"`
	SocketType       int       `yaml:"socket_type"`
	LoadStoreType    yaml.Node `yaml:"loadstore_type"`
	MemAllocType     yaml.Node `yaml:"mem_alloc_type"`
	LatencyPattern   yaml.Node `yaml:"latency_pattern"`
	BandwidthPattern yaml.Node `yaml:"bandwidth_pattern"`

	BwLoadPatternBlockSize  int `yaml:"bw_load_pattern_block_size"`
	BwStorePatternBlockSize int `yaml:"bw_store_pattern_block_size"`
	BwPatternStrideSize     int `yaml:"bw_pattern_stride_size"`
	BwPatternAccessCount    int `yaml:"bw_pattern_access_count"`

	LtPatternBlockSize  int `yaml:"lt_pattern_block_size"`
	LtPatternAccessSize int `yaml:"lt_pattern_access_size"`
	LtPatternStrideSize int `yaml:"lt_pattern_stride_size"`

	Delay            int `yaml:"delay"`
	PatternIteration int `yaml:"pattern_iteration"`

	CoresPerSocket int `yaml:"cores_per_socket"`
	MaxSockets     int `yaml:"max_sockets"`
}

var jobKindAliases = map[string]int{
	"bandwidth_vs_latency": int(jobmodel.BandwidthVsLatency),
	"bandwidth":            int(jobmodel.Bandwidth),
	"latency":              int(jobmodel.Latency),
	"pointer_chase":        int(jobmodel.PointerChase),
}

var loadStoreAliases = map[string]int{
	"load":             int(jobmodel.Load),
	"store":            int(jobmodel.Store),
	"nt_load":          int(jobmodel.NTLoad),
	"nt_store":         int(jobmodel.NTStore),
	"load_with_flush":  int(jobmodel.LoadWithFlush),
	"store_with_flush": int(jobmodel.StoreWithFlush),
}

var allocAliases = map[string]int{
	"contiguous_huge":     int(jobmodel.ContiguousHuge),
	"non_contiguous_huge": int(jobmodel.NonContiguousHuge),
}

var latencyPatternAliases = map[string]int{
	"stride":    int(jobmodel.LatencyStride),
	"random_pc": int(jobmodel.LatencyRandomPtrChase),
}

var bandwidthPatternAliases = map[string]int{
	"stride": int(jobmodel.BandwidthStride),
	"simple": int(jobmodel.BandwidthSimple),
}

// Load reads and decodes the YAML job file at path into a validated
// JobInfo. Validation failures surface as *errs.Error of Kind Config,
// exactly as JobInfo.Validate reports them for a programmatically built
// job.
func Load(path string) (jobmodel.JobInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jobmodel.JobInfo{}, errs.New(errs.Config, fmt.Errorf("read job file %s: %w", path, err))
	}
	return Decode(data)
}

// Decode parses a YAML document already read into memory, for callers that
// don't have (or don't want) a filesystem path — e.g. tests, or a job
// embedded in a larger request.
func Decode(data []byte) (jobmodel.JobInfo, error) {
	var raw rawJob
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return jobmodel.JobInfo{}, errs.New(errs.Config, fmt.Errorf("parse job file: %w", err))
	}

	kind, err := decodeEnum(raw.JobKind, jobKindAliases)
	if err != nil {
		return jobmodel.JobInfo{}, errs.New(errs.Config, fmt.Errorf("job_kind: %w", err))
	}
	ldst, err := decodeEnum(raw.LoadStoreType, loadStoreAliases)
	if err != nil {
		return jobmodel.JobInfo{}, errs.New(errs.Config, fmt.Errorf("loadstore_type: %w", err))
	}
	alloc, err := decodeEnum(raw.MemAllocType, allocAliases)
	if err != nil {
		return jobmodel.JobInfo{}, errs.New(errs.Config, fmt.Errorf("mem_alloc_type: %w", err))
	}
	latPattern, err := decodeEnum(raw.LatencyPattern, latencyPatternAliases)
	if err != nil {
		return jobmodel.JobInfo{}, errs.New(errs.Config, fmt.Errorf("latency_pattern: %w", err))
	}
	bwPattern, err := decodeEnum(raw.BandwidthPattern, bandwidthPatternAliases)
	if err != nil {
		return jobmodel.JobInfo{}, errs.New(errs.Config, fmt.Errorf("bandwidth_pattern: %w", err))
	}

	layout := jobmodel.DefaultCoreLayout
	if raw.CoresPerSocket > 0 {
		layout.CoresPerSocket = raw.CoresPerSocket
	}
	if raw.MaxSockets > 0 {
		layout.MaxSockets = raw.MaxSockets
	}

	job := jobmodel.JobInfo{
		Kind:                 jobmodel.JobKind(kind),
		NumWorkers:           raw.NumThreads,
		BufferSizeMiB:        raw.ThreadBufferSize,
		NumaNode:             raw.NumaType,
		SocketID:             raw.SocketType,
		LoadStore:            jobmodel.LoadStoreType(ldst),
		Alloc:                jobmodel.AllocType(alloc),
		LatencyPattern:       jobmodel.LatencyPatternKind(latPattern),
		BandwidthPattern:     jobmodel.BandwidthPatternKind(bwPattern),
		LoadBlockSize:        raw.BwLoadPatternBlockSize,
		StoreBlockSize:       raw.BwStorePatternBlockSize,
		BandwidthStrideBytes: raw.BwPatternStrideSize,
		BandwidthAccessCount: raw.BwPatternAccessCount,
		LatencyAccessSize:    raw.LtPatternAccessSize,
		LatencyBlockSize:     raw.LtPatternBlockSize,
		LatencyStride:        raw.LtPatternStrideSize,
		InterAccessDelayNS:   raw.Delay,
		PatternIteration:     raw.PatternIteration,
		CoreLayout:           layout,
	}

	if err := job.Validate(); err != nil {
		return jobmodel.JobInfo{}, err
	}
	return job, nil
}

// decodeEnum accepts a YAML scalar that is either an integer code or one of
// aliases' string keys. A zero-value (unset) node decodes to 0, matching a
// field absent from the document being zero-valued and caught by
// Validate's Config checks.
func decodeEnum(node yaml.Node, aliases map[string]int) (int, error) {
	if node.Kind == 0 {
		return 0, nil
	}
	var asInt int
	if err := node.Decode(&asInt); err == nil {
		return asInt, nil
	}
	var asStr string
	if err := node.Decode(&asStr); err != nil {
		return 0, fmt.Errorf("must be an integer code or a recognized string alias")
	}
	v, ok := aliases[asStr]
	if !ok {
		return 0, fmt.Errorf("unrecognized alias %q", asStr)
	}
	return v, nil
}
