package jobsource

import (
	"errors"
	"testing"

	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/jobmodel"
)

const validBandwidthYAML = `
job_kind: bandwidth
num_threads: 4
thread_buffer_size: 64
numa_type: 0
socket_type: 0
loadstore_type: load
mem_alloc_type: contiguous_huge
bandwidth_pattern: simple
bw_load_pattern_block_size: 256
bw_store_pattern_block_size: 256
`

const validLatencyYAML = `
job_kind: 102
num_threads: 1
thread_buffer_size: 1
numa_type: 0
socket_type: 0
loadstore_type: load
mem_alloc_type: contiguous_huge
latency_pattern: stride
lt_pattern_access_size: 64
lt_pattern_block_size: 64
lt_pattern_stride_size: 4096
pattern_iteration: 8
`

func TestDecodeAcceptsStringAndIntAliases(t *testing.T) {
	bw, err := Decode([]byte(validBandwidthYAML))
	if err != nil {
		t.Fatalf("Decode(bandwidth) = %v, want nil error", err)
	}
	if bw.Kind != jobmodel.Bandwidth {
		t.Errorf("Kind = %v, want Bandwidth", bw.Kind)
	}
	if bw.LoadStore != jobmodel.Load {
		t.Errorf("LoadStore = %v, want Load", bw.LoadStore)
	}

	lat, err := Decode([]byte(validLatencyYAML))
	if err != nil {
		t.Fatalf("Decode(latency) = %v, want nil error", err)
	}
	if lat.Kind != jobmodel.Latency {
		t.Errorf("Kind = %v, want Latency (decoded from the numeric code 102)", lat.Kind)
	}
	if lat.LatencyPattern != jobmodel.LatencyStride {
		t.Errorf("LatencyPattern = %v, want LatencyStride", lat.LatencyPattern)
	}
}

func TestDecodeAppliesCoreLayoutOverride(t *testing.T) {
	data := validBandwidthYAML + "\ncores_per_socket: 16\nmax_sockets: 4\n"
	job, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode() = %v, want nil error", err)
	}
	if job.CoreLayout.CoresPerSocket != 16 || job.CoreLayout.MaxSockets != 4 {
		t.Errorf("CoreLayout = %+v, want {16 4}", job.CoreLayout)
	}
}

func TestDecodeDefaultsCoreLayoutWhenAbsent(t *testing.T) {
	job, err := Decode([]byte(validBandwidthYAML))
	if err != nil {
		t.Fatalf("Decode() = %v, want nil error", err)
	}
	if job.CoreLayout != jobmodel.DefaultCoreLayout {
		t.Errorf("CoreLayout = %+v, want default %+v", job.CoreLayout, jobmodel.DefaultCoreLayout)
	}
}

func TestDecodeRejectsUnrecognizedAlias(t *testing.T) {
	data := `
job_kind: not_a_real_kind
num_threads: 1
thread_buffer_size: 1
loadstore_type: load
mem_alloc_type: contiguous_huge
bandwidth_pattern: simple
bw_load_pattern_block_size: 64
bw_store_pattern_block_size: 64
`
	_, err := Decode([]byte(data))
	if err == nil {
		t.Fatal("Decode() = nil error, want Config error for unrecognized job_kind alias")
	}
	var benchErr *errs.Error
	if !errors.As(err, &benchErr) || benchErr.Kind != errs.Config {
		t.Fatalf("Decode() = %v, want errs.Config", err)
	}
}

func TestDecodeSurfacesValidationFailure(t *testing.T) {
	data := `
job_kind: bandwidth
num_threads: 4
thread_buffer_size: 64
loadstore_type: load
mem_alloc_type: contiguous_huge
bandwidth_pattern: simple
bw_load_pattern_block_size: 73
bw_store_pattern_block_size: 256
`
	_, err := Decode([]byte(data))
	if err == nil {
		t.Fatal("Decode() = nil error, want Config error for block size 73")
	}
	var benchErr *errs.Error
	if !errors.As(err, &benchErr) || benchErr.Kind != errs.Config {
		t.Fatalf("Decode() = %v, want errs.Config", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/to/job.yaml")
	if err == nil {
		t.Fatal("Load() = nil error, want error for missing file")
	}
}
