package jobmodel

import (
	"errors"
	"testing"

	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/google/go-cmp/cmp"
)

func validBandwidthJob() JobInfo {
	return JobInfo{
		Kind:             Bandwidth,
		NumWorkers:       4,
		BufferSizeMiB:    64,
		LoadStore:        Load,
		Alloc:            ContiguousHuge,
		BandwidthPattern: BandwidthSimple,
		LoadBlockSize:    256,
		StoreBlockSize:   256,
		CoreLayout:       DefaultCoreLayout,
	}
}

func validLatencyJob() JobInfo {
	return JobInfo{
		Kind:              Latency,
		NumWorkers:        1,
		BufferSizeMiB:     1,
		LoadStore:         Load,
		Alloc:             ContiguousHuge,
		LatencyPattern:    LatencyStride,
		LatencyAccessSize: 64,
		LatencyBlockSize:  64,
		LatencyStride:     4096,
		PatternIteration:  8,
	}
}

func TestValidateAcceptsWellFormedJobs(t *testing.T) {
	for name, job := range map[string]JobInfo{
		"bandwidth": validBandwidthJob(),
		"latency":   validLatencyJob(),
	} {
		t.Run(name, func(t *testing.T) {
			if err := job.Validate(); err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestValidateRejectsBadBlockSize(t *testing.T) {
	job := validBandwidthJob()
	job.LoadBlockSize = 73
	err := job.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want Config error")
	}
	var benchErr *errs.Error
	if !errors.As(err, &benchErr) || benchErr.Kind != errs.Config {
		t.Fatalf("Validate() = %v, want errs.Config", err)
	}
}

func TestValidateRejectsLowPatternIteration(t *testing.T) {
	job := validLatencyJob()
	job.PatternIteration = 1
	if err := job.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for pattern_iteration < 2")
	}
}

func TestValidateRejectsUnknownJobKind(t *testing.T) {
	job := validBandwidthJob()
	job.Kind = JobKind(999)
	if err := job.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for unknown job kind")
	}
}

func TestClampAccessCount(t *testing.T) {
	cases := []struct {
		name       string
		bufferSize int64
		stride     int
		count      int
		want       int
	}{
		{"fits", 1 << 20, 64, 100, 100},
		{"clamped", 1024, 64, 100, 16},
		{"zero stride", 1024, 0, 100, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ClampAccessCount(c.bufferSize, c.stride, c.count)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("ClampAccessCount() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoreLayoutCoreFor(t *testing.T) {
	layout := CoreLayout{CoresPerSocket: 10, MaxSockets: 2}
	if got := layout.CoreFor(0, 0); got != 0 {
		t.Errorf("CoreFor(0,0) = %d, want 0", got)
	}
	if got := layout.CoreFor(0, 1); got != 10 {
		t.Errorf("CoreFor(0,1) = %d, want 10", got)
	}
	// Wrap: worker index >= CoresPerSocket adds a guard-lane offset.
	wrapped := layout.CoreFor(10, 0)
	if wrapped <= 10 {
		t.Errorf("CoreFor(10,0) = %d, want wrap past first socket", wrapped)
	}
}
