package coordinator

import (
	"fmt"
	"testing"

	"github.com/cxlbench/tiermark/internal/errs"
	"github.com/cxlbench/tiermark/internal/jobmodel"
)

func TestPreflightCheckNonPointerChaseIsVacuous(t *testing.T) {
	job := jobmodel.JobInfo{Kind: jobmodel.Bandwidth}
	if err := preflightCheck(job); err != nil {
		t.Errorf("preflightCheck() = %v, want nil for non-pointer-chase job", err)
	}
}

func TestPreflightCheckPointerChase(t *testing.T) {
	tests := []struct {
		name      string
		blockNum  int
		stride    int
		bufferMiB int
		wantErr   bool
	}{
		{"passes when walked region fits inside test size", 1024, 64, 1, false},
		{"fails when walked region covers the whole test size", 16384, 64, 1, true},
		{"fails when walked region overruns test size", 32768, 64, 1, true},
		{"vacuous when block count unset", 0, 64, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := jobmodel.JobInfo{
				Kind:                 jobmodel.PointerChase,
				BandwidthAccessCount: tt.blockNum,
				LatencyStride:        tt.stride,
				BufferSizeMiB:        tt.bufferMiB,
			}
			err := preflightCheck(job)
			if (err != nil) != tt.wantErr {
				t.Errorf("preflightCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestArgsFromJobUsesFlushForFlushVariants(t *testing.T) {
	job := jobmodel.JobInfo{
		Kind:                 jobmodel.PointerChase,
		LoadStore:            jobmodel.LoadWithFlush,
		BandwidthAccessCount: 10,
		LatencyStride:        64,
		PatternIteration:     3,
		SocketID:             1,
	}
	args := argsFromJob(job)
	if args.UseFlush != 1 {
		t.Errorf("args.UseFlush = %d, want 1 for LoadWithFlush", args.UseFlush)
	}
	if args.BlockNum != 10 || args.StrideSize != 64 || args.Repeat != 3 {
		t.Errorf("args = %+v, unexpected field values", args)
	}
}

func TestArgsFromJobNoFlushForPlainLoad(t *testing.T) {
	job := jobmodel.JobInfo{Kind: jobmodel.PointerChase, LoadStore: jobmodel.Load}
	args := argsFromJob(job)
	if args.UseFlush != 0 {
		t.Errorf("args.UseFlush = %d, want 0 for plain Load", args.UseFlush)
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("IsFatal(nil) = true, want false")
	}
	if !IsFatal(fmt.Errorf("plain error")) {
		t.Error("IsFatal(plain error) = false, want true (no Kind to consult)")
	}
	if IsFatal(errs.New(errs.Affinity, fmt.Errorf("pin failed"))) {
		t.Error("IsFatal(Affinity) = true, want false")
	}
	if !IsFatal(errs.New(errs.AllocFailed, fmt.Errorf("mmap failed"))) {
		t.Error("IsFatal(AllocFailed) = false, want true")
	}
}
