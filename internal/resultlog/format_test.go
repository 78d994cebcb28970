package resultlog

import (
	"strings"
	"testing"

	"github.com/cxlbench/tiermark/internal/handler"
	"github.com/cxlbench/tiermark/internal/jobmodel"
)

func TestTestInfoPreambleLocalVsRemote(t *testing.T) {
	local := jobmodel.JobInfo{Kind: jobmodel.Bandwidth, SocketID: 0, NumaNode: 0, NumWorkers: 1, BufferSizeMiB: 64}
	if got := TestInfoPreamble(local); !strings.Contains(got, "LOCAL_0_0") {
		t.Errorf("TestInfoPreamble() = %q, want it to contain LOCAL_0_0", got)
	}

	remote := jobmodel.JobInfo{Kind: jobmodel.Bandwidth, SocketID: 0, NumaNode: 1, NumWorkers: 1, BufferSizeMiB: 64}
	if got := TestInfoPreamble(remote); !strings.Contains(got, "REMOTE_0_1") {
		t.Errorf("TestInfoPreamble() = %q, want it to contain REMOTE_0_1", got)
	}
}

func TestTestInfoPreambleReportsAccessPrimitives(t *testing.T) {
	got := TestInfoPreamble(jobmodel.JobInfo{Kind: jobmodel.Bandwidth, NumWorkers: 1, BufferSizeMiB: 64})
	if !strings.Contains(got, "Access Primitives: ") {
		t.Errorf("TestInfoPreamble() = %q, want an Access Primitives line", got)
	}
}

func TestReportLinesBandwidth(t *testing.T) {
	r := handler.Report{
		JobKind:            jobmodel.Bandwidth,
		HasBandwidth:       true,
		TotalBandwidthMiBs: 2,
		Workers: []handler.WorkerResult{
			{CoreID: 3, BytesTouched: jobmodel.MiB, NanosecondsElapsed: 1e9},
		},
	}
	lines := ReportLines(r)
	if len(lines) != 2 {
		t.Fatalf("ReportLines() = %d lines, want 2 (one worker + total)", len(lines))
	}
	if !strings.Contains(lines[0], "Worker : [3]") || !strings.Contains(lines[0], "Bandwidth : 1.0000 MiB/s") {
		t.Errorf("worker line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Total Bandwidth : 2.0000 MiB/s") {
		t.Errorf("summary line = %q", lines[1])
	}
}

func TestReportLinesBandwidthVsLatencyOmitsWorkerZeroLine(t *testing.T) {
	r := handler.Report{
		JobKind:            jobmodel.BandwidthVsLatency,
		HasBandwidth:       true,
		HasLatency:         true,
		TotalBandwidthMiBs: 3,
		MeanLatency:        50,
		Workers: []handler.WorkerResult{
			{CoreID: 0, NanosecondsElapsed: 50},
			{CoreID: 1, BytesTouched: jobmodel.MiB, NanosecondsElapsed: 1e9},
			{CoreID: 2, BytesTouched: jobmodel.MiB, NanosecondsElapsed: 1e9},
			{CoreID: 3, BytesTouched: jobmodel.MiB, NanosecondsElapsed: 1e9},
		},
	}
	lines := ReportLines(r)
	// Three bandwidth lines, a total, and a single latency line: worker 0
	// appears only in the Measured Latency summary.
	if len(lines) != 5 {
		t.Fatalf("ReportLines() = %d lines %q, want 5", len(lines), lines)
	}
	for _, line := range lines[:3] {
		if strings.Contains(line, "Worker : [0]") {
			t.Errorf("line %q reports worker 0, which must not get a per-worker line", line)
		}
		if !strings.Contains(line, "Bandwidth") {
			t.Errorf("line %q should report bandwidth", line)
		}
	}
	if !strings.Contains(lines[3], "Total Bandwidth") {
		t.Errorf("line 4 = %q, want the bandwidth total", lines[3])
	}
	if !strings.Contains(lines[4], "Measured Latency") {
		t.Errorf("line 5 = %q, want the Measured Latency summary", lines[4])
	}
}

func TestReportLinesLatencyUsesAverageLabel(t *testing.T) {
	r := handler.Report{
		JobKind:     jobmodel.Latency,
		HasLatency:  true,
		MeanLatency: 100,
		Workers:     []handler.WorkerResult{{CoreID: 0, NanosecondsElapsed: 100}},
	}
	lines := ReportLines(r)
	last := lines[len(lines)-1]
	if !strings.Contains(last, "Average Latency") {
		t.Errorf("last line = %q, want Average Latency label", last)
	}
}
