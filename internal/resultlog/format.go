package resultlog

import (
	"fmt"
	"strings"

	"github.com/cxlbench/tiermark/internal/cpuinfo"
	"github.com/cxlbench/tiermark/internal/handler"
	"github.com/cxlbench/tiermark/internal/jobmodel"
)

// TestInfoPreamble formats the banner enumerating every JobInfo field,
// emitted once before any worker starts.
func TestInfoPreamble(job jobmodel.JobInfo) string {
	accessType := "REMOTE"
	if job.SocketID == job.NumaNode {
		accessType = "LOCAL"
	}
	accessType = fmt.Sprintf("%s_%d_%d", accessType, job.SocketID, job.NumaNode)

	var b strings.Builder
	rule := strings.Repeat("=", 88)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Test Information:")
	fmt.Fprintf(&b, "Job Kind: %s\n", job.Kind)
	fmt.Fprintf(&b, "Buffer Size: %dMiB\n", job.BufferSizeMiB)
	fmt.Fprintf(&b, "Number of Threads: %d\n", job.NumWorkers)
	fmt.Fprintf(&b, "Access Type: %s\n", accessType)
	fmt.Fprintf(&b, "Access Primitives: %s (%d-byte vectors)\n", cpuinfo.CurrentLevel(), cpuinfo.CurrentWidth())
	fmt.Fprintf(&b, "LoadStore Type: %s\n", job.LoadStore)
	fmt.Fprintf(&b, "Alloc Type: %s\n", job.Alloc)
	fmt.Fprintf(&b, "Latency Pattern: %s\n", job.LatencyPattern)
	fmt.Fprintf(&b, "Latency Block Size: %d bytes\n", job.LatencyBlockSize)
	fmt.Fprintf(&b, "Latency Access Size: %d bytes\n", job.LatencyAccessSize)
	fmt.Fprintf(&b, "Latency Stride: %d bytes\n", job.LatencyStride)
	fmt.Fprintf(&b, "Bandwidth Pattern: %s\n", job.BandwidthPattern)
	fmt.Fprintf(&b, "Bandwidth Load Block Size: %d bytes\n", job.LoadBlockSize)
	fmt.Fprintf(&b, "Bandwidth Store Block Size: %d bytes\n", job.StoreBlockSize)
	fmt.Fprintf(&b, "Bandwidth Stride: %d bytes\n", job.BandwidthStrideBytes)
	fmt.Fprintf(&b, "Bandwidth Access Count: %d\n", job.BandwidthAccessCount)
	fmt.Fprintf(&b, "Delay: %d ns\n", job.InterAccessDelayNS)
	fmt.Fprintf(&b, "Pattern Iteration: %d\n", job.PatternIteration)
	fmt.Fprint(&b, rule)
	return b.String()
}

// ReportLines formats a handler.Report into the per-worker and summary
// lines the Logger contract expects: one line per worker, a bandwidth
// total when the job measured bandwidth, a latency summary when it
// measured latency.
func ReportLines(r handler.Report) []string {
	lines := make([]string, 0, len(r.Workers)+2)
	for i, w := range r.Workers {
		// In a BANDWIDTH_VS_LATENCY job, worker 0 ran the latency pattern;
		// its result appears only in the Measured Latency summary, never as
		// a per-worker line.
		if r.JobKind == jobmodel.BandwidthVsLatency && i == 0 {
			continue
		}
		if r.HasBandwidth {
			lines = append(lines, fmt.Sprintf(
				"Worker : [%d] Latency : %d ns, Size : %d bytes, Bandwidth : %.4f MiB/s",
				w.CoreID, w.NanosecondsElapsed, w.BytesTouched, w.MiBPerSec()))
		} else {
			lines = append(lines, fmt.Sprintf("Worker : [%d] Latency : %d ns", w.CoreID, w.NanosecondsElapsed))
		}
	}
	if r.HasBandwidth {
		lines = append(lines, fmt.Sprintf("Total Bandwidth : %.4f MiB/s", r.TotalBandwidthMiBs))
	}
	if r.HasLatency {
		label := "Average Latency"
		if r.JobKind == jobmodel.BandwidthVsLatency {
			label = "Measured Latency"
		}
		lines = append(lines, fmt.Sprintf("%s : %.4f ns", label, r.MeanLatency))
	}
	return lines
}

// WriteReport appends every report line to the logger in order.
func WriteReport(l *Logger, r handler.Report) {
	for _, line := range ReportLines(r) {
		l.Append(line)
	}
}
