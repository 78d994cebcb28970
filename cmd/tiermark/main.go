// Command tiermark runs one memory-tier bandwidth/latency measurement job
// described by a YAML job file and reports the results to stdout and a
// result-log file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/cxlbench/tiermark/internal/coordinator"
	"github.com/cxlbench/tiermark/internal/jobsource"
	"github.com/cxlbench/tiermark/internal/resultlog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("tiermark", pflag.ContinueOnError)
	jobPath := flags.StringP("job", "j", "", "path to the YAML job file (required)")
	outDir := flags.StringP("out", "o", "./results", "directory under which a wall-clock-tagged result log is written")
	verbose := flags.BoolP("verbose", "v", false, "echo the job descriptor before running")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *jobPath == "" {
		fmt.Fprintln(os.Stderr, "tiermark: -job is required")
		return 2
	}

	job, err := jobsource.Load(*jobPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tiermark: %v\n", err)
		return 2
	}

	log := resultlog.New()
	if err := log.Open(*outDir); err != nil {
		fmt.Fprintf(os.Stderr, "tiermark: %v\n", err)
		return 2
	}
	defer log.Close()

	if *verbose {
		log.Appendf("job: %+v", job)
	}

	return coordinator.Run(job, log)
}
