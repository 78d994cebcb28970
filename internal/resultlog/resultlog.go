// Package resultlog implements the write-only result sink the rest of the
// engine reports through: a sink accepting timestamped lines, given a
// test-info preamble, one line per worker, and a summary line per
// aggregation. Every line is timestamped against an elapsed-time stopwatch
// started at Open and written to both stdout and a result file under a
// wall-clock-tagged directory.
package resultlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cxlbench/tiermark/internal/timer"
)

// Logger is a write-only sink. The zero value is not usable; construct
// with New. Safe for concurrent use by multiple goroutines.
type Logger struct {
	mu    sync.Mutex
	clock *timer.Timer
	file  *os.File
	buf   *bufio.Writer
	w     io.Writer
	path  string
}

// New returns a Logger that writes only to stdout until Open is called.
func New() *Logger {
	return &Logger{clock: timer.New(), w: os.Stdout}
}

// Open creates baseDir/<wall-clock-tag>/result.log (creating directories
// as needed), starts the elapsed-time clock every Append line is
// timestamped against, and directs subsequent Append calls to both stdout
// and the new file.
func (l *Logger) Open(baseDir string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Join(baseDir, timer.WallClockTag())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create result log directory %s: %w", dir, err)
	}
	l.path = filepath.Join(dir, "result.log")
	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("create result log file %s: %w", l.path, err)
	}
	fmt.Fprintf(os.Stdout, "Log file path: %s\n", l.path)

	l.file = f
	l.buf = bufio.NewWriter(f)
	l.w = io.MultiWriter(os.Stdout, l.buf)
	l.clock.Start()
	return nil
}

// Append writes one timestamped line to the sink: "[elapsedNS]message".
func (l *Logger) Append(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[%d]%s\n", l.clock.ElapsedNS(), message)
	if l.buf != nil {
		l.buf.Flush()
	}
}

// Appendf is Append with fmt.Sprintf-style formatting.
func (l *Logger) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

// Close flushes and closes the backing file, if Open was called.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Path returns the result file path, or "" if Open has not been called.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}
