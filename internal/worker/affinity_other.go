//go:build !linux

package worker

import "fmt"

// Thread affinity and SCHED_FIFO are Linux concepts; elsewhere this is
// always an Affinity error, which the caller treats as non-fatal.
func pinAndElevate(coreID int) error {
	return fmt.Errorf("CPU affinity and real-time scheduling are not supported on this platform")
}
