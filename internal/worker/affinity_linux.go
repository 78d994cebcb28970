//go:build linux

package worker

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// schedFIFO is Linux's SCHED_FIFO policy number; pairing it with the
// highest FIFO priority available gives each worker the best chance of
// making forward progress without being preempted mid-measurement.
const schedFIFO = 1

type schedParam struct {
	priority int32
}

// pinAndElevate locks the calling goroutine to its OS thread, sets that
// thread's CPU affinity to a single core, and raises its scheduling class
// to real-time FIFO at the maximum priority. Failures here are Affinity
// errors: non-fatal, logged by the caller, measurement proceeds unpinned.
func pinAndElevate(coreID int) error {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(coreID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("SchedSetaffinity(core=%d): %w", coreID, err)
	}

	maxPrio, err := maxFIFOPriority()
	if err != nil {
		return fmt.Errorf("sched_get_priority_max: %w", err)
	}
	param := schedParam{priority: int32(maxPrio)}
	_, _, errno := unix.Syscall(unix.SYS_SCHED_SETSCHEDULER, 0, uintptr(schedFIFO), uintptr(unsafe.Pointer(&param)))
	if errno != 0 {
		return fmt.Errorf("sched_setscheduler(SCHED_FIFO, prio=%d): %w", maxPrio, errno)
	}
	return nil
}

func maxFIFOPriority() (int, error) {
	r1, _, errno := unix.Syscall(unix.SYS_SCHED_GET_PRIORITY_MAX, uintptr(schedFIFO), 0, 0)
	if errno != 0 {
		return 0, errno
	}
	return int(r1), nil
}
