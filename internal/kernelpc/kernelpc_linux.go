//go:build linux

package kernelpc

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/cxlbench/tiermark/internal/errs"
)

const devicePath = "/dev/pointer_chasing"

// ioctl command numbers for magic 'p', commands 1 (run) and 2 (stop).
// Linux's _IOC encoding is dir<<30 | size<<16 | type<<8 | nr; reproduced
// here directly rather than through a helper, since the kernel module's
// own header is the only authority on these two command numbers.
const (
	pchIOCMagic     = uintptr('p')
	iocDirReadWrite = uintptr(3)
	pchIOCRun       = iocDirReadWrite<<30 | argsSize<<16 | pchIOCMagic<<8 | 1
	pchIOCStop      = pchIOCMagic<<8 | 2
)

const argsSize = uintptr(unsafe.Sizeof(Args{}))

// Device wraps one open file descriptor to /dev/pointer_chasing. The core
// issues at most one in-flight request per open Device.
type Device struct {
	mu sync.Mutex
	fd int

	stopOnce sync.Once
	sigCh    chan os.Signal
}

// Open opens the kernel collaborator's character device.
func Open() (*Device, error) {
	fd, err := unix.Open(devicePath, unix.O_RDWR, 0)
	if err != nil {
		return nil, errs.New(errs.KernelIoctl, fmt.Errorf("open %s: %w", devicePath, err))
	}
	d := &Device{fd: fd, sigCh: make(chan os.Signal, 1)}
	signal.Notify(d.sigCh, syscall.SIGINT)
	go d.watchSignal()
	return d, nil
}

func (d *Device) watchSignal() {
	if _, ok := <-d.sigCh; ok {
		_ = d.Stop()
	}
}

// Run issues the PCH_IOC_RUN request and blocks until the kernel thread
// reports completion, returning the filled-in Args and its derived Result.
func (d *Device) Run(args Args) (Args, Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(pchIOCRun), uintptr(unsafe.Pointer(&args)))
	if errno != 0 {
		return args, Result{}, errs.New(errs.KernelIoctl, fmt.Errorf("ioctl PCH_IOC_RUN: %w", errno))
	}
	return args, resultFrom(args), nil
}

// Stop issues the PCH_IOC_STOP request, translating a SIGINT (or an
// explicit caller request) into the kernel module's stop signal.
func (d *Device) Stop() error {
	var err error
	d.stopOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(pchIOCStop), 0)
		if errno != 0 {
			err = errs.New(errs.KernelIoctl, fmt.Errorf("ioctl PCH_IOC_STOP: %w", errno))
		}
	})
	return err
}

// Close stops watching SIGINT and closes the device file descriptor.
func (d *Device) Close() error {
	signal.Stop(d.sigCh)
	close(d.sigCh)
	d.mu.Lock()
	defer d.mu.Unlock()
	return unix.Close(d.fd)
}
