//go:build !linux

package kernelpc

import (
	"fmt"

	"github.com/cxlbench/tiermark/internal/errs"
)

// Device is a non-functional stand-in outside Linux: there is no
// /dev/pointer_chasing character device to open.
type Device struct{}

// Open always fails on non-Linux builds.
func Open() (*Device, error) {
	return nil, errs.New(errs.KernelIoctl, fmt.Errorf("kernel pointer-chase collaborator is only available on linux"))
}

// Run always fails on non-Linux builds.
func (d *Device) Run(args Args) (Args, Result, error) {
	return args, Result{}, errs.New(errs.KernelIoctl, fmt.Errorf("kernel pointer-chase collaborator is only available on linux"))
}

// Stop is a no-op on non-Linux builds.
func (d *Device) Stop() error { return nil }

// Close is a no-op on non-Linux builds.
func (d *Device) Close() error { return nil }
