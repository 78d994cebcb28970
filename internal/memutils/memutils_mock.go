//go:build (!amd64 && !arm64) || noasm

// Package memutils mock variant: plain Go, no cache-control intrinsics.
// Exists so the harness compiles and runs on hosts that lack the vector
// extensions; flush/fence become no-ops, which is observationally sound
// for measurement correctness (just not cache-accurate) since this variant
// is only used for the mock end-to-end property checks, never for real
// tier measurements.
package memutils

import "runtime"

type mockImpl struct{}

func (mockImpl) FlushRange(addr uintptr, n int) {
	// No cache-control instruction on this build; keep the pointer alive
	// through the no-op so callers relying on it as a barrier still see a
	// well-defined memory access.
	runtime.KeepAlive(addr)
}

func (mockImpl) Fence() {}

var defaultImpl FlushFence = mockImpl{}
