package memutils

import (
	"testing"
	"unsafe"
)

func TestNewReturnsUsableImpl(t *testing.T) {
	impl := New()
	if impl == nil {
		t.Fatal("New() = nil")
	}
	buf := make([]byte, 128)
	// FlushRange and Fence must not panic on a real, non-zero address.
	impl.FlushRange(uintptr(unsafe.Pointer(&buf[0])), len(buf))
	impl.Fence()
}
