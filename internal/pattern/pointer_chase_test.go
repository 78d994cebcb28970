package pattern

import (
	"testing"
	"unsafe"

	"github.com/cxlbench/tiermark/internal/worker"
)

func TestMax1(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-1, 1},
		{0, 1},
		{1, 1},
		{7, 7},
	}
	for _, tt := range tests {
		if got := max1(tt.n); got != tt.want {
			t.Errorf("max1(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestWriteLE64(t *testing.T) {
	buf := make([]byte, 8)
	writeLE64(buf, 0, 0x0102030405060708)
	want := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("buf[%d] = %#x, want %#x", i, buf[i], want[i])
		}
	}
}

func TestEncodeChainIntoBuffer(t *testing.T) {
	buf := make([]byte, 32)
	ctx := &worker.Context{Addr: unsafe.Pointer(&buf[0]), Size: int64(len(buf))}
	next := []uint32{1, 2, 3, 0}

	encodeChainIntoBuffer(ctx, next, 8)

	for i, v := range next {
		got := uint64(buf[i*8]) | uint64(buf[i*8+1])<<8 | uint64(buf[i*8+2])<<16 | uint64(buf[i*8+3])<<24
		if got != uint64(v) {
			t.Errorf("slot %d = %d, want %d", i, got, v)
		}
	}
}

func TestEncodeChainIntoBufferStopsAtBufferEnd(t *testing.T) {
	buf := make([]byte, 8) // room for exactly one 8-byte slot
	ctx := &worker.Context{Addr: unsafe.Pointer(&buf[0]), Size: int64(len(buf))}
	next := []uint32{1, 2, 3, 0}

	// Must not panic writing past the buffer for the remaining entries.
	encodeChainIntoBuffer(ctx, next, 8)
}
