package pattern

import "unsafe"

// toBytes views a raw buffer as a byte slice without copying, for the
// chain-encoding prologue that writes directly into a worker's buffer.
func toBytes(addr unsafe.Pointer, size int64) []byte {
	if addr == nil || size <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(addr), size)
}
