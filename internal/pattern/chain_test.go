package pattern

import (
	"path/filepath"
	"testing"
)

func TestBuildChainSequential(t *testing.T) {
	next, err := buildChain(5, false)
	if err != nil {
		t.Fatalf("buildChain() error = %v", err)
	}
	want := []uint32{1, 2, 3, 4, 0}
	if len(next) != len(want) {
		t.Fatalf("buildChain() = %v, want length %d", next, len(want))
	}
	for i := range want {
		if next[i] != want[i] {
			t.Errorf("next[%d] = %d, want %d", i, next[i], want[i])
		}
	}
	if !isHamiltonianCycle(next) {
		t.Error("sequential chain is not a Hamiltonian cycle")
	}
}

func TestBuildChainRandomIsHamiltonianCycle(t *testing.T) {
	for _, n := range []int{1, 2, 3, 16, 257} {
		next, err := buildChain(n, true)
		if err != nil {
			t.Fatalf("buildChain(%d, true) error = %v", n, err)
		}
		if !isHamiltonianCycle(next) {
			t.Errorf("buildChain(%d, true) = %v is not a Hamiltonian cycle", n, next)
		}
	}
}

func TestBuildChainZeroLength(t *testing.T) {
	next, err := buildChain(0, false)
	if err != nil {
		t.Fatalf("buildChain(0) error = %v", err)
	}
	if len(next) != 0 {
		t.Errorf("buildChain(0) = %v, want empty", next)
	}
}

func TestIsHamiltonianCycleRejectsShortCircuit(t *testing.T) {
	// 0 -> 1 -> 0, never visiting index 2: not a full cycle over 3 nodes.
	next := []uint32{1, 0, 2}
	if isHamiltonianCycle(next) {
		t.Error("isHamiltonianCycle() = true for a chain with a short sub-cycle")
	}
}

func TestIsHamiltonianCycleEmptyIsTriviallyTrue(t *testing.T) {
	if !isHamiltonianCycle(nil) {
		t.Error("isHamiltonianCycle(nil) = false, want true")
	}
}

func TestWriteChainThenReadChainRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.gob")
	want := []uint32{1, 2, 3, 0}

	if err := writeChain(path, want); err != nil {
		t.Fatalf("writeChain() error = %v", err)
	}
	got, err := readChain(path, len(want))
	if err != nil {
		t.Fatalf("readChain() error = %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("readChain()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReadChainRejectsLengthMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.gob")
	if err := writeChain(path, []uint32{1, 2, 0}); err != nil {
		t.Fatalf("writeChain() error = %v", err)
	}
	if _, err := readChain(path, 5); err == nil {
		t.Error("readChain() error = nil, want a length-mismatch error")
	}
}

func TestLoadOrBuildChainZeroLength(t *testing.T) {
	chain, err := loadOrBuildChain(0, 0, false)
	if err != nil {
		t.Fatalf("loadOrBuildChain(0) error = %v", err)
	}
	if chain != nil {
		t.Errorf("loadOrBuildChain(0) = %v, want nil", chain)
	}
}
