package pattern

import (
	"encoding/gob"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/cxlbench/tiermark/internal/errs"
)

// chainBuildTimeout is the soft deadline on chain construction; running
// longer than this aborts with ChainBuildTimeout.
const chainBuildTimeout = 2 * time.Minute

// chainCacheDir holds cached pointer-chase permutations, keyed by chain
// length and worker index, so repeat runs measure an identical chain.
func chainCacheDir() string {
	return filepath.Join(os.TempDir(), "tiermark-chains")
}

func chainCachePath(chainLen, workerIndex int) string {
	return filepath.Join(chainCacheDir(), fmt.Sprintf("chain-%d-%d.gob", chainLen, workerIndex))
}

// loadOrBuildChain returns the cached permutation for (chainLen,
// workerIndex) if one exists, building and caching a fresh one otherwise.
// random selects a uniformly shuffled Hamiltonian cycle; !random produces
// the trivial sequential cycle 0->1->...->chainLen-1->0.
func loadOrBuildChain(chainLen, workerIndex int, random bool) ([]uint32, error) {
	if chainLen <= 0 {
		return nil, nil
	}
	path := chainCachePath(chainLen, workerIndex)
	if chain, err := readChain(path, chainLen); err == nil {
		return chain, nil
	}

	chain, err := buildChain(chainLen, random)
	if err != nil {
		return nil, err
	}
	if err := writeChain(path, chain); err != nil {
		// A cache write failure does not invalidate the measurement; the
		// chain is still usable, it just won't be reproducible next run.
		return chain, nil
	}
	return chain, nil
}

// buildChain constructs next[i] such that following it from 0 visits every
// index exactly once and returns to 0: a single Hamiltonian cycle, built by
// repeatedly picking a uniformly random unused successor. The elapsed-time
// check runs periodically (every 1024 picks) rather than on every
// iteration, to keep the check itself from dominating construction cost.
func buildChain(chainLen int, random bool) ([]uint32, error) {
	if !random {
		// Sequential chain: 0 -> 1 -> ... -> chainLen-1 -> 0.
		next := make([]uint32, chainLen)
		for i := 0; i < chainLen; i++ {
			next[i] = uint32((i + 1) % chainLen)
		}
		return next, nil
	}

	remaining := make([]uint32, chainLen)
	for i := range remaining {
		remaining[i] = uint32(i)
	}
	order := make([]uint32, 0, chainLen)
	start := time.Now()
	rng := rand.New(rand.NewSource(int64(chainLen)))

	for len(remaining) > 0 {
		if len(order)&1023 == 0 && time.Since(start) > chainBuildTimeout {
			return nil, errs.New(errs.ChainBuildTimeout, fmt.Errorf("chain construction exceeded %s for length %d", chainBuildTimeout, chainLen))
		}
		pick := rng.Intn(len(remaining))
		order = append(order, remaining[pick])
		remaining[pick] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}

	next := make([]uint32, chainLen)
	for i := 0; i < chainLen; i++ {
		next[order[i]] = order[(i+1)%chainLen]
	}
	return next, nil
}

func readChain(path string, chainLen int) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var chain []uint32
	if err := gob.NewDecoder(f).Decode(&chain); err != nil {
		return nil, err
	}
	if len(chain) != chainLen {
		return nil, fmt.Errorf("cached chain length %d does not match requested %d", len(chain), chainLen)
	}
	return chain, nil
}

func writeChain(path string, chain []uint32) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(chain); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// isHamiltonianCycle reports whether following next from 0 exactly
// chainLen times returns to 0 having visited every index once - the
// property the pointer-chase chain is required to satisfy.
func isHamiltonianCycle(next []uint32) bool {
	chainLen := len(next)
	if chainLen == 0 {
		return true
	}
	seen := make([]bool, chainLen)
	idx := uint32(0)
	for i := 0; i < chainLen; i++ {
		if int(idx) >= chainLen || seen[idx] {
			return false
		}
		seen[idx] = true
		idx = next[idx]
	}
	return idx == 0
}
