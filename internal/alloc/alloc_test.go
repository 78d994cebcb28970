package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxlbench/tiermark/internal/jobmodel"
)

func TestMmapAllocatorAllocateDeallocateRoundTrip(t *testing.T) {
	a := NewMmapAllocator(false)

	addr, err := a.Allocate(4096, -1)
	require.NoError(t, err)
	require.NotNil(t, addr)

	err = a.Deallocate(addr, 4096)
	assert.NoError(t, err)
}

func TestMmapAllocatorZeroSizeIsNoop(t *testing.T) {
	a := NewMmapAllocator(false)

	addr, err := a.Allocate(0, -1)
	require.NoError(t, err)
	assert.Nil(t, addr)

	assert.NoError(t, a.Deallocate(nil, 0))
}

func TestForSelectsAllocatorByType(t *testing.T) {
	t.Cleanup(func() { _ = Shutdown() })

	a, err := For(jobmodel.NonContiguousHuge)
	require.NoError(t, err)
	assert.IsType(t, &MmapAllocator{}, a)

	b, err := For(jobmodel.ContiguousHuge)
	require.NoError(t, err)
	assert.IsType(t, &PhysContigAllocator{}, b)
}

func TestForReturnsSameSingletonOnRepeatedCalls(t *testing.T) {
	t.Cleanup(func() { _ = Shutdown() })

	first, err := For(jobmodel.NonContiguousHuge)
	require.NoError(t, err)
	second, err := For(jobmodel.NonContiguousHuge)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestForRejectsUnknownAllocType(t *testing.T) {
	_, err := For(jobmodel.AllocType(99))
	assert.Error(t, err)
}

func TestShutdownForgetsSingletons(t *testing.T) {
	first, err := For(jobmodel.NonContiguousHuge)
	require.NoError(t, err)

	require.NoError(t, Shutdown())

	second, err := For(jobmodel.NonContiguousHuge)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
