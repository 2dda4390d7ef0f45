package sampling

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSampler(seed int64) *Sampler {
	return NewSamplerWithSource(rand.NewSource(seed))
}

// The sampler is unseeded in production, so these tests check properties of
// the index sequence, never literal values.

func TestIndices_LengthAndRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		n, k int
	}{
		{"small grid small k", 4, 4},
		{"small grid large k", 16, 2000},
		{"full size default", 1024, 1000},
		{"k below minimum", 64, 10},
		{"k zero", 8, 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestSampler(1)
			indices := s.Indices(tc.n, tc.k)

			want := tc.k
			if want < MinSamples {
				want = MinSamples
			}
			assert.GreaterOrEqual(t, len(indices), want)

			for _, idx := range indices {
				assert.GreaterOrEqual(t, idx, 0)
				assert.Less(t, idx, tc.n*tc.n)
			}
		})
	}
}

func TestIndices_BlockedPhaseExactCount(t *testing.T) {
	t.Parallel()

	// n divisible by floor(sqrt(k)): the blocked phase yields exactly
	// floor(sqrt(k))² indices, one per block.
	const n, k = 64, 4096 // floor(sqrt(4096)) = 64, blockSize = 1
	s := newTestSampler(7)
	indices := s.Indices(n, k)

	require.Len(t, indices, 4096)

	// blockSize 1 forces every pixel exactly once
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		assert.False(t, seen[idx], "blocked phase revisited index %d", idx)
		seen[idx] = true
	}
}

func TestIndices_OnePerBlock(t *testing.T) {
	t.Parallel()

	const n, k = 32, 16 // 4 blocks per side, blockSize 8, topped up to MinSamples
	s := newTestSampler(3)
	indices := s.Indices(n, k)

	blocked := indices[:BlockedCount(n, k)]
	require.Len(t, blocked, 16)

	// each of the 16 blocks contributed exactly one sample, in row-major
	// block order
	for b, idx := range blocked {
		row, col := idx/n, idx%n
		assert.Equal(t, b/4, row/8, "index %d out of its block row", idx)
		assert.Equal(t, b%4, col/8, "index %d out of its block column", idx)
	}
}

func TestBlockedCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4, BlockedCount(4, 4))
	assert.Equal(t, 961, BlockedCount(1024, 1000)) // 31² blocks, size 33
	assert.Equal(t, 0, BlockedCount(4, 0))
	assert.Equal(t, 0, BlockedCount(2, 1000)) // more blocks than rows
}

func TestIndices_CoverageBias(t *testing.T) {
	t.Parallel()

	// N=10, K=9: blockSize 3, steps 3, so row/col 9 is only reachable by
	// top-up draws. The blocked phase must stay within [0, 9).
	const n, k = 10, 9
	s := newTestSampler(11)
	indices := s.Indices(n, k)

	for _, idx := range indices[:BlockedCount(n, k)] {
		assert.Less(t, idx/n, 9)
		assert.Less(t, idx%n, 9)
	}
}

func TestIndices_Reproducible(t *testing.T) {
	t.Parallel()

	a := newTestSampler(42).Indices(128, 500)
	b := newTestSampler(42).Indices(128, 500)
	assert.Equal(t, a, b)

	c := newTestSampler(43).Indices(128, 500)
	assert.NotEqual(t, a, c)
}

func TestMask(t *testing.T) {
	t.Parallel()

	m := NewMask([]int{0, 5, 5, 15}, 4)
	assert.Equal(t, 3, m.Count())
	assert.True(t, m.At(0, 0))
	assert.True(t, m.At(1, 1))
	assert.True(t, m.At(3, 3))
	assert.False(t, m.At(2, 2))
}

func TestMask_CoversBlockedGrid(t *testing.T) {
	t.Parallel()

	const n, k = 8, 64 // blockSize 1: every pixel sampled once
	s := newTestSampler(5)
	m := NewMask(s.Indices(n, k)[:BlockedCount(n, k)], n)
	assert.Equal(t, 64, m.Count())
}
