// Package sampling draws spatially distributed pixel samples from square rasters.
package sampling

import (
	"math"
	"math/rand"
	"time"
)

// MinSamples is the floor on the number of indices a draw returns. Small
// sample requests are topped up with uniform draws so the training table
// never starves the regressor.
const MinSamples = 1000

// Sampler draws flat pixel indices from an N×N grid. Production samplers are
// unseeded on purpose: repeated training runs should visit different pixels.
// Tests inject a fixed source via NewSamplerWithSource.
type Sampler struct {
	rnd *rand.Rand
}

// NewSampler returns a time-seeded sampler.
func NewSampler() *Sampler {
	return NewSamplerWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewSamplerWithSource returns a sampler driven by the given random source.
func NewSamplerWithSource(src rand.Source) *Sampler {
	return &Sampler{rnd: rand.New(src)}
}

// Indices returns at least max(k, MinSamples) flat indices in [0, n²).
//
// The draw runs in two phases. The blocked phase partitions the grid into a
// regular sub-grid with floor(sqrt(k)) blocks per side and draws exactly one
// uniform pixel per block, so every region of the map contributes a sample.
// The top-up phase then appends uniform draws over the whole grid (which may
// repeat positions) until the floor is met.
//
// When n is not divisible by the block size, the trailing rows and columns
// are unreachable in the blocked phase and only appear via top-up draws.
// This is a known coverage bias of the sub-grid partition, kept so sample
// layouts stay comparable with earlier runs.
func (s *Sampler) Indices(n, k int) []int {
	target := k
	if target < MinSamples {
		target = MinSamples
	}
	indices := make([]int, 0, target)

	if blocksPerSide := int(math.Sqrt(float64(k))); blocksPerSide > 0 && blocksPerSide <= n {
		blockSize := n / blocksPerSide
		steps := n / blockSize
		for i := 0; i < steps; i++ {
			for j := 0; j < steps; j++ {
				x := i*blockSize + s.rnd.Intn(blockSize)
				y := j*blockSize + s.rnd.Intn(blockSize)
				indices = append(indices, x*n+y)
			}
		}
	}

	for len(indices) < target {
		x := s.rnd.Intn(n)
		y := s.rnd.Intn(n)
		indices = append(indices, x*n+y)
	}

	return indices
}

// BlockedCount reports how many indices the blocked phase alone yields for a
// grid of side n and a request of k samples. Exposed for diagnostics; the
// top-up phase fills the rest.
func BlockedCount(n, k int) int {
	blocksPerSide := int(math.Sqrt(float64(k)))
	if blocksPerSide < 1 || blocksPerSide > n {
		return 0
	}
	blockSize := n / blocksPerSide
	steps := n / blockSize
	return steps * steps
}

// Mask is the boolean sample layout for one crop, kept for diagnostics.
type Mask struct {
	N     int
	Cells []bool
}

// NewMask marks the sampled positions on an n×n grid.
func NewMask(indices []int, n int) *Mask {
	m := &Mask{N: n, Cells: make([]bool, n*n)}
	for _, idx := range indices {
		if idx >= 0 && idx < len(m.Cells) {
			m.Cells[idx] = true
		}
	}
	return m
}

// At reports whether the pixel at (row, col) was sampled.
func (m *Mask) At(row, col int) bool {
	return m.Cells[row*m.N+col]
}

// Count returns the number of distinct sampled positions.
func (m *Mask) Count() int {
	c := 0
	for _, set := range m.Cells {
		if set {
			c++
		}
	}
	return c
}
