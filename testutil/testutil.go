package testutil

import (
	"math/rand/v2"
	"sync"
)

const streamMix = 0x9e3779b97f4a7c15

// RNG wraps a seeded PCG generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed^streamMix)),
		seed: seed,
	}
}

// Reset rewinds the generator to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed^streamMix))
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// FillUniform fills dst with values in [0, 1).
func (r *RNG) FillUniform(dst []float64) {
	r.FillUniformRange(dst, 0, 1)
}

// FillUniformRange fills dst with values in [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*span
	}
}

// UniformRows generates num rows with values in [0, 1).
// Uses a single backing array.
func (r *RNG) UniformRows(num, dim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	rows := make([][]float64, num)
	for i := range num {
		row := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range row {
			row[j] = r.rand.Float64()
		}
		rows[i] = row
	}
	return rows
}

// Blobs generates num rows around clusters centers placed on the diagonal,
// separation apart. Row i belongs to cluster i%clusters and carries
// Gaussian noise scaled by spread.
func (r *RNG) Blobs(num, dim, clusters int, separation, spread float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	rows := make([][]float64, num)
	for i := range num {
		center := float64(i%clusters) * separation
		row := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range row {
			row[j] = center + r.rand.NormFloat64()*spread
		}
		rows[i] = row
	}
	return rows
}

// Labels returns the cluster label Blobs assigns to each of num rows.
func Labels(num, clusters int) []int {
	labels := make([]int, num)
	for i := range labels {
		labels[i] = i % clusters
	}
	return labels
}
