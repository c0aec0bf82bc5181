package distance

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// ErrDimensionMismatch is the panic value raised when two vectors of
// different length are compared.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("distance: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64

func mustMatch(a, b []float64) {
	if len(a) != len(b) {
		panic(&ErrDimensionMismatch{Expected: len(a), Actual: len(b)})
	}
}

// Euclidean returns the L2 distance between a and b.
// It panics with *ErrDimensionMismatch if the lengths differ.
func Euclidean(a, b []float64) float64 {
	mustMatch(a, b)
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, 2)
}

// SquaredEuclidean returns the squared L2 distance between a and b.
// It panics with *ErrDimensionMismatch if the lengths differ.
func SquaredEuclidean(a, b []float64) float64 {
	mustMatch(a, b)
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Reducer selects how the per-dimension sum of a single distance is computed.
type Reducer struct {
	// Chunk is the number of dimensions summed per goroutine.
	// Zero (the default) sums all dimensions sequentially.
	Chunk int
}

// Sequential sums all dimensions on the calling goroutine.
var Sequential = Reducer{}

// Parallel splits the dimensions into chunks of the given size and sums them
// concurrently. Only pays off for very wide vectors.
func Parallel(chunk int) Reducer {
	return Reducer{Chunk: chunk}
}

// IsParallel reports whether r fans out across goroutines.
func (r Reducer) IsParallel() bool {
	return r.Chunk > 0
}

func (r Reducer) String() string {
	if !r.IsParallel() {
		return "sequential"
	}
	return fmt.Sprintf("parallel(%d)", r.Chunk)
}

// Provider returns the Euclidean distance function for the given reducer.
func Provider(r Reducer) Func {
	if !r.IsParallel() {
		return Euclidean
	}
	chunk := r.Chunk
	return func(a, b []float64) float64 {
		return parallelEuclidean(a, b, chunk)
	}
}

func parallelEuclidean(a, b []float64, chunk int) float64 {
	mustMatch(a, b)
	if len(a) <= chunk {
		return Euclidean(a, b)
	}

	parts := (len(a) + chunk - 1) / chunk
	partial := make([]float64, parts)

	var wg sync.WaitGroup
	for p := 0; p < parts; p++ {
		lo := p * chunk
		hi := min(lo+chunk, len(a))
		wg.Add(1)
		go func() {
			defer wg.Done()
			partial[p] = SquaredEuclidean(a[lo:hi], b[lo:hi])
		}()
	}
	wg.Wait()

	return math.Sqrt(floats.Sum(partial))
}
