package kmeans

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/hupe1980/segmenter/distance"
	"github.com/hupe1980/segmenter/model"
)

// Initializer selects the K starting centroids of a run.
//
// Implementations must return exactly k centroids with identifiers 0..k-1
// whose positions are copies (not aliases) of dataset points, and must draw
// all randomness from rng.
type Initializer interface {
	Initialize(ds *model.Dataset, k int, rng *rand.Rand) ([]model.Centroid, error)
}

// InitializerFunc adapts a function to the Initializer interface.
type InitializerFunc func(ds *model.Dataset, k int, rng *rand.Rand) ([]model.Centroid, error)

// Initialize implements Initializer.
func (f InitializerFunc) Initialize(ds *model.Dataset, k int, rng *rand.Rand) ([]model.Centroid, error) {
	return f(ds, k, rng)
}

// Strategy names a built-in initializer.
type Strategy int

const (
	// InitRandomPoint picks K points uniformly at random; duplicates allowed.
	InitRandomPoint Strategy = iota
	// InitRandomDistinct picks K distinct point indices uniformly at random.
	InitRandomDistinct
	// InitKMeansPlusPlus uses D² weighted seeding.
	InitKMeansPlusPlus
)

func (s Strategy) String() string {
	switch s {
	case InitRandomPoint:
		return "random"
	case InitRandomDistinct:
		return "random-distinct"
	case InitKMeansPlusPlus:
		return "kmeans++"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// ParseStrategy parses the textual form produced by Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random", "random-point":
		return InitRandomPoint, nil
	case "random-distinct", "distinct":
		return InitRandomDistinct, nil
	case "kmeans++", "kmeans-plus-plus", "kmeanspp":
		return InitKMeansPlusPlus, nil
	default:
		return 0, invalidf("unknown initialization strategy %q", s)
	}
}

// NewInitializer returns the built-in initializer for s.
func NewInitializer(s Strategy) (Initializer, error) {
	switch s {
	case InitRandomPoint:
		return RandomPoint{}, nil
	case InitRandomDistinct:
		return RandomPoint{Distinct: true}, nil
	case InitKMeansPlusPlus:
		return KMeansPlusPlus{}, nil
	default:
		return nil, invalidf("unknown initialization strategy %v", s)
	}
}

// RandomPoint draws each centroid from a uniformly random dataset point.
type RandomPoint struct {
	// Distinct draws K different point indices. Points with equal values
	// may still yield equal positions.
	Distinct bool
}

// Initialize implements Initializer.
func (p RandomPoint) Initialize(ds *model.Dataset, k int, rng *rand.Rand) ([]model.Centroid, error) {
	if err := checkInitArgs(ds, k, rng); err != nil {
		return nil, err
	}

	n := ds.Len()
	centroids := make([]model.Centroid, k)

	if p.Distinct {
		perm := rng.Perm(n)
		for i := 0; i < k; i++ {
			centroids[i] = model.Centroid{ID: i, Position: ds.At(perm[i]).Clone()}
		}
		return centroids, nil
	}

	for i := 0; i < k; i++ {
		centroids[i] = model.Centroid{ID: i, Position: ds.At(rng.IntN(n)).Clone()}
	}
	return centroids, nil
}

// KMeansPlusPlus chooses the first centroid uniformly and every further one
// with probability proportional to its squared distance from the nearest
// centroid chosen so far.
type KMeansPlusPlus struct{}

// Initialize implements Initializer.
func (KMeansPlusPlus) Initialize(ds *model.Dataset, k int, rng *rand.Rand) ([]model.Centroid, error) {
	if err := checkInitArgs(ds, k, rng); err != nil {
		return nil, err
	}

	n := ds.Len()
	centroids := make([]model.Centroid, 0, k)
	centroids = append(centroids, model.Centroid{ID: 0, Position: ds.At(rng.IntN(n)).Clone()})

	nearest := make([]float64, n)
	for j := 0; j < n; j++ {
		nearest[j] = distance.SquaredEuclidean(ds.At(j), centroids[0].Position)
	}

	for i := 1; i < k; i++ {
		var total float64
		for _, d := range nearest {
			total += d
		}

		var idx int
		if total == 0 {
			// Every point coincides with a chosen centroid.
			idx = rng.IntN(n)
		} else {
			idx = pickWeighted(nearest, rng.Float64()*total)
		}

		c := model.Centroid{ID: i, Position: ds.At(idx).Clone()}
		centroids = append(centroids, c)

		for j := 0; j < n; j++ {
			if d := distance.SquaredEuclidean(ds.At(j), c.Position); d < nearest[j] {
				nearest[j] = d
			}
		}
	}

	return centroids, nil
}

// pickWeighted returns the first index whose running weight sum exceeds
// target. If rounding leaves target unreached it returns the last index with
// positive weight, never one that is already a centroid. At least one weight
// must be positive.
func pickWeighted(weights []float64, target float64) int {
	last := -1
	var cumulative float64
	for j, w := range weights {
		if w <= 0 {
			continue
		}
		last = j
		cumulative += w
		if cumulative > target {
			return j
		}
	}
	return last
}

func checkInitArgs(ds *model.Dataset, k int, rng *rand.Rand) error {
	n := 0
	if ds != nil {
		n = ds.Len()
	}
	if err := validateK(n, k); err != nil {
		return err
	}
	if rng == nil {
		return invalidf("random source is required")
	}
	return nil
}
