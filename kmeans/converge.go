package kmeans

import (
	"github.com/hupe1980/segmenter/distance"
	"github.com/hupe1980/segmenter/model"
)

// HasConverged reports whether every centroid moved by at most epsilon.
//
// Centroids are paired by identifier, not by slice position. An epsilon of
// zero requires an exact fixed point; +Inf always converges.
func HasConverged(prev, next []model.Centroid, epsilon float64) (bool, error) {
	if err := validateEpsilon(epsilon); err != nil {
		return false, err
	}

	moved, err := shifts(prev, next)
	if err != nil {
		return false, err
	}

	for _, s := range moved {
		if !(s <= epsilon) {
			return false, nil
		}
	}
	return true, nil
}

// MaxShift returns the largest distance any centroid moved between prev and next.
func MaxShift(prev, next []model.Centroid) (float64, error) {
	moved, err := shifts(prev, next)
	if err != nil {
		return 0, err
	}

	var maxShift float64
	for _, s := range moved {
		maxShift = max(maxShift, s)
	}
	return maxShift, nil
}

// shifts returns the movement of each centroid indexed by identifier.
func shifts(prev, next []model.Centroid) ([]float64, error) {
	if len(prev) != len(next) {
		return nil, invalidf("centroid count changed from %d to %d", len(prev), len(next))
	}
	if len(prev) == 0 {
		return nil, invalidf("no centroids")
	}

	dim := len(prev[0].Position)
	prevPos, err := indexByID(prev, dim)
	if err != nil {
		return nil, err
	}
	nextPos, err := indexByID(next, dim)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(prev))
	for id := range out {
		out[id] = distance.Euclidean(prev[prevPos[id]].Position, next[nextPos[id]].Position)
	}
	return out, nil
}
