package kmeans

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/segmenter/model"
)

// ErrInvalidConfiguration is returned for unusable run parameters:
// K < 1, K > N, an empty dataset, a negative epsilon, a missing random
// source or a malformed centroid set.
var ErrInvalidConfiguration = errors.New("invalid configuration")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfiguration}, args...)...)
}

func validateK(n, k int) error {
	if n == 0 {
		return invalidf("dataset is empty")
	}
	if k < 1 {
		return invalidf("k must be >= 1, got %d", k)
	}
	if k > n {
		return invalidf("k (%d) exceeds number of points (%d)", k, n)
	}
	return nil
}

func validateEpsilon(eps float64) error {
	if math.IsNaN(eps) || eps < 0 {
		return invalidf("epsilon must be >= 0, got %v", eps)
	}
	return nil
}

// indexByID checks that the identifiers of cs are exactly [0, len(cs)) and
// that every position has dimension dim. It returns the slice position of
// each identifier.
func indexByID(cs []model.Centroid, dim int) ([]int, error) {
	if len(cs) == 0 {
		return nil, invalidf("no centroids")
	}

	pos := make([]int, len(cs))
	for i := range pos {
		pos[i] = -1
	}

	for i, c := range cs {
		if c.ID < 0 || c.ID >= len(cs) {
			return nil, invalidf("centroid id %d out of range [0,%d)", c.ID, len(cs))
		}
		if pos[c.ID] != -1 {
			return nil, invalidf("duplicate centroid id %d", c.ID)
		}
		if len(c.Position) != dim {
			return nil, &model.ErrDimensionMismatch{Index: c.ID, Expected: dim, Actual: len(c.Position)}
		}
		pos[c.ID] = i
	}

	return pos, nil
}
