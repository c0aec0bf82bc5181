package kmeans

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/segmenter/distance"
	"github.com/hupe1980/segmenter/model"
)

// minPointsPerWorker keeps tiny inputs on the calling goroutine.
const minPointsPerWorker = 512

// StepOptions tunes how a single assignment or update step executes.
// The zero value uses GOMAXPROCS workers and the sequential Euclidean kernel.
type StepOptions struct {
	// Workers bounds the goroutines used by a step. <= 0 means GOMAXPROCS.
	Workers int
	// Distance overrides the Euclidean kernel, e.g. distance.Provider(distance.Parallel(256)).
	Distance distance.Func
}

func (o StepOptions) withDefaults() StepOptions {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Distance == nil {
		o.Distance = distance.Euclidean
	}
	return o
}

// Assign maps every point of ds to the identifier of its nearest centroid.
//
// All centroids are scanned in identifier order, whatever their slice order,
// and ties resolve to the lowest identifier. Points are split into contiguous
// ranges processed concurrently; every worker writes only its own slots of
// the result.
func Assign(ctx context.Context, ds *model.Dataset, centroids []model.Centroid, opts StepOptions) (model.Assignment, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, invalidf("dataset is empty")
	}
	pos, err := indexByID(centroids, ds.Dim())
	if err != nil {
		return nil, err
	}
	centroids = byID(centroids, pos)

	opts = opts.withDefaults()
	n := ds.Len()
	out := make(model.Assignment, n)

	workers := min(opts.Workers, (n+minPointsPerWorker-1)/minPointsPerWorker)
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		assignRange(ds, centroids, out, 0, n, opts.Distance)
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			assignRange(ds, centroids, out, lo, hi, opts.Distance)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func assignRange(ds *model.Dataset, centroids []model.Centroid, out model.Assignment, lo, hi int, dist distance.Func) {
	for i := lo; i < hi; i++ {
		out[i] = nearest(ds.At(i), centroids, dist)
	}
}

// nearest returns the identifier of the closest centroid to p.
// centroids must be ordered by identifier.
func nearest(p model.Vector, centroids []model.Centroid, dist distance.Func) int {
	best := 0
	minDist := dist(p, centroids[0].Position)
	for id := 1; id < len(centroids); id++ {
		if d := dist(p, centroids[id].Position); d < minDist {
			minDist = d
			best = id
		}
	}
	return best
}

// byID reorders cs so that cs[id].ID == id, using the positions from indexByID.
func byID(cs []model.Centroid, pos []int) []model.Centroid {
	ordered := make([]model.Centroid, len(cs))
	for id, i := range pos {
		ordered[id] = cs[i]
	}
	return ordered
}

// Predict returns the identifier of the centroid nearest to p. Ties resolve
// to the lowest identifier.
func Predict(p model.Vector, centroids []model.Centroid) (int, error) {
	pos, err := indexByID(centroids, len(p))
	if err != nil {
		return -1, err
	}
	return nearest(p, byID(centroids, pos), distance.Euclidean), nil
}
