package kmeans

import (
	"context"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/segmenter/model"
)

// Members groups point indices by cluster identifier.
// The i-th bitmap holds the points assigned to cluster i.
func Members(a model.Assignment, k int) ([]*roaring.Bitmap, error) {
	if k < 1 {
		return nil, invalidf("k must be >= 1, got %d", k)
	}
	if uint64(len(a)) > math.MaxUint32 {
		return nil, invalidf("too many points for membership bitmaps: %d", len(a))
	}

	members := make([]*roaring.Bitmap, k)
	for c := range members {
		members[c] = roaring.New()
	}

	for i, c := range a {
		if c < 0 || c >= k {
			return nil, invalidf("point %d assigned to cluster %d outside [0,%d)", i, c, k)
		}
		members[c].Add(uint32(i))
	}

	return members, nil
}

// Update recomputes every centroid as the per-dimension mean of the points
// assigned to it. A centroid without points keeps its previous position.
//
// The input centroids are not modified; the result preserves their order and
// identifiers. Clusters are processed concurrently, each with one private
// accumulator.
func Update(ctx context.Context, ds *model.Dataset, a model.Assignment, centroids []model.Centroid, opts StepOptions) ([]model.Centroid, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, invalidf("dataset is empty")
	}
	if len(a) != ds.Len() {
		return nil, invalidf("assignment has %d entries for %d points", len(a), ds.Len())
	}
	if _, err := indexByID(centroids, ds.Dim()); err != nil {
		return nil, err
	}

	members, err := Members(a, len(centroids))
	if err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	next := make([]model.Centroid, len(centroids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, c := range centroids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			next[i] = mean(ds, members[c.ID], c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return next, nil
}

func mean(ds *model.Dataset, members *roaring.Bitmap, prev model.Centroid) model.Centroid {
	if members.IsEmpty() {
		// Empty cluster: keep the previous position instead of dividing by zero.
		return prev.Clone()
	}

	sum := make(model.Vector, ds.Dim())
	it := members.Iterator()
	for it.HasNext() {
		floats.Add(sum, ds.At(int(it.Next())))
	}
	floats.Scale(1/float64(members.GetCardinality()), sum)

	return model.Centroid{ID: prev.ID, Position: sum}
}
