package kmeans

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segmenter/model"
	"github.com/hupe1980/segmenter/testutil"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func mustDataset(t testing.TB, rows ...[]float64) *model.Dataset {
	t.Helper()
	ds, err := model.FromRows(rows)
	require.NoError(t, err)
	return ds
}

func randomDataset(t testing.TB, n, dim int, seed uint64) *model.Dataset {
	t.Helper()
	return mustDataset(t, testutil.NewRNG(seed).Blobs(n, dim, 4, 20, 1)...)
}

func centroidsOf(positions ...[]float64) []model.Centroid {
	cs := make([]model.Centroid, len(positions))
	for i, p := range positions {
		cs[i] = model.Centroid{ID: i, Position: p}
	}
	return cs
}

// twoBlobs is the four-point scenario: two tight pairs far apart.
func twoBlobs(t testing.TB) *model.Dataset {
	return mustDataset(t, []float64{0, 0}, []float64{0, 1}, []float64{10, 10}, []float64{10, 11})
}
