package kmeans

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segmenter/model"
)

func TestUpdate(t *testing.T) {
	ds := twoBlobs(t)
	cs := centroidsOf([]float64{0, 0}, []float64{10, 10})

	next, err := Update(context.Background(), ds, model.Assignment{0, 0, 1, 1}, cs, StepOptions{})
	require.NoError(t, err)

	want := centroidsOf([]float64{0, 0.5}, []float64{10, 10.5})
	if diff := cmp.Diff(want, next, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Update() mismatch (-want +got):\n%s", diff)
	}

	// Inputs are left untouched.
	assert.Equal(t, centroidsOf([]float64{0, 0}, []float64{10, 10}), cs)
}

func TestUpdate_EmptyClusterKeepsPosition(t *testing.T) {
	ds := twoBlobs(t)
	cs := centroidsOf([]float64{0, 0}, []float64{100, 100}, []float64{-7, 3})

	next, err := Update(context.Background(), ds, model.Assignment{0, 0, 0, 0}, cs, StepOptions{})
	require.NoError(t, err)

	assert.Equal(t, model.Vector{100, 100}, next[1].Position)
	assert.Equal(t, model.Vector{-7, 3}, next[2].Position)
	for _, c := range next {
		for _, v := range c.Position {
			assert.False(t, math.IsNaN(v))
		}
	}

	// The retained position is a copy.
	next[1].Position[0] = 0
	assert.Equal(t, 100.0, cs[1].Position[0])
}

func TestUpdate_CentroidIsMean(t *testing.T) {
	ds := randomDataset(t, 3000, 5, 9)
	cs, err := RandomPoint{Distinct: true}.Initialize(ds, 5, newRand(4))
	require.NoError(t, err)

	a, err := Assign(context.Background(), ds, cs, StepOptions{})
	require.NoError(t, err)
	next, err := Update(context.Background(), ds, a, cs, StepOptions{Workers: 3})
	require.NoError(t, err)

	for _, c := range next {
		sum := make([]float64, ds.Dim())
		count := 0
		for i, cl := range a {
			if cl != c.ID {
				continue
			}
			count++
			for d, v := range ds.At(i) {
				sum[d] += v
			}
		}
		if count == 0 {
			continue
		}
		for d := range sum {
			assert.InDelta(t, sum[d]/float64(count), c.Position[d], 1e-9)
		}
	}
}

func TestUpdate_PreservesOrderAndIDs(t *testing.T) {
	ds := twoBlobs(t)
	cs := []model.Centroid{
		{ID: 1, Position: model.Vector{10, 10}},
		{ID: 0, Position: model.Vector{0, 0}},
	}

	next, err := Update(context.Background(), ds, model.Assignment{0, 0, 1, 1}, cs, StepOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, next[0].ID)
	assert.Equal(t, model.Vector{10, 10.5}, next[0].Position)
	assert.Equal(t, 0, next[1].ID)
}

func TestUpdate_InvalidInput(t *testing.T) {
	ds := twoBlobs(t)
	cs := centroidsOf([]float64{0, 0}, []float64{10, 10})

	_, err := Update(context.Background(), ds, model.Assignment{0, 1}, cs, StepOptions{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = Update(context.Background(), ds, model.Assignment{0, 1, 2, 1}, cs, StepOptions{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = Update(context.Background(), ds, model.Assignment{0, 0, 1, 1}, centroidsOf([]float64{0}, []float64{1}), StepOptions{})
	var dm *model.ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)
}

func TestMembers(t *testing.T) {
	members, err := Members(model.Assignment{2, 0, 2, 2}, 3)
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, []uint32{1}, members[0].ToArray())
	assert.True(t, members[1].IsEmpty())
	assert.Equal(t, []uint32{0, 2, 3}, members[2].ToArray())

	_, err = Members(model.Assignment{-1}, 1)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = Members(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
