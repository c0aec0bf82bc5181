package kmeans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segmenter/model"
)

func TestRandomPoint_Deterministic(t *testing.T) {
	ds := randomDataset(t, 100, 3, 1)

	a, err := RandomPoint{}.Initialize(ds, 5, newRand(7))
	require.NoError(t, err)
	b, err := RandomPoint{}.Initialize(ds, 5, newRand(7))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	require.Len(t, a, 5)
	for i, c := range a {
		assert.Equal(t, i, c.ID)
		assert.Len(t, c.Position, 3)
	}
}

func TestRandomPoint_CopiesPositions(t *testing.T) {
	ds := mustDataset(t, []float64{1, 2})

	cs, err := RandomPoint{}.Initialize(ds, 1, newRand(1))
	require.NoError(t, err)
	cs[0].Position[0] = 99

	assert.Equal(t, model.Vector{1, 2}, ds.At(0), "dataset must not be aliased")
}

func TestRandomPoint_Distinct(t *testing.T) {
	ds := mustDataset(t, []float64{1}, []float64{2}, []float64{3}, []float64{4})

	for seed := uint64(0); seed < 20; seed++ {
		cs, err := RandomPoint{Distinct: true}.Initialize(ds, 4, newRand(seed))
		require.NoError(t, err)

		seen := map[float64]bool{}
		for _, c := range cs {
			seen[c.Position[0]] = true
		}
		assert.Len(t, seen, 4, "seed %d", seed)
	}
}

func TestKMeansPlusPlus_SpreadsCentroids(t *testing.T) {
	ds := mustDataset(t, []float64{0, 0}, []float64{0, 1}, []float64{1000, 1000}, []float64{1000, 1001})

	for seed := uint64(0); seed < 20; seed++ {
		cs, err := KMeansPlusPlus{}.Initialize(ds, 2, newRand(seed))
		require.NoError(t, err)
		require.Len(t, cs, 2)

		// D² weighting makes the near pair practically unreachable.
		assert.NotEqual(t, cs[0].Position[0], cs[1].Position[0], "seed %d", seed)
	}
}

func TestKMeansPlusPlus_IdenticalPoints(t *testing.T) {
	ds := mustDataset(t, []float64{3, 3}, []float64{3, 3}, []float64{3, 3})

	cs, err := KMeansPlusPlus{}.Initialize(ds, 3, newRand(1))
	require.NoError(t, err)
	for _, c := range cs {
		assert.Equal(t, model.Vector{3, 3}, c.Position)
	}
}

func TestPickWeighted(t *testing.T) {
	weights := []float64{1, 0, 2, 0}

	assert.Equal(t, 0, pickWeighted(weights, 0))
	assert.Equal(t, 0, pickWeighted(weights, 0.5))
	assert.Equal(t, 2, pickWeighted(weights, 1))
	assert.Equal(t, 2, pickWeighted(weights, 2.9))

	// A target at the total (rounding) falls back to the last positive weight,
	// not the trailing zero-weight point.
	assert.Equal(t, 2, pickWeighted(weights, 3))
	assert.Equal(t, 2, pickWeighted(weights, 3.5))
}

func TestKMeansPlusPlus_NeverRepicksChosenPoint(t *testing.T) {
	ds := mustDataset(t, []float64{0}, []float64{1}, []float64{5}, []float64{5})

	for seed := uint64(0); seed < 50; seed++ {
		cs, err := KMeansPlusPlus{}.Initialize(ds, 3, newRand(seed))
		require.NoError(t, err)

		seen := map[float64]bool{}
		for _, c := range cs {
			assert.False(t, seen[c.Position[0]], "seed %d picked %v twice", seed, c.Position)
			seen[c.Position[0]] = true
		}
	}
}

func TestInitialize_InvalidConfiguration(t *testing.T) {
	ds := twoBlobs(t)
	inits := []Initializer{RandomPoint{}, RandomPoint{Distinct: true}, KMeansPlusPlus{}}

	for _, init := range inits {
		_, err := init.Initialize(ds, 0, newRand(1))
		assert.ErrorIs(t, err, ErrInvalidConfiguration)

		_, err = init.Initialize(ds, 5, newRand(1))
		assert.ErrorIs(t, err, ErrInvalidConfiguration)

		_, err = init.Initialize(nil, 1, newRand(1))
		assert.ErrorIs(t, err, ErrInvalidConfiguration)

		_, err = init.Initialize(ds, 2, nil)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	}
}

func TestStrategy(t *testing.T) {
	tests := []struct {
		in       string
		expected Strategy
	}{
		{"random", InitRandomPoint},
		{"", InitRandomPoint},
		{"Random-Distinct", InitRandomDistinct},
		{"kmeans++", InitKMeansPlusPlus},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, err := ParseStrategy(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s)

			init, err := NewInitializer(s)
			require.NoError(t, err)
			assert.NotNil(t, init)
		})
	}

	_, err := ParseStrategy("forgy")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewInitializer(Strategy(42))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, "Unknown(42)", Strategy(42).String())
	assert.Equal(t, "kmeans++", InitKMeansPlusPlus.String())
}
