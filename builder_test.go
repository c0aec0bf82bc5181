package segmenter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segmenter"
	"github.com/hupe1980/segmenter/kmeans"
)

func TestBuilder_Defaults(t *testing.T) {
	s, err := segmenter.KMeans(3).Build()
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, 3, cfg.K)
	assert.Equal(t, kmeans.DefaultEpsilon, cfg.Epsilon)
	assert.Equal(t, kmeans.DefaultMaxIterations, cfg.MaxIterations)
	assert.Equal(t, kmeans.InitRandomPoint, cfg.Init)
}

func TestBuilder_FullOptions(t *testing.T) {
	s, err := segmenter.KMeans(5).
		Epsilon(0).
		MaxIterations(10).
		Seed(99).
		Distinct().
		Workers(2).
		ParallelDistance(64).
		Metrics(&segmenter.BasicMetricsCollector{}).
		Logger(segmenter.NoopLogger()).
		Build()
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, 0.0, cfg.Epsilon)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, kmeans.InitRandomDistinct, cfg.Init)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 64, cfg.ParallelChunk)
}

func TestBuilder_Immutable(t *testing.T) {
	base := segmenter.KMeans(2).Seed(1)
	pp := base.KMeansPlusPlus()

	assert.Equal(t, kmeans.InitRandomPoint, base.Config().Init)
	assert.Equal(t, kmeans.InitKMeansPlusPlus, pp.Config().Init)
}

func TestBuilder_Invalid(t *testing.T) {
	tests := []struct {
		name string
		b    segmenter.KMeansBuilder
	}{
		{"zero k", segmenter.KMeans(0)},
		{"negative epsilon", segmenter.KMeans(2).Epsilon(-1)},
		{"negative iterations", segmenter.KMeans(2).MaxIterations(-1)},
		{"centroid count", segmenter.KMeans(2).InitialCentroids([][]float64{{1}})},
		{"unknown strategy", segmenter.KMeans(2).Strategy(kmeans.Strategy(42))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			assert.ErrorIs(t, err, segmenter.ErrInvalidConfiguration)
		})
	}
}
