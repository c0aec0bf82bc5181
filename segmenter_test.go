package segmenter_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segmenter"
	"github.com/hupe1980/segmenter/blobstore"
	"github.com/hupe1980/segmenter/dataset"
	"github.com/hupe1980/segmenter/kmeans"
	"github.com/hupe1980/segmenter/resource"
	"github.com/hupe1980/segmenter/testutil"
)

func blobs(n int, seed uint64) [][]float64 {
	return testutil.NewRNG(seed).Blobs(2*n, 2, 2, 100, 1)
}

func TestFit_OneDimensional(t *testing.T) {
	s, err := segmenter.KMeans(2).
		InitialCentroids([][]float64{{1}, {10}}).
		Build()
	require.NoError(t, err)

	res, err := s.FitVectors(context.Background(), [][]float64{{1}, {2}, {10}, {11}})
	require.NoError(t, err)

	assert.True(t, res.Converged())
	assert.NoError(t, res.Err())
	assert.Equal(t, []int{0, 0, 1, 1}, []int(res.Assignment))
	assert.Equal(t, []float64{1.5}, []float64(res.Centroids[0].Position))
	assert.Equal(t, []float64{10.5}, []float64(res.Centroids[1].Position))
	assert.NotEmpty(t, res.RunID)
}

func TestFit_Deterministic(t *testing.T) {
	rows := blobs(200, 3)

	s, err := segmenter.KMeans(4).Seed(11).Build()
	require.NoError(t, err)

	a, err := s.FitVectors(context.Background(), rows)
	require.NoError(t, err)
	b, err := s.FitVectors(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, a.Assignment, b.Assignment)
	assert.Equal(t, a.Centroids, b.Centroids)
	assert.Equal(t, a.Iterations, b.Iterations)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestFit_WorkerCountDoesNotChangeResult(t *testing.T) {
	rows := blobs(1000, 5)

	one, err := segmenter.KMeans(3).Seed(2).Workers(1).Build()
	require.NoError(t, err)
	many, err := segmenter.KMeans(3).Seed(2).Workers(8).Build()
	require.NoError(t, err)

	a, err := one.FitVectors(context.Background(), rows)
	require.NoError(t, err)
	b, err := many.FitVectors(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, a.Assignment, b.Assignment)
	assert.Equal(t, a.Centroids, b.Centroids)
}

func TestFit_Errors(t *testing.T) {
	s, err := segmenter.KMeans(3).Seed(1).Build()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.FitVectors(ctx, nil)
	assert.ErrorIs(t, err, segmenter.ErrInvalidConfiguration, "empty dataset")

	_, err = s.FitVectors(ctx, [][]float64{{1}, {2}})
	assert.ErrorIs(t, err, segmenter.ErrInvalidConfiguration, "k > n")

	_, err = s.FitVectors(ctx, [][]float64{{1, 2}, {3}, {4, 5}})
	var dm *segmenter.ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 1, dm.Index)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 1, dm.Actual)

	_, err = s.Fit(ctx, nil)
	assert.ErrorIs(t, err, segmenter.ErrInvalidConfiguration)
}

func TestFit_InitialCentroidDimension(t *testing.T) {
	s, err := segmenter.KMeans(2).InitialCentroids([][]float64{{0, 0}, {1}}).Build()
	require.NoError(t, err)

	_, err = s.FitVectors(context.Background(), [][]float64{{0, 0}, {1, 1}, {2, 2}})
	var dm *segmenter.ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)
}

func TestFit_Cancelled(t *testing.T) {
	s, err := segmenter.KMeans(2).Seed(1).Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.FitVectors(ctx, blobs(10, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFit_MetricsAndHook(t *testing.T) {
	metrics := &segmenter.BasicMetricsCollector{}

	var (
		mu    sync.Mutex
		iters []int
	)
	s, err := segmenter.KMeans(2).
		Seed(4).
		Metrics(metrics).
		OnIteration(func(st kmeans.IterationStats) {
			mu.Lock()
			iters = append(iters, st.Iteration)
			mu.Unlock()
		}).
		Build()
	require.NoError(t, err)

	res, err := s.FitVectors(context.Background(), blobs(50, 9))
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(0), stats.RunErrors)
	assert.Equal(t, int64(res.Iterations), stats.IterationCount)
	assert.Len(t, iters, res.Iterations)
	assert.Equal(t, 1, iters[0])

	_, err = s.Fit(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.GetStats().RunErrors)
}

func TestFit_MemoryBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})
	s, err := segmenter.KMeans(2).Seed(1).Resources(rc).Build()
	require.NoError(t, err)

	_, err = s.FitVectors(context.Background(), blobs(10, 1))
	assert.ErrorIs(t, err, segmenter.ErrResourceExhausted)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestFit_SharedWorkers(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxWorkers: 2})
	s, err := segmenter.KMeans(2).Seed(1).Workers(4).Resources(rc).Build()
	require.NoError(t, err)

	rows := blobs(100, 8)
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.FitVectors(context.Background(), rows)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestResult_Predict(t *testing.T) {
	s, err := segmenter.KMeans(2).InitialCentroids([][]float64{{0}, {10}}).Build()
	require.NoError(t, err)

	res, err := s.FitVectors(context.Background(), [][]float64{{0}, {1}, {9}, {10}})
	require.NoError(t, err)

	c, err := res.Predict([]float64{8})
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = res.Predict([]float64{1, 2})
	assert.Error(t, err)
}

func TestSegmenter_Load(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "MOCK_DATA.txt", []byte("19 15000 39 3\n21 15500 81 12\n60 90000 10 1\n")))

	var buf bytes.Buffer
	metrics := &segmenter.BasicMetricsCollector{}
	s, err := segmenter.KMeans(2).
		Seed(1).
		Metrics(metrics).
		Logger(segmenter.NewLogger(slog.NewTextHandler(&buf, nil))).
		Build()
	require.NoError(t, err)

	ds, err := s.Load(ctx, store, "MOCK_DATA.txt", dataset.Options{Schema: dataset.DemographicSchema})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(3), stats.LoadPoints)
	assert.Contains(t, buf.String(), "dataset loaded")

	_, err = s.Load(ctx, store, "missing.txt", dataset.Options{})
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.Equal(t, int64(1), metrics.GetStats().LoadErrors)
}
