package segmenter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/segmenter/blobstore"
	"github.com/hupe1980/segmenter/dataset"
	"github.com/hupe1980/segmenter/distance"
	"github.com/hupe1980/segmenter/kmeans"
	"github.com/hupe1980/segmenter/model"
)

// seedStream is the second PCG word; runs differ only by Config.Seed.
const seedStream = 0x9e3779b97f4a7c15

// Config describes a clustering run.
type Config struct {
	// K is the number of clusters.
	K int
	// Epsilon is the convergence threshold. Zero requires an exact fixed point.
	Epsilon float64
	// MaxIterations caps the loop. Zero means kmeans.DefaultMaxIterations.
	MaxIterations int
	// Init selects the seeding strategy.
	Init kmeans.Strategy
	// Seed makes runs reproducible: the same seed and dataset yield the same result.
	Seed uint64
	// Workers bounds per-step goroutines. <= 0 means GOMAXPROCS.
	Workers int
	// ParallelChunk > 0 splits each distance computation into chunks of
	// that many dimensions. Only worthwhile for very wide vectors.
	ParallelChunk int
	// InitialCentroids, when set, overrides Init with fixed positions.
	InitialCentroids [][]float64
}

// DefaultConfig returns the configuration used by KMeans(k) without further calls.
func DefaultConfig(k int) Config {
	return Config{
		K:             k,
		Epsilon:       kmeans.DefaultEpsilon,
		MaxIterations: kmeans.DefaultMaxIterations,
		Init:          kmeans.InitRandomPoint,
	}
}

// Segmenter clusters customer datasets. It is safe for concurrent use;
// each Fit owns its own run state.
type Segmenter struct {
	cfg  Config
	base kmeans.Config
	opts options
}

// New validates cfg and returns a Segmenter.
func New(cfg Config, optFns ...Option) (*Segmenter, error) {
	init, err := kmeans.NewInitializer(cfg.Init)
	if err != nil {
		return nil, err
	}

	reducer := distance.Sequential
	if cfg.ParallelChunk > 0 {
		reducer = distance.Parallel(cfg.ParallelChunk)
	}

	var initial []model.Vector
	if cfg.InitialCentroids != nil {
		initial = make([]model.Vector, len(cfg.InitialCentroids))
		for i, c := range cfg.InitialCentroids {
			initial[i] = model.Vector(c).Clone()
		}
	}

	base := kmeans.Config{
		K:                cfg.K,
		Epsilon:          cfg.Epsilon,
		MaxIterations:    cfg.MaxIterations,
		Initializer:      init,
		InitialCentroids: initial,
		Rand:             rand.New(rand.NewPCG(cfg.Seed, seedStream)),
		Workers:          cfg.Workers,
		Reducer:          reducer,
	}

	// Validate eagerly; the engine itself is rebuilt per run.
	eng, err := kmeans.NewEngine(base)
	if err != nil {
		return nil, translateError(err)
	}
	base = eng.Config()

	return &Segmenter{
		cfg:  cfg,
		base: base,
		opts: applyOptions(optFns),
	}, nil
}

// Config returns the configuration the Segmenter was built with.
func (s *Segmenter) Config() Config {
	return s.cfg
}

// Result is the outcome of a Fit.
type Result struct {
	*kmeans.Result

	RunID    string
	Seed     uint64
	Duration time.Duration
}

// Err returns ErrNonConvergence when the run stopped at the iteration cap.
func (r *Result) Err() error {
	if r.Converged() {
		return nil
	}
	return fmt.Errorf("%w after %d iterations", ErrNonConvergence, r.Iterations)
}

// Predict returns the cluster of the centroid nearest to p.
func (r *Result) Predict(p []float64) (int, error) {
	c, err := kmeans.Predict(p, r.Centroids)
	return c, translateError(err)
}

// Fit clusters ds. Non-convergence is not an error; inspect Result.Converged
// or Result.Err.
func (s *Segmenter) Fit(ctx context.Context, ds *model.Dataset) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	log := s.opts.logger.WithRunID(runID).WithK(s.cfg.K)
	if ds != nil {
		log = log.WithDimension(ds.Dim()).WithCount(ds.Len())
	}

	res, err := s.fit(ctx, ds, log)
	elapsed := time.Since(start)

	iterations, converged := 0, false
	if res != nil {
		res.RunID = runID
		res.Duration = elapsed
		iterations, converged = res.Iterations, res.Converged()
	}
	s.opts.metricsCollector.RecordRun(elapsed, iterations, converged, err)
	log.LogRun(ctx, res, elapsed, err)

	return res, err
}

func (s *Segmenter) fit(ctx context.Context, ds *model.Dataset, log *Logger) (*Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: dataset is nil", ErrInvalidConfiguration)
	}

	rc := s.opts.resources

	working := workingSetBytes(ds, s.cfg.K)
	if err := rc.AcquireMemory(working); err != nil {
		return nil, translateError(err)
	}
	defer rc.ReleaseMemory(working)

	want := s.base.Workers
	if want <= 0 {
		want = runtime.GOMAXPROCS(0)
	}
	workers, err := rc.AcquireWorkers(ctx, want)
	if err != nil {
		return nil, err
	}
	defer rc.ReleaseWorkers(workers)

	cfg := s.base
	// A fresh source per run keeps Fit reproducible regardless of call order.
	cfg.Rand = rand.New(rand.NewPCG(s.cfg.Seed, seedStream))
	cfg.Workers = workers
	cfg.OnIteration = func(st kmeans.IterationStats) {
		s.opts.metricsCollector.RecordIteration(st.Duration)
		log.LogIteration(ctx, st)
		if s.opts.onIteration != nil {
			s.opts.onIteration(st)
		}
	}

	eng, err := kmeans.NewEngine(cfg)
	if err != nil {
		return nil, translateError(err)
	}

	res, err := eng.Run(ctx, ds)
	if err != nil {
		return nil, translateError(err)
	}

	return &Result{Result: res, Seed: s.cfg.Seed}, nil
}

// FitVectors clusters plain rows.
func (s *Segmenter) FitVectors(ctx context.Context, rows [][]float64) (*Result, error) {
	ds, err := model.FromRows(rows)
	if err != nil {
		return nil, translateError(err)
	}
	return s.Fit(ctx, ds)
}

// Load reads a dataset through the Segmenter's resource controller, logger
// and metrics.
func (s *Segmenter) Load(ctx context.Context, store blobstore.BlobStore, name string, opts dataset.Options) (*model.Dataset, error) {
	if opts.Resources == nil {
		opts.Resources = s.opts.resources
	}

	start := time.Now()
	ds, stats, err := dataset.Load(ctx, store, name, opts)
	elapsed := time.Since(start)

	var (
		points int
		bytes  int64
	)
	if stats != nil {
		points, bytes = stats.Points, stats.ReadBytes
	}
	s.opts.metricsCollector.RecordLoad(points, bytes, elapsed, err)
	s.opts.logger.LogLoad(ctx, name, points, bytes, elapsed, err)

	return ds, translateError(err)
}

// workingSetBytes estimates the per-run allocations on top of the dataset:
// two centroid generations and two assignments.
func workingSetBytes(ds *model.Dataset, k int) int64 {
	return 2*int64(k)*int64(ds.Dim())*8 + 2*int64(ds.Len())*8
}
