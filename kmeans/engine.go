package kmeans

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/segmenter/distance"
	"github.com/hupe1980/segmenter/model"
)

const (
	// DefaultEpsilon is the convergence threshold used by DefaultConfig.
	DefaultEpsilon = 0.001
	// DefaultMaxIterations caps the iteration loop when Config.MaxIterations is zero.
	DefaultMaxIterations = 300
)

// State is a phase of a clustering run.
type State int

const (
	Uninitialized State = iota
	Initialized
	Iterating
	Converged
	MaxIterationsReached
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max-iterations-reached"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == Converged || s == MaxIterationsReached
}

// IterationStats describes one assignment+update round.
type IterationStats struct {
	Iteration     int
	Shift         float64 // largest centroid movement
	Changed       int     // points whose cluster changed
	EmptyClusters int
	Duration      time.Duration
}

// Config holds the parameters of a clustering run.
type Config struct {
	// K is the number of clusters (1 <= K <= N).
	K int

	// Epsilon is the convergence threshold. Zero requires an exact fixed point.
	Epsilon float64

	// MaxIterations caps the loop. Zero means DefaultMaxIterations.
	MaxIterations int

	// Initializer selects the starting centroids. Nil means RandomPoint{}.
	Initializer Initializer

	// InitialCentroids, when set, replaces the initializer with fixed positions.
	InitialCentroids []model.Vector

	// Rand is the entropy source handed to the initializer.
	Rand *rand.Rand

	// Workers bounds per-step goroutines. <= 0 means GOMAXPROCS.
	Workers int

	// Reducer selects the per-distance summation strategy.
	Reducer distance.Reducer

	// OnIteration, if set, is called after every iteration on the run's goroutine.
	OnIteration func(IterationStats)
}

// DefaultConfig returns a Config for k clusters with default epsilon and
// iteration cap. The caller still has to supply Rand.
func DefaultConfig(k int) Config {
	return Config{
		K:             k,
		Epsilon:       DefaultEpsilon,
		MaxIterations: DefaultMaxIterations,
	}
}

// Result is the terminal output of a run.
type Result struct {
	// Assignment is the last assignment step: every point mapped to its
	// nearest centroid of the previous iteration. Centroids were computed
	// from it.
	Assignment model.Assignment
	// Centroids are ordered by identifier.
	Centroids []model.Centroid
	// Iterations is the number of assignment+update rounds executed.
	Iterations int
	// State is Converged or MaxIterationsReached.
	State State
	// Inertia is the sum of squared distances of points to their centroid.
	Inertia float64
	// Sizes holds the number of points per cluster.
	Sizes []int
}

// Converged reports whether the run reached a fixed point within epsilon.
func (r *Result) Converged() bool {
	return r.State == Converged
}

// Members returns the point indices of every cluster.
func (r *Result) Members() []*roaring.Bitmap {
	members, _ := Members(r.Assignment, len(r.Centroids))
	return members
}

// Engine runs Lloyd's algorithm. An Engine holds only configuration and may
// run concurrently on several datasets; each run owns its own state. Draws
// from the shared random source are serialized, and OnIteration may then be
// called from several goroutines.
type Engine struct {
	cfg  Config
	init Initializer
	step StepOptions

	randMu sync.Mutex
}

// NewEngine validates cfg and returns an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.K < 1 {
		return nil, invalidf("k must be >= 1, got %d", cfg.K)
	}
	if err := validateEpsilon(cfg.Epsilon); err != nil {
		return nil, err
	}
	if cfg.MaxIterations < 0 {
		return nil, invalidf("max iterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.InitialCentroids != nil && len(cfg.InitialCentroids) != cfg.K {
		return nil, invalidf("%d initial centroids for k=%d", len(cfg.InitialCentroids), cfg.K)
	}
	if cfg.InitialCentroids == nil && cfg.Rand == nil {
		return nil, invalidf("random source is required")
	}

	init := cfg.Initializer
	if init == nil {
		init = RandomPoint{}
	}

	return &Engine{
		cfg:  cfg,
		init: init,
		step: StepOptions{
			Workers:  cfg.Workers,
			Distance: distance.Provider(cfg.Reducer),
		},
	}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// run is the state of a single clustering run.
type run struct {
	ds         *model.Dataset
	state      State
	centroids  []model.Centroid
	assignment model.PendingAssignment
	iteration  int
}

// Run clusters ds. It returns an error for invalid input or cancellation;
// hitting the iteration cap is reported through Result.State.
//
// ctx is checked at the top of every iteration.
func (e *Engine) Run(ctx context.Context, ds *model.Dataset) (*Result, error) {
	n := 0
	if ds != nil {
		n = ds.Len()
	}
	if err := validateK(n, e.cfg.K); err != nil {
		return nil, err
	}

	r := &run{ds: ds, state: Uninitialized}
	if err := e.initialize(r); err != nil {
		return nil, err
	}

	for !r.state.Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("kmeans: cancelled before iteration %d: %w", r.iteration+1, err)
		}
		if err := e.iterate(ctx, r); err != nil {
			return nil, err
		}
	}

	return e.finish(r), nil
}

func (e *Engine) initialize(r *run) error {
	var centroids []model.Centroid
	if e.cfg.InitialCentroids != nil {
		centroids = make([]model.Centroid, len(e.cfg.InitialCentroids))
		for i, p := range e.cfg.InitialCentroids {
			centroids[i] = model.Centroid{ID: i, Position: p.Clone()}
		}
	} else {
		var err error
		e.randMu.Lock()
		centroids, err = e.init.Initialize(r.ds, e.cfg.K, e.cfg.Rand)
		e.randMu.Unlock()
		if err != nil {
			return err
		}
	}

	if len(centroids) != e.cfg.K {
		return invalidf("initializer returned %d centroids for k=%d", len(centroids), e.cfg.K)
	}
	pos, err := indexByID(centroids, r.ds.Dim())
	if err != nil {
		return err
	}

	r.centroids = byID(centroids, pos)
	r.state = Initialized
	return nil
}

func (e *Engine) iterate(ctx context.Context, r *run) error {
	start := time.Now()
	r.state = Iterating
	r.iteration++

	assignment, err := Assign(ctx, r.ds, r.centroids, e.step)
	if err != nil {
		return err
	}

	next, err := Update(ctx, r.ds, assignment, r.centroids, e.step)
	if err != nil {
		return err
	}

	converged, err := HasConverged(r.centroids, next, e.cfg.Epsilon)
	if err != nil {
		return err
	}

	if e.cfg.OnIteration != nil {
		shift, _ := MaxShift(r.centroids, next)
		empty := 0
		for _, c := range assignment.Counts(e.cfg.K) {
			if c == 0 {
				empty++
			}
		}
		e.cfg.OnIteration(IterationStats{
			Iteration:     r.iteration,
			Shift:         shift,
			Changed:       assignment.Changed(r.assignment),
			EmptyClusters: empty,
			Duration:      time.Since(start),
		})
	}

	r.centroids = next
	r.assignment = model.Assigned(assignment)

	switch {
	case converged:
		r.state = Converged
	case r.iteration >= e.cfg.MaxIterations:
		r.state = MaxIterationsReached
	}
	return nil
}

// finish freezes the last assignment step together with the centroids that
// the following update computed from it, so every non-empty centroid is the
// mean of its returned members.
func (e *Engine) finish(r *run) *Result {
	assignment, _ := r.assignment.Get()

	var inertia float64
	for i, c := range assignment {
		inertia += distance.SquaredEuclidean(r.ds.At(i), r.centroids[c].Position)
	}

	return &Result{
		Assignment: assignment,
		Centroids:  r.centroids,
		Iterations: r.iteration,
		State:      r.state,
		Inertia:    inertia,
		Sizes:      assignment.Counts(e.cfg.K),
	}
}
