package segmenter

import (
	"math/rand/v2"

	"github.com/hupe1980/segmenter/kmeans"
	"github.com/hupe1980/segmenter/resource"
)

// KMeans creates a new builder for k clusters.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration, so partially configured builders can be shared.
//
// Example:
//
//	s, err := segmenter.KMeans(5).
//	    Epsilon(1e-4).
//	    MaxIterations(500).
//	    Seed(42).
//	    KMeansPlusPlus().
//	    Build()
func KMeans(k int) KMeansBuilder {
	return KMeansBuilder{cfg: DefaultConfig(k)}
}

// KMeansBuilder is an immutable fluent builder for Segmenter instances.
type KMeansBuilder struct {
	cfg       Config
	seeded    bool
	logger    *Logger
	metrics   MetricsCollector
	resources *resource.Controller
	hook      func(kmeans.IterationStats)
}

// Epsilon sets the convergence threshold.
// Default: 0.001.
func (b KMeansBuilder) Epsilon(eps float64) KMeansBuilder {
	b.cfg.Epsilon = eps
	return b
}

// MaxIterations caps the number of iterations.
// Default: 300.
func (b KMeansBuilder) MaxIterations(n int) KMeansBuilder {
	b.cfg.MaxIterations = n
	return b
}

// Seed makes every Fit of the built Segmenter reproducible.
// If not set, a random seed is drawn once at Build time.
func (b KMeansBuilder) Seed(seed uint64) KMeansBuilder {
	b.cfg.Seed = seed
	b.seeded = true
	return b
}

// RandomPoint seeds centroids with uniformly drawn points. This is the default.
func (b KMeansBuilder) RandomPoint() KMeansBuilder {
	b.cfg.Init = kmeans.InitRandomPoint
	return b
}

// Distinct seeds centroids with K distinct points.
func (b KMeansBuilder) Distinct() KMeansBuilder {
	b.cfg.Init = kmeans.InitRandomDistinct
	return b
}

// KMeansPlusPlus uses k-means++ seeding.
func (b KMeansBuilder) KMeansPlusPlus() KMeansBuilder {
	b.cfg.Init = kmeans.InitKMeansPlusPlus
	return b
}

// Strategy sets the seeding strategy explicitly.
func (b KMeansBuilder) Strategy(s kmeans.Strategy) KMeansBuilder {
	b.cfg.Init = s
	return b
}

// InitialCentroids fixes the starting positions, bypassing seeding.
func (b KMeansBuilder) InitialCentroids(rows [][]float64) KMeansBuilder {
	b.cfg.InitialCentroids = rows
	return b
}

// Workers bounds the goroutines of each step.
// Default: GOMAXPROCS.
func (b KMeansBuilder) Workers(n int) KMeansBuilder {
	b.cfg.Workers = n
	return b
}

// ParallelDistance splits every distance computation into chunks of the
// given number of dimensions.
func (b KMeansBuilder) ParallelDistance(chunk int) KMeansBuilder {
	b.cfg.ParallelChunk = chunk
	return b
}

// Logger sets the structured logger.
func (b KMeansBuilder) Logger(l *Logger) KMeansBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b KMeansBuilder) Metrics(mc MetricsCollector) KMeansBuilder {
	b.metrics = mc
	return b
}

// Resources sets a shared resource controller.
func (b KMeansBuilder) Resources(rc *resource.Controller) KMeansBuilder {
	b.resources = rc
	return b
}

// OnIteration registers a per-iteration callback.
func (b KMeansBuilder) OnIteration(fn func(kmeans.IterationStats)) KMeansBuilder {
	b.hook = fn
	return b
}

// Config returns the run configuration the builder would use, minus the
// random seed when none was set.
func (b KMeansBuilder) Config() Config {
	return b.cfg
}

// Build validates the configuration and creates the Segmenter.
func (b KMeansBuilder) Build() (*Segmenter, error) {
	cfg := b.cfg
	if !b.seeded {
		cfg.Seed = rand.Uint64()
	}

	var opts []Option
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}
	if b.resources != nil {
		opts = append(opts, WithResourceController(b.resources))
	}
	if b.hook != nil {
		opts = append(opts, WithIterationHook(b.hook))
	}

	return New(cfg, opts...)
}
