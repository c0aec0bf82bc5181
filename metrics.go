package segmenter

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    runs       prometheus.Counter
//	    iterations prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordRun(d time.Duration, iterations int, converged bool, err error) {
//	    p.runs.Inc()
//	    p.iterations.Observe(float64(iterations))
//	}
type MetricsCollector interface {
	// RecordRun is called after each Fit. iterations is zero when the run
	// failed before the first iteration.
	RecordRun(duration time.Duration, iterations int, converged bool, err error)

	// RecordIteration is called after each assignment+update round.
	RecordIteration(duration time.Duration)

	// RecordLoad is called after each dataset load.
	RecordLoad(points int, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRun(time.Duration, int, bool, error)   {}
func (NoopMetricsCollector) RecordIteration(time.Duration)               {}
func (NoopMetricsCollector) RecordLoad(int, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount            atomic.Int64
	RunErrors           atomic.Int64
	RunNonConverged     atomic.Int64
	RunTotalNanos       atomic.Int64
	IterationCount      atomic.Int64
	IterationTotalNanos atomic.Int64
	LoadCount           atomic.Int64
	LoadErrors          atomic.Int64
	LoadPoints          atomic.Int64
	LoadBytes           atomic.Int64
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(duration time.Duration, _ int, converged bool, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	switch {
	case err != nil:
		b.RunErrors.Add(1)
	case !converged:
		b.RunNonConverged.Add(1)
	}
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(duration time.Duration) {
	b.IterationCount.Add(1)
	b.IterationTotalNanos.Add(duration.Nanoseconds())
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(points int, bytes int64, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadPoints.Add(int64(points))
	b.LoadBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RunCount:          b.RunCount.Load(),
		RunErrors:         b.RunErrors.Load(),
		RunNonConverged:   b.RunNonConverged.Load(),
		RunAvgNanos:       avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		IterationCount:    b.IterationCount.Load(),
		IterationAvgNanos: avg(b.IterationTotalNanos.Load(), b.IterationCount.Load()),
		LoadCount:         b.LoadCount.Load(),
		LoadErrors:        b.LoadErrors.Load(),
		LoadPoints:        b.LoadPoints.Load(),
		LoadBytes:         b.LoadBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RunCount          int64
	RunErrors         int64
	RunNonConverged   int64
	RunAvgNanos       int64
	IterationCount    int64
	IterationAvgNanos int64
	LoadCount         int64
	LoadErrors        int64
	LoadPoints        int64
	LoadBytes         int64
}
