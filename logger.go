package segmenter

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/segmenter/kmeans"
)

// iterationLogRate bounds per-iteration debug records so long runs do not
// flood the output.
const (
	iterationLogRate  = rate.Limit(20)
	iterationLogBurst = 20
)

// Logger wraps slog.Logger with segmenter-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
	iterations *rate.Limiter
}

func newLogger(l *slog.Logger) *Logger {
	return &Logger{
		Logger:     l,
		iterations: rate.NewLimiter(iterationLogRate, iterationLogBurst),
	}
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return newLogger(slog.New(handler))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return newLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return newLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return newLogger(slog.New(slog.DiscardHandler))
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{
		Logger:     l.Logger.With(args...),
		iterations: l.iterations,
	}
}

// WithRunID tags records with the identifier of a clustering run.
func (l *Logger) WithRunID(id string) *Logger {
	return l.with("run_id", id)
}

// WithK adds the cluster count.
func (l *Logger) WithK(k int) *Logger {
	return l.with("k", k)
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return l.with("dimension", dim)
}

// WithCount adds the number of points.
func (l *Logger) WithCount(count int) *Logger {
	return l.with("count", count)
}

// LogIteration logs one iteration at debug level, subject to rate limiting.
func (l *Logger) LogIteration(ctx context.Context, st kmeans.IterationStats) {
	if !l.Enabled(ctx, slog.LevelDebug) || !l.iterations.Allow() {
		return
	}
	l.DebugContext(ctx, "iteration completed",
		"iteration", st.Iteration,
		"shift", st.Shift,
		"changed", st.Changed,
		"empty_clusters", st.EmptyClusters,
		"duration", st.Duration,
	)
}

// LogRun logs the outcome of a clustering run.
func (l *Logger) LogRun(ctx context.Context, res *Result, elapsed time.Duration, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "clustering failed",
			"duration", elapsed,
			"error", err,
		)
	case !res.Converged():
		l.WarnContext(ctx, "clustering stopped at iteration cap",
			"iterations", res.Iterations,
			"inertia", res.Inertia,
			"duration", elapsed,
		)
	default:
		l.InfoContext(ctx, "clustering converged",
			"iterations", res.Iterations,
			"inertia", res.Inertia,
			"duration", elapsed,
		)
	}
}

// LogLoad logs a dataset load.
func (l *Logger) LogLoad(ctx context.Context, name string, points int, bytes int64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset load failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "dataset loaded",
		"name", name,
		"points", points,
		"bytes", bytes,
		"duration", elapsed,
	)
}
