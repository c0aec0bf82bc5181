// Package resource implements process-wide limits shared by clustering runs.
//
// The Controller manages three resource types:
//
//   - Memory: tracks and limits the bytes held by loaded datasets (fail-fast)
//   - Workers: a shared pool of step goroutines for concurrent runs
//   - IO: a token bucket applied to dataset reads
//
// # Memory
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(ds.SizeBytes()); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides retry/backoff
//	}
//	defer rc.ReleaseMemory(ds.SizeBytes())
//
// # Workers
//
// A run asks for as many workers as it would like and receives at most the
// pool size:
//
//	n, err := rc.AcquireWorkers(ctx, 8)
//	if err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorkers(n)
//
// # IO
//
//	reader := resource.NewRateLimitedReader(ctx, blob, rc)
//
// All methods are safe for concurrent use and treat a nil *Controller as
// "no limits".
package resource
