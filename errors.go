package segmenter

import (
	"errors"
	"fmt"

	"github.com/hupe1980/segmenter/kmeans"
	"github.com/hupe1980/segmenter/model"
	"github.com/hupe1980/segmenter/resource"
)

var (
	// ErrInvalidConfiguration is returned for unusable run parameters or input:
	// K < 1, K > N, an empty dataset, a negative epsilon.
	ErrInvalidConfiguration = kmeans.ErrInvalidConfiguration

	// ErrNonConvergence reports a run that hit the iteration cap. Fit never
	// returns it; use Result.Err to treat that outcome as a failure.
	ErrNonConvergence = errors.New("did not converge")

	// ErrResourceExhausted is returned when a run does not fit the memory budget.
	ErrResourceExhausted = errors.New("resource exhausted")
)

// ErrDimensionMismatch indicates a vector whose dimensionality differs from
// the dataset's.
//
// The underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Index    int
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch at index %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *model.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Index: dm.Index, Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	if errors.Is(err, model.ErrEmptyDataset) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	var id *model.ErrInvalidDimension
	if errors.As(err, &id) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
	}

	return err
}
