package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a CSV header lacks a schema field.
	ErrMissingColumn = errors.New("missing column")

	// ErrNonFinite is returned for NaN or infinite feature values.
	ErrNonFinite = errors.New("non-finite value")
)

// ParseError locates a malformed record.
type ParseError struct {
	Line   int // 1-based
	Column int // 1-based, 0 when the whole record is at fault
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
