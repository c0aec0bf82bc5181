package model

import (
	"errors"
	"fmt"
	"slices"
)

// ErrEmptyDataset is returned when a dataset without points is constructed.
var ErrEmptyDataset = errors.New("dataset is empty")

// ErrDimensionMismatch indicates a vector whose dimensionality differs from
// the dataset's.
type ErrDimensionMismatch struct {
	Index    int
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch at index %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

// ErrInvalidDimension indicates a zero-width vector.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// Vector is a single feature vector.
type Vector []float64

// Dim returns the number of features.
func (v Vector) Dim() int { return len(v) }

// Clone returns a copy of v.
func (v Vector) Clone() Vector { return slices.Clone(v) }

// Equal reports whether v and o are component-wise equal.
func (v Vector) Equal(o Vector) bool { return slices.Equal(v, o) }

// Dataset is an ordered set of vectors sharing one dimensionality.
type Dataset struct {
	points []Vector
	dim    int
}

// NewDataset validates points and wraps them in a Dataset.
// The slice is retained, not copied; callers must not mutate it afterwards.
func NewDataset(points []Vector) (*Dataset, error) {
	if len(points) == 0 {
		return nil, ErrEmptyDataset
	}

	dim := len(points[0])
	if dim == 0 {
		return nil, &ErrInvalidDimension{Dimension: 0}
	}

	for i, p := range points {
		if len(p) != dim {
			return nil, &ErrDimensionMismatch{Index: i, Expected: dim, Actual: len(p)}
		}
	}

	return &Dataset{points: points, dim: dim}, nil
}

// FromRows builds a Dataset from plain float rows.
func FromRows(rows [][]float64) (*Dataset, error) {
	points := make([]Vector, len(rows))
	for i, r := range rows {
		points[i] = Vector(r)
	}
	return NewDataset(points)
}

// Len returns the number of points.
func (d *Dataset) Len() int { return len(d.points) }

// Dim returns the dimensionality shared by all points.
func (d *Dataset) Dim() int { return d.dim }

// At returns the i-th point.
func (d *Dataset) At(i int) Vector { return d.points[i] }

// Points returns the underlying points. Callers must treat them as read-only.
func (d *Dataset) Points() []Vector { return d.points }

// SizeBytes estimates the memory held by the dataset's values.
func (d *Dataset) SizeBytes() int64 {
	return int64(len(d.points)) * int64(d.dim) * 8
}

// Centroid is the representative point of a cluster.
type Centroid struct {
	ID       int
	Position Vector
}

// Clone returns a deep copy of c.
func (c Centroid) Clone() Centroid {
	return Centroid{ID: c.ID, Position: c.Position.Clone()}
}

func (c Centroid) String() string {
	return fmt.Sprintf("Centroid(%d:%v)", c.ID, []float64(c.Position))
}

// CloneCentroids returns a deep copy of cs.
func CloneCentroids(cs []Centroid) []Centroid {
	out := make([]Centroid, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

// Assignment maps every point index to a cluster identifier.
type Assignment []int

// Len returns the number of assigned points.
func (a Assignment) Len() int { return len(a) }

// Cluster returns the cluster of point i.
func (a Assignment) Cluster(i int) int { return a[i] }

// Counts returns the number of points per cluster for k clusters.
func (a Assignment) Counts(k int) []int {
	counts := make([]int, k)
	for _, c := range a {
		counts[c]++
	}
	return counts
}

// Changed returns the number of points whose cluster differs from prev.
// A pending prev counts every point as changed.
func (a Assignment) Changed(prev PendingAssignment) int {
	if !prev.Valid {
		return len(a)
	}
	n := 0
	for i, c := range a {
		if prev.Assignment[i] != c {
			n++
		}
	}
	return n
}

// PendingAssignment is an Assignment that may not have been computed yet.
// The zero value is the unassigned state.
type PendingAssignment struct {
	Assignment Assignment
	Valid      bool
}

// Assigned wraps a computed assignment.
func Assigned(a Assignment) PendingAssignment {
	return PendingAssignment{Assignment: a, Valid: true}
}

// Get returns the assignment and whether it has been computed.
func (p PendingAssignment) Get() (Assignment, bool) {
	return p.Assignment, p.Valid
}
