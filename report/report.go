package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hupe1980/segmenter"
	"github.com/hupe1980/segmenter/dataset"
	"github.com/hupe1980/segmenter/model"
)

// Cluster summarizes one segment.
type Cluster struct {
	ID       int                `json:"id"`
	Size     int                `json:"size"`
	Centroid map[string]float64 `json:"centroid"`
	// position keeps schema order for the text table.
	position []float64
}

// Report is a printable summary of a clustering run.
type Report struct {
	RunID       string        `json:"run_id"`
	Schema      string        `json:"schema,omitempty"`
	Fields      []string      `json:"fields"`
	K           int           `json:"k"`
	Points      int           `json:"points"`
	Iterations  int           `json:"iterations"`
	Termination string        `json:"termination"`
	Converged   bool          `json:"converged"`
	Inertia     float64       `json:"inertia"`
	Duration    time.Duration `json:"-"`
	DurationMS  float64       `json:"duration_ms"`
	Clusters    []Cluster     `json:"clusters"`
	Assignment  []int         `json:"assignment,omitempty"`

	ds *model.Dataset
}

// New builds a report for res over ds. The schema only names the features.
func New(res *segmenter.Result, ds *model.Dataset, schema dataset.Schema) *Report {
	dim := ds.Dim()
	fields := make([]string, dim)
	for i := range fields {
		fields[i] = schema.FieldName(i)
	}

	clusters := make([]Cluster, len(res.Centroids))
	for i, c := range res.Centroids {
		named := make(map[string]float64, dim)
		for j, x := range c.Position {
			named[fields[j]] = x
		}
		clusters[i] = Cluster{
			ID:       c.ID,
			Size:     res.Sizes[c.ID],
			Centroid: named,
			position: c.Position,
		}
	}

	return &Report{
		RunID:       res.RunID,
		Schema:      schema.Name,
		Fields:      fields,
		K:           len(res.Centroids),
		Points:      ds.Len(),
		Iterations:  res.Iterations,
		Termination: res.State.String(),
		Converged:   res.Converged(),
		Inertia:     res.Inertia,
		Duration:    res.Duration,
		DurationMS:  float64(res.Duration) / float64(time.Millisecond),
		Clusters:    clusters,
		Assignment:  res.Assignment,
		ds:          ds,
	}
}

// TextOptions control WriteText.
type TextOptions struct {
	// MaxPoints limits the per-point table. Zero prints every point,
	// a negative value omits the table.
	MaxPoints int
	// Precision is the number of decimals. Zero means 2.
	Precision int
}

// WriteText renders the summary, the centroid table and the per-point table.
func (r *Report) WriteText(w io.Writer, opts TextOptions) error {
	prec := opts.Precision
	if prec <= 0 {
		prec = 2
	}
	f := func(x float64) string { return strconv.FormatFloat(x, 'f', prec, 64) }

	if _, err := fmt.Fprintf(w, "Run %s: %d points, k=%d, %d iterations (%s)\n",
		r.RunID, r.Points, r.K, r.Iterations, r.Termination); err != nil {
		return err
	}

	centroids := newTable(append([]string{"cluster", "size"}, r.Fields...)...)
	for _, c := range r.Clusters {
		row := []string{strconv.Itoa(c.ID), strconv.Itoa(c.Size)}
		for _, x := range c.position {
			row = append(row, f(x))
		}
		centroids.Row(row...)
	}
	if _, err := fmt.Fprintln(w, centroids.Render()); err != nil {
		return err
	}

	if opts.MaxPoints >= 0 && r.ds != nil {
		n := r.Points
		if opts.MaxPoints > 0 && opts.MaxPoints < n {
			n = opts.MaxPoints
		}

		points := newTable(append(append([]string{"point"}, r.Fields...), "cluster")...)
		for i := range n {
			row := []string{strconv.Itoa(i)}
			for _, x := range r.ds.At(i) {
				row = append(row, f(x))
			}
			row = append(row, strconv.Itoa(r.Assignment[i]))
			points.Row(row...)
		}
		if _, err := fmt.Fprintln(w, points.Render()); err != nil {
			return err
		}
		if n < r.Points {
			if _, err := fmt.Fprintf(w, "... %d more points\n", r.Points-n); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "Inertia: %s\nExecution time: %s\n", f(r.Inertia), r.Duration)
	return err
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}
