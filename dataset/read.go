package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/segmenter/model"
	"github.com/hupe1980/segmenter/resource"
)

// Format selects the record syntax.
type Format int

const (
	// FormatAuto picks FormatCSV for ".csv" names and FormatText otherwise.
	FormatAuto Format = iota
	FormatText
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatText:
		return "text"
	case FormatCSV:
		return "csv"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses "auto", "text" or "csv".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatAuto, fmt.Errorf("unknown format %q", s)
	}
}

// HeaderMode controls CSV header handling.
type HeaderMode int

const (
	// HeaderAuto treats the first row as a header if any field is not a number.
	HeaderAuto HeaderMode = iota
	HeaderPresent
	HeaderAbsent
)

// Options configure Read and Load.
type Options struct {
	Format      Format
	Schema      Schema
	Header      HeaderMode
	Compression Compression

	// Comma is the CSV field delimiter. Defaults to ','.
	Comma rune

	// Resources, when set, throttles reads to its IO limit.
	Resources *resource.Controller
}

const (
	maxLineBytes = 1 << 20
	// ctx is polled every checkEvery records.
	checkEvery = 4096
)

// Read parses all records from r. The format must not be FormatAuto.
func Read(ctx context.Context, r io.Reader, opts Options) (*model.Dataset, error) {
	var (
		points []model.Vector
		err    error
	)

	switch opts.Format {
	case FormatText:
		points, err = readText(ctx, r, opts)
	case FormatCSV:
		points, err = readCSV(ctx, r, opts)
	default:
		return nil, fmt.Errorf("cannot read format %s", opts.Format)
	}
	if err != nil {
		return nil, err
	}

	return model.NewDataset(points)
}

// readText reads whitespace-separated values. With a schema the width is
// known, so values are taken as a token stream and a record may wrap across
// lines. Without one, every line is a record and the first fixes the width.
func readText(ctx context.Context, r io.Reader, opts Options) ([]model.Vector, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		points  []model.Vector
		dim     = opts.Schema.Dim()
		stream  = dim > 0
		pending []string
		start   int // line the pending record began on
		line    int
	)

	for sc.Scan() {
		line++
		if line%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		if stream {
			for _, f := range fields {
				if len(pending) == 0 {
					start = line
				}
				pending = append(pending, f)
				if len(pending) < dim {
					continue
				}
				v, err := parseRecord(pending, start, nil)
				if err != nil {
					return nil, err
				}
				points = append(points, v)
				pending = pending[:0]
			}
			continue
		}

		if dim == 0 {
			dim = len(fields)
		}
		if len(fields) != dim {
			return nil, &ParseError{Line: line, Err: &model.ErrDimensionMismatch{
				Index: len(points), Expected: dim, Actual: len(fields),
			}}
		}

		v, err := parseRecord(fields, line, nil)
		if err != nil {
			return nil, err
		}
		points = append(points, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}

	if len(pending) > 0 {
		return nil, &ParseError{Line: start, Err: &model.ErrDimensionMismatch{
			Index: len(points), Expected: dim, Actual: len(pending),
		}}
	}

	return points, nil
}

func readCSV(ctx context.Context, r io.Reader, opts Options) ([]model.Vector, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	cr.Comment = '#'
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	var (
		points  []model.Vector
		columns []int // nil selects all columns
		dim     = opts.Schema.Dim()
		first   = true
	)

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Line: pe.Line, Column: pe.Column, Err: pe.Err}
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(points)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if isBlank(record) {
			continue
		}

		if first {
			first = false
			if isHeader(record, opts.Header) {
				columns, err = selectColumns(record, opts.Schema, line)
				if err != nil {
					return nil, err
				}
				if columns != nil {
					dim = len(columns)
				}
				continue
			}
		}

		width := len(record)
		if columns != nil {
			width = len(columns)
			for _, c := range columns {
				if c >= len(record) {
					return nil, &ParseError{Line: line, Err: &model.ErrDimensionMismatch{
						Index: len(points), Expected: slices.Max(columns) + 1, Actual: len(record),
					}}
				}
			}
		}
		if dim == 0 {
			dim = width
		}
		if width != dim {
			return nil, &ParseError{Line: line, Err: &model.ErrDimensionMismatch{
				Index: len(points), Expected: dim, Actual: width,
			}}
		}

		v, err := parseRecord(record, line, columns)
		if err != nil {
			return nil, err
		}
		points = append(points, v)
	}

	return points, nil
}

// parseRecord converts the selected fields into a vector.
func parseRecord(fields []string, line int, columns []int) (model.Vector, error) {
	if columns == nil {
		v := make(model.Vector, len(fields))
		for i, f := range fields {
			x, err := parseValue(f, line, i+1)
			if err != nil {
				return nil, err
			}
			v[i] = x
		}
		return v, nil
	}

	v := make(model.Vector, len(columns))
	for i, c := range columns {
		x, err := parseValue(fields[c], line, c+1)
		if err != nil {
			return nil, err
		}
		v[i] = x
	}
	return v, nil
}

func parseValue(s string, line, col int) (float64, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) {
			err = fmt.Errorf("%q: %w", s, ne.Err)
		}
		return 0, &ParseError{Line: line, Column: col, Err: err}
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, &ParseError{Line: line, Column: col, Err: ErrNonFinite}
	}
	return x, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func isHeader(record []string, mode HeaderMode) bool {
	switch mode {
	case HeaderPresent:
		return true
	case HeaderAbsent:
		return false
	}
	for _, f := range record {
		if _, err := strconv.ParseFloat(strings.TrimSpace(f), 64); err != nil {
			return true
		}
	}
	return false
}

// selectColumns maps schema fields onto header positions. It returns nil
// when every column is a feature.
func selectColumns(header []string, schema Schema, line int) ([]int, error) {
	if schema.IsZero() {
		return nil, nil
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[normalize(h)]; !dup {
			index[normalize(h)] = i
		}
	}

	columns := make([]int, len(schema.Fields))
	for i, f := range schema.Fields {
		c, ok := index[normalize(f)]
		if !ok {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("%w: %s", ErrMissingColumn, f)}
		}
		columns[i] = c
	}
	return columns, nil
}

// DetectFormat infers the format from a blob name, ignoring compression suffixes.
func DetectFormat(name string) Format {
	base := strings.ToLower(path.Base(name))
	for _, ext := range compressionExts {
		base = strings.TrimSuffix(base, ext.suffix)
	}
	if path.Ext(base) == ".csv" {
		return FormatCSV
	}
	return FormatText
}
