// Package features derives the model inputs for the predictive ensemble from
// a time-ordered daily table: calendar and cyclical encodings, lagged values,
// and rolling means. The same pipeline serves training and single-row inference.
package features

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Frame is an ordered collection of named float64 columns of equal length.
// Column order is insertion order and is significant: the scaler and the
// persisted feature list both depend on it.
type Frame struct {
	names []string
	cols  map[string][]float64
	dates []time.Time
	n     int
}

// NewFrame creates an empty frame with n rows
func NewFrame(n int, dates []time.Time) *Frame {
	return &Frame{
		cols:  make(map[string][]float64),
		dates: dates,
		n:     n,
	}
}

// N returns the row count
func (f *Frame) N() int { return f.n }

// Dates returns the per-row dates, when the source table carried them
func (f *Frame) Dates() []time.Time { return f.dates }

// Names returns the column names in insertion order
func (f *Frame) Names() []string {
	return append([]string(nil), f.names...)
}

// Has reports whether a column exists
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Col returns a column by name, nil if absent
func (f *Frame) Col(name string) []float64 {
	return f.cols[name]
}

// Add appends a column. Panics on length mismatch; engineering bugs should
// not survive to runtime handling.
func (f *Frame) Add(name string, vals []float64) {
	if len(vals) != f.n {
		panic(fmt.Sprintf("column %s has %d rows, frame has %d", name, len(vals), f.n))
	}
	if _, exists := f.cols[name]; !exists {
		f.names = append(f.names, name)
	}
	f.cols[name] = vals
}

// Row extracts the given columns from row i into a map, for single-row
// inference.
func (f *Frame) Row(i int, names []string) map[string]float64 {
	out := make(map[string]float64, len(names))
	for _, name := range names {
		if col, ok := f.cols[name]; ok {
			out[name] = col[i]
		}
	}
	return out
}

// ValidRows returns the indices of rows with no NaN in any of the given
// columns. Leading rows lose validity to lag warm-up.
func (f *Frame) ValidRows(names []string) []int {
	var idx []int
rows:
	for i := 0; i < f.n; i++ {
		for _, name := range names {
			col, ok := f.cols[name]
			if !ok || math.IsNaN(col[i]) {
				continue rows
			}
		}
		idx = append(idx, i)
	}
	return idx
}

// Matrix assembles the named columns for the given rows into a dense matrix,
// one row per observation. Returns nil when rows is empty; gonum rejects
// zero-dimension matrices.
func (f *Frame) Matrix(names []string, rows []int) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}
	m := mat.NewDense(len(rows), len(names), nil)
	for r, i := range rows {
		for c, name := range names {
			m.Set(r, c, f.cols[name][i])
		}
	}
	return m
}

// Vector extracts one column for the given rows
func (f *Frame) Vector(name string, rows []int) []float64 {
	col := f.cols[name]
	out := make([]float64, len(rows))
	for r, i := range rows {
		out[r] = col[i]
	}
	return out
}
