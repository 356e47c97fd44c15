package ensemble

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes features to zero mean and unit variance. It is fit on
// the training split only; the same transform is applied to validation,
// test, and inference rows.
type Scaler struct {
	Mean []float64 `msgpack:"mean"`
	Std  []float64 `msgpack:"std"`
}

// Fit computes per-column mean and population standard deviation. Constant
// columns get a unit deviation so transforming them is a no-op shift.
func (s *Scaler) Fit(x *mat.Dense) {
	rows, cols := x.Dims()
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		s.Mean[j] = stat.Mean(col, nil)
		s.Std[j] = stat.PopStdDev(col, nil)
		if s.Std[j] == 0 || rows < 2 {
			s.Std[j] = 1
		}
	}
}

// Transform standardizes a matrix in place
func (s *Scaler) Transform(x *mat.Dense) error {
	rows, cols := x.Dims()
	if cols != len(s.Mean) {
		return fmt.Errorf("scaler fit on %d columns, got %d", len(s.Mean), cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x.Set(i, j, (x.At(i, j)-s.Mean[j])/s.Std[j])
		}
	}
	return nil
}

// TransformRow standardizes a single feature row, returning a new slice
func (s *Scaler) TransformRow(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("scaler fit on %d columns, got %d", len(s.Mean), len(row))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}
