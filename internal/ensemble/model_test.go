package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// separableData builds n points on one axis: negative x labeled 0, positive
// x labeled 1.
func separableData(n int) (*mat.Dense, []float64) {
	x := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			x.Set(i, 0, 3)
			y[i] = 1
		} else {
			x.Set(i, 0, -3)
		}
	}
	return x, y
}

func TestClassifierSeparable(t *testing.T) {
	x, y := separableData(100)
	xVal, yVal := separableData(20)

	c := NewClassifier()
	require.NoError(t, c.Fit(x, y, xVal, yVal))

	assert.Greater(t, c.PredictProba([]float64{3}), 0.8)
	assert.Less(t, c.PredictProba([]float64{-3}), 0.2)
	assert.Equal(t, 1.0, c.Predict([]float64{3}))
	assert.Equal(t, 0.0, c.Predict([]float64{-3}))
}

func TestClassifierFitWithoutValidation(t *testing.T) {
	x, y := separableData(100)

	c := NewClassifier()
	require.NoError(t, c.Fit(x, y, nil, nil))
	assert.Greater(t, c.PredictProba([]float64{3}), 0.8)
}

func TestRegressorRecoversLinearRelation(t *testing.T) {
	// y = 2x + 1, noiseless
	const n = 200
	x := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := float64(i%5)/2 - 1 // -1, -0.5, 0, 0.5, 1
		x.Set(i, 0, v)
		y[i] = 2*v + 1
	}

	r := NewRegressor()
	require.NoError(t, r.Fit(x, y, nil, nil))

	assert.InDelta(t, 2.0, r.Predict([]float64{0.5}), 0.1)
	assert.InDelta(t, 1.0, r.Predict([]float64{0}), 0.1)
	assert.InDelta(t, -1.0, r.Predict([]float64{-1}), 0.1)
}

func TestFitRejectsBadShapes(t *testing.T) {
	c := NewClassifier()
	err := c.Fit(mat.NewDense(3, 1, nil), []float64{1, 0}, nil, nil)
	assert.Error(t, err)
}

func TestCoefficientsRoundTrip(t *testing.T) {
	x, y := separableData(100)
	c := NewClassifier()
	require.NoError(t, c.Fit(x, y, nil, nil))

	weights, bias := c.Coefficients()
	clone := NewClassifier()
	clone.SetCoefficients(weights, bias)

	for _, v := range []float64{-3, -1, 0, 1, 3} {
		assert.Equal(t, c.PredictProba([]float64{v}), clone.PredictProba([]float64{v}))
	}
}

func TestModelKinds(t *testing.T) {
	assert.Equal(t, kindClassifier, NewClassifier().Kind())
	assert.Equal(t, kindRegressor, NewRegressor().Kind())

	m, err := newModelOfKind(kindClassifier)
	require.NoError(t, err)
	assert.IsType(t, &Classifier{}, m)

	m, err = newModelOfKind(kindRegressor)
	require.NoError(t, err)
	assert.IsType(t, &Regressor{}, m)

	_, err = newModelOfKind("boosted")
	assert.Error(t, err)
}
