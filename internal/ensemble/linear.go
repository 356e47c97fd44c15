package ensemble

import "gonum.org/v1/gonum/mat"

// Regressor is a linear model fit by gradient descent
type Regressor struct {
	gd gdParams
}

// NewRegressor creates a regressor with default optimizer settings
func NewRegressor() *Regressor {
	return &Regressor{gd: gdParams{
		learningRate: defaultLearningRate,
		maxEpochs:    defaultMaxEpochs,
		patience:     defaultPatience,
		l2:           defaultL2,
	}}
}

// Fit trains on scaled features, early-stopped on validation RMSE
func (r *Regressor) Fit(x *mat.Dense, y []float64, xVal *mat.Dense, yVal []float64) error {
	return r.gd.fit(x, y, xVal, yVal, identity, rmse)
}

// Predict returns the regression value for a scaled row
func (r *Regressor) Predict(row []float64) float64 {
	return r.gd.predictRow(row)
}

func (r *Regressor) Kind() string { return kindRegressor }

func (r *Regressor) Coefficients() ([]float64, float64) {
	return r.gd.weights, r.gd.bias
}

func (r *Regressor) SetCoefficients(weights []float64, bias float64) {
	r.gd.weights = weights
	r.gd.bias = bias
}
