package ensemble

import "gonum.org/v1/gonum/mat"

// Classifier is a logistic-regression rain occurrence model
type Classifier struct {
	gd gdParams
}

// NewClassifier creates a classifier with default optimizer settings
func NewClassifier() *Classifier {
	return &Classifier{gd: gdParams{
		learningRate: defaultLearningRate,
		maxEpochs:    defaultMaxEpochs,
		patience:     defaultPatience,
		l2:           defaultL2,
	}}
}

// Fit trains on scaled features with binary targets, early-stopped on
// validation log-loss
func (c *Classifier) Fit(x *mat.Dense, y []float64, xVal *mat.Dense, yVal []float64) error {
	return c.gd.fit(x, y, xVal, yVal, sigmoid, logLoss)
}

// Predict returns the hard class label for a scaled row
func (c *Classifier) Predict(row []float64) float64 {
	if c.PredictProba(row) > 0.5 {
		return 1
	}
	return 0
}

// PredictProba returns the positive-class probability for a scaled row
func (c *Classifier) PredictProba(row []float64) float64 {
	return sigmoid(c.gd.predictRow(row))
}

func (c *Classifier) Kind() string { return kindClassifier }

func (c *Classifier) Coefficients() ([]float64, float64) {
	return c.gd.weights, c.gd.bias
}

func (c *Classifier) SetCoefficients(weights []float64, bias float64) {
	c.gd.weights = weights
	c.gd.bias = bias
}
