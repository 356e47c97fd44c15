package ensemble

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Gradient descent defaults shared by both model kinds
const (
	defaultLearningRate = 0.05
	defaultMaxEpochs    = 500
	defaultPatience     = 50
	defaultL2           = 1e-4
)

// gdParams is the shared optimizer state for the linear and logistic models.
// Both have the gradient form Xᵀ(activate(Xw+b) − y)/n, so one descent loop
// serves both; only the activation and the validation loss differ.
type gdParams struct {
	weights []float64
	bias    float64

	learningRate float64
	maxEpochs    int
	patience     int
	l2           float64
}

// fit runs full-batch gradient descent with early stopping on validation
// loss: training stops after patience epochs without improvement and the
// best-epoch parameters are restored.
func (p *gdParams) fit(x *mat.Dense, y []float64, xVal *mat.Dense, yVal []float64,
	activate func(float64) float64, valLoss func(pred, y []float64) float64) error {

	n, cols := x.Dims()
	if n == 0 {
		return fmt.Errorf("no training rows")
	}
	if len(y) != n {
		return fmt.Errorf("%d rows but %d targets", n, len(y))
	}

	p.weights = make([]float64, cols)
	p.bias = 0

	bestLoss := math.Inf(1)
	bestWeights := make([]float64, cols)
	bestBias := 0.0
	sinceImprovement := 0

	w := mat.NewVecDense(cols, p.weights)
	pred := mat.NewVecDense(n, nil)
	residual := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(cols, nil)

	// Without a validation set, early-stop against the training loss instead
	useVal := xVal != nil && len(yVal) > 0

	for epoch := 0; epoch < p.maxEpochs; epoch++ {
		// Forward pass
		pred.MulVec(x, w)
		for i := 0; i < n; i++ {
			residual.SetVec(i, activate(pred.AtVec(i)+p.bias)-y[i])
		}

		// Parameter update
		grad.MulVec(x.T(), residual)
		biasGrad := 0.0
		for i := 0; i < n; i++ {
			biasGrad += residual.AtVec(i)
		}
		scale := p.learningRate / float64(n)
		for j := 0; j < cols; j++ {
			p.weights[j] -= scale*grad.AtVec(j) + p.learningRate*p.l2*p.weights[j]
		}
		p.bias -= scale * biasGrad

		// Early stopping on validation loss
		var loss float64
		if useVal {
			loss = valLoss(p.predictAll(xVal, activate), yVal)
		} else {
			loss = valLoss(p.predictAll(x, activate), y)
		}
		if loss < bestLoss {
			bestLoss = loss
			copy(bestWeights, p.weights)
			bestBias = p.bias
			sinceImprovement = 0
		} else {
			sinceImprovement++
			if sinceImprovement >= p.patience {
				break
			}
		}
	}

	copy(p.weights, bestWeights)
	p.bias = bestBias

	if math.IsNaN(p.bias) || anyNaN(p.weights) {
		return fmt.Errorf("diverged: parameters are NaN")
	}
	return nil
}

func (p *gdParams) predictAll(x *mat.Dense, activate func(float64) float64) []float64 {
	n, _ := x.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = activate(p.predictRow(x.RawRowView(i)))
	}
	return out
}

func (p *gdParams) predictRow(row []float64) float64 {
	sum := p.bias
	for j, w := range p.weights {
		sum += w * row[j]
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func identity(z float64) float64 { return z }

// logLoss is binary cross-entropy, clamped away from log(0)
func logLoss(pred, y []float64) float64 {
	const eps = 1e-12
	sum := 0.0
	for i := range y {
		p := math.Min(math.Max(pred[i], eps), 1-eps)
		if y[i] > 0.5 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(len(y))
}

func rmse(pred, y []float64) float64 {
	sum := 0.0
	for i := range y {
		d := pred[i] - y[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(y)))
}

func anyNaN(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
