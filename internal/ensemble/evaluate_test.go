package ensemble

import (
	"math"
	"testing"
)

func TestRankAUC(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		y      []float64
		want   float64
	}{
		{"perfect separation", []float64{0.1, 0.2, 0.8, 0.9}, []float64{0, 0, 1, 1}, 1.0},
		{"inverted ranking", []float64{0.9, 0.8, 0.2, 0.1}, []float64{0, 0, 1, 1}, 0.0},
		{"all scores tied", []float64{0.5, 0.5, 0.5, 0.5}, []float64{0, 1, 0, 1}, 0.5},
		{"single class positive", []float64{0.2, 0.8}, []float64{1, 1}, 0.0},
		{"single class negative", []float64{0.2, 0.8}, []float64{0, 0}, 0.0},
		{"one discordant pair", []float64{0.1, 0.6, 0.4, 0.9}, []float64{0, 0, 1, 1}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rankAUC(tt.scores, tt.y)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("rankAUC = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateClassifierCounts(t *testing.T) {
	// A hand-built classifier: probability is sigmoid of the single input
	c := NewClassifier()
	c.SetCoefficients([]float64{1}, 0)

	x := [][]float64{{2}, {2}, {-2}, {-2}}
	y := []float64{1, 0, 0, 1}

	m := evaluateClassifier(c, x, y)
	// Predictions: 1,1,0,0 against 1,0,0,1
	if m.Accuracy != 0.5 {
		t.Errorf("accuracy = %v, want 0.5", m.Accuracy)
	}
	if m.Precision != 0.5 {
		t.Errorf("precision = %v, want 0.5", m.Precision)
	}
	if m.Recall != 0.5 {
		t.Errorf("recall = %v, want 0.5", m.Recall)
	}
}

func TestEvaluateRegressor(t *testing.T) {
	r := NewRegressor()
	r.SetCoefficients([]float64{1}, 0)

	x := [][]float64{{1}, {2}, {3}}
	y := []float64{2, 2, 4} // errors -1, 0, -1

	m := evaluateRegressor(r, x, y)
	if math.Abs(m.MAE-2.0/3.0) > 1e-9 {
		t.Errorf("mae = %v", m.MAE)
	}
	if math.Abs(m.RMSE-math.Sqrt(2.0/3.0)) > 1e-9 {
		t.Errorf("rmse = %v", m.RMSE)
	}
}
