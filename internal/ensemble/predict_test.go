package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyalmanac/skyalmanac/internal/dataset"
	"github.com/skyalmanac/skyalmanac/internal/weather"
)

// fixedEnsemble hand-builds a two-feature ensemble with an identity scaler.
// classifierBias pins the rain probability; the regressors are constants set
// through their biases.
func fixedEnsemble(classifierBias, amount, temp, wind, cloud float64, withAmount bool) *Ensemble {
	constant := func(bias float64) Model {
		r := NewRegressor()
		r.SetCoefficients([]float64{0, 0}, bias)
		return r
	}
	c := NewClassifier()
	c.SetCoefficients([]float64{0, 0}, classifierBias)

	e := &Ensemble{
		Location:     "Lisbon",
		FeatureNames: []string{"f1", "f2"},
		Scaler:       &Scaler{Mean: []float64{0, 0}, Std: []float64{1, 1}},
		models: map[string]Model{
			SlotRainClassifier: c,
			SlotTemperature:    constant(temp),
			SlotWind:           constant(wind),
			SlotCloud:          constant(cloud),
		},
	}
	if withAmount {
		e.models[SlotRainAmount] = constant(amount)
	}
	return e
}

func TestPredictRainGate(t *testing.T) {
	row := map[string]float64{"f1": 0, "f2": 0}

	// Probability under the gate: the amount model is ignored
	low := fixedEnsemble(-2, 8, 20, 3, 50, true) // sigmoid(-2) ≈ 0.12
	pred, err := low.Predict(row, "2026-06-01", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.PredictedRainfallMM)
	assert.InDelta(t, 0.119, pred.RainfallProbability, 0.001)

	// Probability over the gate: the amount model is trusted
	high := fixedEnsemble(2, 8, 20, 3, 50, true) // sigmoid(2) ≈ 0.88
	pred, err = high.Predict(row, "2026-06-01", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, 8.0, pred.PredictedRainfallMM)

	// Over the gate but no amount model: quantity stays zero
	missing := fixedEnsemble(2, 0, 20, 3, 50, false)
	pred, err = missing.Predict(row, "2026-06-01", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.PredictedRainfallMM)
}

func TestPredictNegativeAmountFloored(t *testing.T) {
	e := fixedEnsemble(2, -4, 20, 3, 50, true)
	pred, err := e.Predict(map[string]float64{}, "2026-06-01", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.PredictedRainfallMM)
}

func TestPredictCloudClamped(t *testing.T) {
	over := fixedEnsemble(-2, 0, 20, 3, 150, false)
	pred, err := over.Predict(map[string]float64{}, "2026-06-01", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, 100.0, pred.CloudCoverPct)

	under := fixedEnsemble(-2, 0, 20, 3, -30, false)
	pred, err = under.Predict(map[string]float64{}, "2026-06-01", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.CloudCoverPct)
}

func TestPredictMissingFeaturesFilledWithZero(t *testing.T) {
	// One weight active on f2; the row only carries f1
	c := NewClassifier()
	c.SetCoefficients([]float64{0, 5}, 0)
	constant := func(bias float64) Model {
		r := NewRegressor()
		r.SetCoefficients([]float64{0, 0}, bias)
		return r
	}
	e := &Ensemble{
		Location:     "Lisbon",
		FeatureNames: []string{"f1", "f2"},
		Scaler:       &Scaler{Mean: []float64{0, 0}, Std: []float64{1, 1}},
		models: map[string]Model{
			SlotRainClassifier: c,
			SlotTemperature:    constant(20),
			SlotWind:           constant(3),
			SlotCloud:          constant(50),
		},
	}

	pred, err := e.Predict(map[string]float64{"f1": 9}, "2026-06-01", "Lisbon")
	require.NoError(t, err)
	// f2 filled with 0 makes the classifier output exactly sigmoid(0)
	assert.Equal(t, 0.5, pred.RainfallProbability)
}

func TestPredictTempRangeFromObservations(t *testing.T) {
	e := fixedEnsemble(-2, 0, 20, 3, 50, false)

	row := map[string]float64{
		dataset.ColTempMin: 12.5,
		dataset.ColTempMax: 27.5,
	}
	pred, err := e.Predict(row, "2026-06-01", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, 12.5, pred.PredictedTempRange.Min)
	assert.Equal(t, 27.5, pred.PredictedTempRange.Max)

	// Without observed extremes, a fixed spread around the predicted mean
	pred, err = e.Predict(map[string]float64{}, "2026-06-01", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, 17.0, pred.PredictedTempRange.Min)
	assert.Equal(t, 23.0, pred.PredictedTempRange.Max)
}

func TestPredictCategoryAndThresholds(t *testing.T) {
	// Hot, windy, cloudy, heavy rain
	e := fixedEnsemble(2, 14, 33, 7, 80, true)
	pred, err := e.Predict(map[string]float64{}, "2026-06-01", "Lisbon")
	require.NoError(t, err)

	assert.Equal(t, weather.CategoryRainy, pred.WeatherCategory)
	assert.True(t, pred.Thresholds.TempAbove30C)
	assert.True(t, pred.Thresholds.RainfallAbove10MM)
	assert.True(t, pred.Thresholds.HighWind)
	assert.True(t, pred.Thresholds.HeavyCloud)

	// Mild day
	mild := fixedEnsemble(-3, 0, 18, 2, 30, false)
	pred, err = mild.Predict(map[string]float64{}, "2026-06-01", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, weather.CategoryClear, pred.WeatherCategory)
	assert.False(t, pred.Thresholds.TempAbove30C)
	assert.False(t, pred.Thresholds.RainfallAbove10MM)
	assert.False(t, pred.Thresholds.HighWind)
	assert.False(t, pred.Thresholds.HeavyCloud)
}
