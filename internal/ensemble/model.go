// Package ensemble implements the five-model predictive ensemble: a rain
// occurrence classifier, a rain-amount regressor gated on occurrence, and
// independent regressors for temperature, wind, and cloud cover, sharing one
// feature scaler. Bundles persist per location.
package ensemble

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrBundleNotFound reports that no persisted bundle exists for a location.
var ErrBundleNotFound = errors.New("model bundle not found")

// TrainingError reports a failure while fitting one model slot. The whole
// run aborts; nothing from the failed run is persisted.
type TrainingError struct {
	Stage string
	Err   error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training %s: %v", e.Stage, e.Err)
}

func (e *TrainingError) Unwrap() error { return e.Err }

// Decision gates tying the sub-models together
const (
	// RainGateProbability is the occurrence probability above which the
	// amount regressor is trusted at inference time
	RainGateProbability = 0.3

	// MinRainySamples is the minimum number of rainy training rows needed
	// to fit the amount regressor at all
	MinRainySamples = 50
)

// Model is one trainable slot of the ensemble: fit on a training matrix with
// early stopping against a validation set, predict on a single scaled row.
type Model interface {
	Fit(x *mat.Dense, y []float64, xVal *mat.Dense, yVal []float64) error
	Predict(row []float64) float64
	Kind() string

	// Coefficients expose the learned parameters for persistence
	Coefficients() (weights []float64, bias float64)
	SetCoefficients(weights []float64, bias float64)
}

// Slot names, also the artifact file stems within a bundle
const (
	SlotRainClassifier = "rain_classifier"
	SlotRainAmount     = "rain_regressor"
	SlotTemperature    = "temp_regressor"
	SlotWind           = "wind_regressor"
	SlotCloud          = "cloud_regressor"
)

// slotDef describes one named model slot. Training, saving, and loading all
// iterate this same table so the bundle stays symmetric.
type slotDef struct {
	name     string
	target   string
	optional bool // absent from a valid bundle when training skipped it
	newModel func() Model
}

// modelKind tags persisted artifacts
const (
	kindClassifier = "logistic"
	kindRegressor  = "linear"
)

func newModelOfKind(kind string) (Model, error) {
	switch kind {
	case kindClassifier:
		return NewClassifier(), nil
	case kindRegressor:
		return NewRegressor(), nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", kind)
	}
}
