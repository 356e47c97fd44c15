package ensemble

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/skyalmanac/skyalmanac/internal/features"
)

// slots defines the ensemble in training order. Saving and loading iterate
// the same table, so a bundle always mirrors this structure.
var slots = []slotDef{
	{SlotRainClassifier, features.TargetRain, false, func() Model { return NewClassifier() }},
	{SlotRainAmount, features.TargetPrecip, true, func() Model { return NewRegressor() }},
	{SlotTemperature, features.TargetTempMean, false, func() Model { return NewRegressor() }},
	{SlotWind, features.TargetWindSpeed, false, func() Model { return NewRegressor() }},
	{SlotCloud, features.TargetCloudCover, false, func() Model { return NewRegressor() }},
}

// minTrainingRows is the least number of complete rows a frame must yield
const minTrainingRows = 50

// TrainConfig holds the split fractions
type TrainConfig struct {
	TestFraction float64
	ValFraction  float64
}

// Ensemble is a trained set of model slots plus the scaler and the feature
// layout they were fit against.
type Ensemble struct {
	Location     string
	FeatureNames []string
	Scaler       *Scaler
	TrainedAt    time.Time

	models map[string]Model
}

// Model returns a slot by name
func (e *Ensemble) Model(slot string) (Model, bool) {
	m, ok := e.models[slot]
	return m, ok
}

// Trainer fits a full ensemble from an engineered feature frame. Training is
// blocking and CPU-bound; run it out-of-band from request serving.
type Trainer struct {
	logger *zap.SugaredLogger
	cfg    TrainConfig
}

// NewTrainer creates a trainer. Zero fractions fall back to the defaults.
func NewTrainer(logger *zap.SugaredLogger, cfg TrainConfig) *Trainer {
	if cfg.TestFraction <= 0 {
		cfg.TestFraction = DefaultTestFraction
	}
	if cfg.ValFraction <= 0 {
		cfg.ValFraction = DefaultValFraction
	}
	return &Trainer{logger: logger, cfg: cfg}
}

// Train fits all slots in order on the frame's complete rows. Any fit error
// aborts the run; the returned ensemble is only valid when err is nil and is
// not persisted here — call Save on success.
func (tr *Trainer) Train(f *features.Frame, location string) (*Ensemble, error) {
	names := features.FeatureColumns(f)
	needed := append(append([]string(nil), names...), features.TargetColumns()...)

	// Rows incomplete from lag warm-up or source gaps are dropped here
	rows := f.ValidRows(needed)
	if len(rows) < minTrainingRows {
		return nil, &TrainingError{Stage: "prepare", Err: fmt.Errorf("only %d complete rows", len(rows))}
	}
	tr.logger.Infof("data prepared: %d samples, %d features", len(rows), len(names))

	trainIdx, valIdx, testIdx := chronoSplit(len(rows), tr.cfg.TestFraction, tr.cfg.ValFraction)
	pick := func(idx []int) []int {
		out := make([]int, len(idx))
		for i, j := range idx {
			out[i] = rows[j]
		}
		return out
	}
	trainRows, valRows, testRows := pick(trainIdx), pick(valIdx), pick(testIdx)
	tr.logger.Infof("split: train %d, val %d, test %d", len(trainRows), len(valRows), len(testRows))

	xTrain := f.Matrix(names, trainRows)
	xVal := f.Matrix(names, valRows)
	xTest := f.Matrix(names, testRows)

	scaler := &Scaler{}
	scaler.Fit(xTrain)
	for _, x := range []*mat.Dense{xTrain, xVal, xTest} {
		if x == nil {
			continue
		}
		if err := scaler.Transform(x); err != nil {
			return nil, &TrainingError{Stage: "scale", Err: err}
		}
	}

	e := &Ensemble{
		Location:     location,
		FeatureNames: names,
		Scaler:       scaler,
		TrainedAt:    time.Now().UTC(),
		models:       make(map[string]Model),
	}

	rainTrain := f.Vector(features.TargetRain, trainRows)
	rainVal := f.Vector(features.TargetRain, valRows)
	rainTest := f.Vector(features.TargetRain, testRows)

	for i, slot := range slots {
		tr.logger.Infof("[%d/%d] training %s", i+1, len(slots), slot.name)

		x, xv, xt := xTrain, xVal, xTest
		yTrain := f.Vector(slot.target, trainRows)
		yVal := f.Vector(slot.target, valRows)
		yTest := f.Vector(slot.target, testRows)

		// The amount model fits only rows where rain occurred
		if slot.name == SlotRainAmount {
			x, yTrain = maskRows(xTrain, yTrain, rainTrain)
			xv, yVal = maskRows(xVal, yVal, rainVal)
			xt, yTest = maskRows(xTest, yTest, rainTest)

			if len(yTrain) < MinRainySamples {
				tr.logger.Warnf("skipping %s: only %d rainy training rows (need %d)",
					slot.name, len(yTrain), MinRainySamples)
				continue
			}
		}

		m := slot.newModel()
		if err := m.Fit(x, yTrain, xv, yVal); err != nil {
			return nil, &TrainingError{Stage: slot.name, Err: err}
		}
		e.models[slot.name] = m

		tr.logSlotMetrics(slot.name, m, xt, yTest)
	}

	return e, nil
}

func (tr *Trainer) logSlotMetrics(name string, m Model, xTest *mat.Dense, yTest []float64) {
	if len(yTest) == 0 {
		return
	}
	rowsOf := func(x *mat.Dense) [][]float64 {
		n, _ := x.Dims()
		out := make([][]float64, n)
		for i := range out {
			out[i] = x.RawRowView(i)
		}
		return out
	}

	switch mm := m.(type) {
	case *Classifier:
		cm := evaluateClassifier(mm, rowsOf(xTest), yTest)
		tr.logger.Infof("  %s: accuracy %.4f, precision %.4f, recall %.4f, auc %.4f",
			name, cm.Accuracy, cm.Precision, cm.Recall, cm.AUC)
	case *Regressor:
		rm := evaluateRegressor(mm, rowsOf(xTest), yTest)
		tr.logger.Infof("  %s: rmse %.4f, mae %.4f", name, rm.RMSE, rm.MAE)
	}
}

// maskRows keeps the rows of x and y where the mask value is positive.
// Returns a nil matrix when nothing survives.
func maskRows(x *mat.Dense, y, mask []float64) (*mat.Dense, []float64) {
	_, cols := x.Dims()
	var kept []int
	for i, v := range mask {
		if v > 0.5 {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}

	out := mat.NewDense(len(kept), cols, nil)
	yOut := make([]float64, len(kept))
	for r, i := range kept {
		out.SetRow(r, x.RawRowView(i))
		yOut[r] = y[i]
	}
	return out, yOut
}
