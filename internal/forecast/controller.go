// Package forecast orchestrates the predictive ensemble: feature engineering
// into training runs, bundle persistence, and per-date inference against the
// cached historical record.
package forecast

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skyalmanac/skyalmanac/internal/dataset"
	"github.com/skyalmanac/skyalmanac/internal/ensemble"
	"github.com/skyalmanac/skyalmanac/internal/features"
	"github.com/skyalmanac/skyalmanac/pkg/metrics"
)

// contextWindow is how many trailing rows of history feed the lag and
// rolling features of a single inference row
const contextWindow = 10

// Controller composes the dataset cache, the feature pipeline, and the
// ensemble. Training is blocking and must be invoked out-of-band from any
// request-serving path; inference is a bounded single-row pass.
type Controller struct {
	cache    *dataset.Cache
	modelDir string
	logger   *zap.SugaredLogger
	metrics  *metrics.Collector
	trainCfg ensemble.TrainConfig

	mu     sync.Mutex
	loaded map[string]*ensemble.Ensemble
}

// NewController creates a controller. The metrics collector may be nil.
func NewController(cache *dataset.Cache, modelDir string, logger *zap.SugaredLogger,
	collector *metrics.Collector, trainCfg ensemble.TrainConfig) *Controller {
	return &Controller{
		cache:    cache,
		modelDir: modelDir,
		logger:   logger,
		metrics:  collector,
		trainCfg: trainCfg,
		loaded:   make(map[string]*ensemble.Ensemble),
	}
}

// Train fits and persists a fresh bundle for a location. A failed run leaves
// any previously-saved bundle untouched.
func (c *Controller) Train(location string) error {
	start := time.Now()

	table, err := c.cache.GetOrLoad(location)
	if err != nil {
		c.countTraining("load_failed")
		return err
	}

	frame := features.Engineer(table)
	trainer := ensemble.NewTrainer(c.logger, c.trainCfg)

	e, err := trainer.Train(frame, location)
	if err != nil {
		c.countTraining("failed")
		return err
	}
	if err := e.Save(c.modelDir); err != nil {
		c.countTraining("save_failed")
		return fmt.Errorf("persisting bundle for %q: %w", location, err)
	}

	// Replace any stale in-memory ensemble with the fresh one
	c.mu.Lock()
	c.loaded[location] = e
	c.mu.Unlock()

	c.countTraining("ok")
	if c.metrics != nil {
		c.metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	}
	c.logger.Infof("training complete for %s in %s", location, time.Since(start).Round(time.Second))
	return nil
}

// PredictDate runs the ensemble for a calendar date, feeding it the closest
// historical row plus enough trailing context to populate lag and rolling
// features.
func (c *Controller) PredictDate(target time.Time, location string) (*ensemble.Prediction, error) {
	table, err := c.cache.GetOrLoad(location)
	if err != nil {
		c.countInference("load_failed")
		return nil, err
	}

	e, err := c.ensembleFor(location)
	if err != nil {
		c.countInference("no_bundle")
		return nil, err
	}

	idx := closestDateIndex(table, target)
	startRow := idx - contextWindow
	if startRow < 0 {
		startRow = 0
	}
	frame := features.Engineer(sliceTable(table, startRow, idx+1))

	row := frame.Row(frame.N()-1, rowColumns(e))
	pred, err := e.Predict(row, target.Format("2006-01-02"), table.LocationName)
	if err != nil {
		c.countInference("failed")
		return nil, err
	}
	c.countInference("ok")
	return pred, nil
}

// ensembleFor returns the in-memory ensemble for a location, loading the
// persisted bundle on first use.
func (c *Controller) ensembleFor(location string) (*ensemble.Ensemble, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.loaded[location]; ok {
		return e, nil
	}
	e, err := ensemble.Load(c.modelDir, location)
	if err != nil {
		return nil, err
	}
	c.loaded[location] = e
	return e, nil
}

// rowColumns is every column inference wants from an engineered row: the
// persisted feature layout plus the observed temperature extremes.
func rowColumns(e *ensemble.Ensemble) []string {
	names := append([]string(nil), e.FeatureNames...)
	return append(names, dataset.ColTempMin, dataset.ColTempMax)
}

func (c *Controller) countTraining(outcome string) {
	if c.metrics != nil {
		c.metrics.TrainingRunsTotal.WithLabelValues(outcome).Inc()
	}
}

func (c *Controller) countInference(outcome string) {
	if c.metrics != nil {
		c.metrics.InferenceTotal.WithLabelValues(outcome).Inc()
	}
}

// closestDateIndex finds the row whose date is nearest the target
func closestDateIndex(t *dataset.Table, target time.Time) int {
	best, bestDiff := 0, time.Duration(1<<62)
	for i, d := range t.Dates {
		diff := target.Sub(d)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}

// sliceTable returns a read-only view of rows [start, end)
func sliceTable(t *dataset.Table, start, end int) *dataset.Table {
	cut := func(col []float64) []float64 {
		if col == nil {
			return nil
		}
		return col[start:end]
	}
	return &dataset.Table{
		LocationName: t.LocationName,
		Dates:        t.Dates[start:end],
		TempMean:     cut(t.TempMean),
		TempMin:      cut(t.TempMin),
		TempMax:      cut(t.TempMax),
		Precip:       cut(t.Precip),
		WindSpeed:    cut(t.WindSpeed),
		CloudCover:   cut(t.CloudCover),
		DewPoint:     cut(t.DewPoint),
		Pressure:     cut(t.Pressure),
		WaterVapor:   cut(t.WaterVapor),
		SolarRad:     cut(t.SolarRad),
		Year:         t.Year[start:end],
		Month:        t.Month[start:end],
		Day:          t.Day[start:end],
		DayOfYear:    t.DayOfYear[start:end],
	}
}
