package forecast

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skyalmanac/skyalmanac/internal/dataset"
	"github.com/skyalmanac/skyalmanac/internal/ensemble"
)

// writeDataset produces a deterministic two-year daily CSV partition: rain
// every third day with high cloud, seasonal temperature.
func writeDataset(t *testing.T, dataDir, location string, days int) {
	t.Helper()
	dir := filepath.Join(dataDir, dataset.FolderName(location))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	var b strings.Builder
	b.WriteString("date,T2M_mean,T2M_min,T2M_max,PRECTOT_mm,WindSpeed,CLDTOT_pct,D2M,MSL,TCWV\n")
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		doy := float64(d.YearDay())
		temp := 17 + 8*math.Sin(2*math.Pi*doy/365)

		precip, cloud := 0.0, 20+float64((i*7)%40)
		if i%3 == 0 {
			precip, cloud = 6.0, 75+float64(i%20)
		}

		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f\n",
			d.Format("2006-01-02"), temp, temp-4, temp+4, precip,
			2+float64(i%7)*0.5, cloud, temp-5, 1013+2*math.Sin(doy/10), 28+3*math.Sin(doy/20))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "processed_2019_2020.csv"), []byte(b.String()), 0o644))
}

func newTestController(t *testing.T, dataDir, modelDir string) *Controller {
	t.Helper()
	logger := zap.NewNop().Sugar()
	cache := dataset.NewCache(dataset.NewStore(dataDir), logger, nil)
	return NewController(cache, modelDir, logger, nil, ensemble.TrainConfig{})
}

func TestTrainAndPredictDate(t *testing.T) {
	dataDir, modelDir := t.TempDir(), t.TempDir()
	writeDataset(t, dataDir, "lisbon", 600)

	c := newTestController(t, dataDir, modelDir)
	require.NoError(t, c.Train("lisbon"))

	// The bundle landed on disk
	_, err := os.Stat(filepath.Join(modelDir, "lisbon", "almanac_metadata.json"))
	require.NoError(t, err)

	target := time.Date(2019, 7, 15, 0, 0, 0, 0, time.UTC)
	pred, err := c.PredictDate(target, "lisbon")
	require.NoError(t, err)

	assert.Equal(t, "2019-07-15", pred.Date)
	assert.GreaterOrEqual(t, pred.RainfallProbability, 0.0)
	assert.LessOrEqual(t, pred.RainfallProbability, 1.0)
	assert.GreaterOrEqual(t, pred.CloudCoverPct, 0.0)
	assert.LessOrEqual(t, pred.CloudCoverPct, 100.0)
	assert.Less(t, pred.PredictedTempRange.Min, pred.PredictedTempRange.Max)
}

func TestPredictDateLoadsPersistedBundle(t *testing.T) {
	dataDir, modelDir := t.TempDir(), t.TempDir()
	writeDataset(t, dataDir, "lisbon", 600)

	require.NoError(t, newTestController(t, dataDir, modelDir).Train("lisbon"))

	// A fresh controller must find the bundle on disk
	c := newTestController(t, dataDir, modelDir)
	pred, err := c.PredictDate(time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), "lisbon")
	require.NoError(t, err)
	assert.Equal(t, "2020-03-01", pred.Date)
}

func TestPredictDateWithoutBundle(t *testing.T) {
	dataDir := t.TempDir()
	writeDataset(t, dataDir, "lisbon", 600)

	c := newTestController(t, dataDir, t.TempDir())
	_, err := c.PredictDate(time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), "lisbon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ensemble.ErrBundleNotFound))
}

func TestTrainMissingLocation(t *testing.T) {
	c := newTestController(t, t.TempDir(), t.TempDir())
	err := c.Train("atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrNotFound))
}

func TestPredictNextDays(t *testing.T) {
	dataDir, modelDir := t.TempDir(), t.TempDir()
	writeDataset(t, dataDir, "lisbon", 600)

	c := newTestController(t, dataDir, modelDir)
	require.NoError(t, c.Train("lisbon"))

	preds, err := c.PredictNextDays(5, "lisbon")
	require.NoError(t, err)
	require.Len(t, preds, 5)

	// Consecutive dates starting the day after the record ends
	last := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 599)
	for i, pred := range preds {
		want := last.AddDate(0, 0, i+1).Format("2006-01-02")
		assert.Equal(t, want, pred.Date, "day %d", i+1)
		assert.GreaterOrEqual(t, pred.CloudCoverPct, 0.0)
		assert.LessOrEqual(t, pred.CloudCoverPct, 100.0)
	}
}

func TestClosestDateIndex(t *testing.T) {
	table := &dataset.Table{
		Dates: []time.Time{
			time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 1, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	tests := []struct {
		target string
		want   int
	}{
		{"2020-01-01", 0},
		{"2020-01-04", 1},
		{"2020-01-08", 2},
		{"2019-12-01", 0},
		{"2021-06-01", 2},
	}
	for _, tt := range tests {
		target, err := time.Parse("2006-01-02", tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.want, closestDateIndex(table, target), "target %s", tt.target)
	}
}

func TestAnalogIndicesWrapAroundYearEnd(t *testing.T) {
	table := &dataset.Table{DayOfYear: []int{1, 5, 180, 360, 364}}

	idx := analogIndices(table, 2)
	// Day 2 matches days 1 and 5 directly, and 360/364 across the boundary
	assert.Equal(t, []int{0, 1, 3, 4}, idx)

	idx = analogIndices(table, 180)
	assert.Equal(t, []int{2}, idx)
}

func TestAnalogSeedUsesMidpointMedian(t *testing.T) {
	// Four analogs around day 100; even count, so the seed must be the
	// average of the two middle values, not the lower one.
	history := &dataset.Table{
		DayOfYear: []int{98, 99, 101, 102, 250},
		TempMean:  []float64{10, 20, 30, 40, 99},
		Precip:    []float64{0, 1, math.NaN(), 4, 99},
	}
	work := &dataset.Table{
		Dates:     []time.Time{time.Date(2021, 4, 9, 0, 0, 0, 0, time.UTC)},
		DayOfYear: []int{99},
		Year:      []int{2021},
		Month:     []int{4},
		Day:       []int{9},
		TempMean:  []float64{15},
		Precip:    []float64{2},
	}

	appendAnalogRow(work, history, time.Date(2021, 4, 10, 0, 0, 0, 0, time.UTC))

	require.Len(t, work.TempMean, 2)
	assert.InDelta(t, 25.0, work.TempMean[1], 1e-12)
	// NaN analog cells drop out before the median
	assert.InDelta(t, 1.0, work.Precip[1], 1e-12)
}
