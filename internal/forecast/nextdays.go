package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/skyalmanac/skyalmanac/internal/dataset"
	"github.com/skyalmanac/skyalmanac/internal/ensemble"
	"github.com/skyalmanac/skyalmanac/internal/features"
)

// analogWindowDays bounds the day-of-year distance when pooling historical
// analogs for a future date
const analogWindowDays = 7

// seedContextRows is how much trailing history seeds the iterative forecast
const seedContextRows = 30

// PredictNextDays produces an iterative forecast for the n days following the
// end of the historical record. Each future day is seeded with the median of
// historical rows near the same day of year, appended to a working copy of
// the recent history so lag and rolling features stay populated, then run
// through the ensemble.
func (c *Controller) PredictNextDays(n int, location string) ([]*ensemble.Prediction, error) {
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

	work := copyTail(table, seedContextRows)
	lastDate := work.Dates[len(work.Dates)-1]

	preds := make([]*ensemble.Prediction, 0, n)
	for day := 1; day <= n; day++ {
		date := lastDate.AddDate(0, 0, day)
		appendAnalogRow(work, table, date)

		frame := features.Engineer(work)
		row := frame.Row(frame.N()-1, rowColumns(e))
		pred, err := e.Predict(row, date.Format("2006-01-02"), table.LocationName)
		if err != nil {
			c.countInference("failed")
			return nil, err
		}
		preds = append(preds, pred)
	}
	c.countInference("ok")
	return preds, nil
}

// copyTail makes a mutable copy of the last n rows of a table
func copyTail(t *dataset.Table, n int) *dataset.Table {
	start := t.Len() - n
	if start < 0 {
		start = 0
	}
	dup := func(col []float64) []float64 {
		if col == nil {
			return nil
		}
		return append([]float64(nil), col[start:]...)
	}
	dupInt := func(col []int) []int { return append([]int(nil), col[start:]...) }
	return &dataset.Table{
		LocationName: t.LocationName,
		Dates:        append([]time.Time(nil), t.Dates[start:]...),
		TempMean:     dup(t.TempMean),
		TempMin:      dup(t.TempMin),
		TempMax:      dup(t.TempMax),
		Precip:       dup(t.Precip),
		WindSpeed:    dup(t.WindSpeed),
		CloudCover:   dup(t.CloudCover),
		DewPoint:     dup(t.DewPoint),
		Pressure:     dup(t.Pressure),
		WaterVapor:   dup(t.WaterVapor),
		SolarRad:     dup(t.SolarRad),
		Year:         dupInt(t.Year),
		Month:        dupInt(t.Month),
		Day:          dupInt(t.Day),
		DayOfYear:    dupInt(t.DayOfYear),
	}
}

// appendAnalogRow extends the working table with one synthetic row for a
// future date, each column seeded with the median of historical rows whose
// day of year falls within the analog window.
func appendAnalogRow(work, history *dataset.Table, date time.Time) {
	idx := analogIndices(history, date.YearDay())

	push := func(work, hist []float64) []float64 {
		if work == nil {
			return nil
		}
		if len(idx) == 0 {
			// No analogs: persist the last value
			return append(work, work[len(work)-1])
		}
		vals := make([]float64, 0, len(idx))
		for _, i := range idx {
			if v := hist[i]; !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			return append(work, work[len(work)-1])
		}
		sort.Float64s(vals)
		if m := len(vals); m%2 == 0 {
			return append(work, (vals[m/2-1]+vals[m/2])/2)
		}
		return append(work, vals[len(vals)/2])
	}

	work.TempMean = push(work.TempMean, history.TempMean)
	work.TempMin = push(work.TempMin, history.TempMin)
	work.TempMax = push(work.TempMax, history.TempMax)
	work.Precip = push(work.Precip, history.Precip)
	work.WindSpeed = push(work.WindSpeed, history.WindSpeed)
	work.CloudCover = push(work.CloudCover, history.CloudCover)
	work.DewPoint = push(work.DewPoint, history.DewPoint)
	work.Pressure = push(work.Pressure, history.Pressure)
	work.WaterVapor = push(work.WaterVapor, history.WaterVapor)
	work.SolarRad = push(work.SolarRad, history.SolarRad)

	work.Dates = append(work.Dates, date)
	work.Year = append(work.Year, date.Year())
	work.Month = append(work.Month, int(date.Month()))
	work.Day = append(work.Day, date.Day())
	work.DayOfYear = append(work.DayOfYear, date.YearDay())
}

// analogIndices returns historical rows near a day of year, wrapping across
// the year boundary.
func analogIndices(t *dataset.Table, dayOfYear int) []int {
	var idx []int
	for i, doy := range t.DayOfYear {
		diff := doy - dayOfYear
		if diff < 0 {
			diff = -diff
		}
		if wrap := 365 - diff; wrap < diff {
			diff = wrap
		}
		if diff <= analogWindowDays {
			idx = append(idx, i)
		}
	}
	return idx
}
