package features

import (
	"fmt"
	"math"

	"github.com/skyalmanac/skyalmanac/internal/dataset"
)

// Target column names
const (
	TargetRain       = "has_rain"
	TargetPrecip     = dataset.ColPrecip
	TargetTempMean   = dataset.ColTempMean
	TargetWindSpeed  = dataset.ColWindSpeed
	TargetCloudCover = dataset.ColCloudCover
)

// RainThresholdMM marks a day as rainy for the classification target
const RainThresholdMM = 0.1

var (
	// lagColumns get shifted copies at these offsets (positions in sorted
	// order, not calendar days)
	lagColumns = []string{dataset.ColPrecip, dataset.ColTempMean, dataset.ColPressure, dataset.ColWaterVapor, dataset.ColCloudCover}
	lagOffsets = []int{1, 3, 7}

	// rollColumns get trailing-window means at these widths (min 1 observation)
	rollColumns = []string{dataset.ColTempMean, dataset.ColPressure, dataset.ColWaterVapor, dataset.ColWindSpeed, dataset.ColCloudCover}
	rollWindows = []int{3, 7}
)

// Engineer derives the full feature set from a table sorted ascending by
// date. Pure: the table is not modified. Leading rows carry NaN in lag
// columns; the training stage drops incomplete rows.
func Engineer(t *dataset.Table) *Frame {
	n := t.Len()
	f := NewFrame(n, t.Dates)

	// Base meteorological columns
	f.Add(dataset.ColTempMean, t.TempMean)
	f.Add(dataset.ColTempMin, t.TempMin)
	f.Add(dataset.ColTempMax, t.TempMax)
	f.Add(dataset.ColWindSpeed, t.WindSpeed)
	addOptional(f, dataset.ColDewPoint, t.DewPoint)
	addOptional(f, dataset.ColPressure, t.Pressure)
	addOptional(f, dataset.ColWaterVapor, t.WaterVapor)
	f.Add(dataset.ColCloudCover, t.CloudCover)
	addOptional(f, dataset.ColSolarRad, t.SolarRad)
	f.Add(dataset.ColPrecip, t.Precip)

	// Calendar fields
	year := make([]float64, n)
	month := make([]float64, n)
	day := make([]float64, n)
	doy := make([]float64, n)
	dow := make([]float64, n)
	for i := range t.Dates {
		year[i] = float64(t.Year[i])
		month[i] = float64(t.Month[i])
		day[i] = float64(t.Day[i])
		doy[i] = float64(t.DayOfYear[i])
		dow[i] = float64(t.Dates[i].Weekday())
	}
	f.Add("year", year)
	f.Add("month", month)
	f.Add("day", day)
	f.Add("day_of_year", doy)
	f.Add("day_of_week", dow)

	// Cyclical encodings so December sits next to January
	f.Add("month_sin", cyclical(month, 12, math.Sin))
	f.Add("month_cos", cyclical(month, 12, math.Cos))
	f.Add("day_of_year_sin", cyclical(doy, 365, math.Sin))
	f.Add("day_of_year_cos", cyclical(doy, 365, math.Cos))

	// Humidity proxy from the temperature/dew-point spread
	if t.DewPoint != nil {
		humidity := make([]float64, n)
		for i := range humidity {
			humidity[i] = clip(100-5*(t.TempMean[i]-t.DewPoint[i]), 0, 100)
		}
		f.Add("rel_humidity_approx", humidity)
	}

	tempRange := make([]float64, n)
	for i := range tempRange {
		tempRange[i] = t.TempMax[i] - t.TempMin[i]
	}
	f.Add("temp_range", tempRange)

	for _, name := range lagColumns {
		col := f.Col(name)
		if col == nil {
			continue
		}
		for _, offset := range lagOffsets {
			f.Add(fmt.Sprintf("%s_lag%d", name, offset), shift(col, offset))
		}
	}

	for _, name := range rollColumns {
		col := f.Col(name)
		if col == nil {
			continue
		}
		for _, window := range rollWindows {
			f.Add(fmt.Sprintf("%s_roll%d", name, window), rollingMean(col, window))
		}
	}

	// Binary rain indicator, the classification target
	hasRain := make([]float64, n)
	for i := range hasRain {
		if t.Precip[i] > RainThresholdMM {
			hasRain[i] = 1
		}
	}
	f.Add(TargetRain, hasRain)

	return f
}

// FeatureColumns returns, in canonical order, the predictor columns present
// in the frame. The order is fixed so scaler fitting and inference see
// identical layouts.
func FeatureColumns(f *Frame) []string {
	candidates := []string{
		// Current conditions
		dataset.ColTempMean, dataset.ColTempMin, dataset.ColTempMax,
		dataset.ColWindSpeed, dataset.ColDewPoint, dataset.ColPressure,
		dataset.ColWaterVapor, dataset.ColCloudCover, dataset.ColSolarRad,

		// Temporal
		"month", "day", "day_of_year", "day_of_week",
		"month_sin", "month_cos", "day_of_year_sin", "day_of_year_cos",

		// Derived
		"rel_humidity_approx", "temp_range",
	}
	for _, name := range lagColumns {
		for _, offset := range lagOffsets {
			candidates = append(candidates, fmt.Sprintf("%s_lag%d", name, offset))
		}
	}
	for _, name := range rollColumns {
		for _, window := range rollWindows {
			candidates = append(candidates, fmt.Sprintf("%s_roll%d", name, window))
		}
	}

	var present []string
	for _, name := range candidates {
		if f.Has(name) {
			present = append(present, name)
		}
	}
	return present
}

// TargetColumns returns the five prediction targets
func TargetColumns() []string {
	return []string{TargetRain, TargetPrecip, TargetTempMean, TargetWindSpeed, TargetCloudCover}
}

func addOptional(f *Frame, name string, col []float64) {
	if col != nil {
		f.Add(name, col)
	}
}

func cyclical(vals []float64, period float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = fn(2 * math.Pi * v / period)
	}
	return out
}

// shift returns the column displaced forward by offset rows; the first
// offset rows are NaN.
func shift(col []float64, offset int) []float64 {
	out := make([]float64, len(col))
	for i := range out {
		if i < offset {
			out[i] = math.NaN()
		} else {
			out[i] = col[i-offset]
		}
	}
	return out
}

// rollingMean computes a trailing mean over up to window rows, requiring at
// least one observation, skipping NaN inputs.
func rollingMean(col []float64, window int) []float64 {
	out := make([]float64, len(col))
	for i := range col {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum, count := 0.0, 0
		for j := start; j <= i; j++ {
			if !math.IsNaN(col[j]) {
				sum += col[j]
				count++
			}
		}
		if count == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(count)
		}
	}
	return out
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
