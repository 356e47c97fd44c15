// Package dataset loads and caches per-location daily climate tables produced
// by the upstream reanalysis ETL. Tables are immutable after load; callers
// borrow read-only references from the Cache.
package dataset

import (
	"errors"
	"math"
	"sort"
	"time"
)

// ErrNotFound reports that no partition or recognized data file exists for a location.
var ErrNotFound = errors.New("dataset not found")

// Column names as written by the ETL pipeline.
const (
	ColDate       = "date"
	ColTempMean   = "T2M_mean"
	ColTempMin    = "T2M_min"
	ColTempMax    = "T2M_max"
	ColPrecip     = "PRECTOT_mm"
	ColWindU      = "U10M"
	ColWindV      = "V10M"
	ColWindSpeed  = "WindSpeed"
	ColCloudCover = "CLDTOT_pct"
	ColDewPoint   = "D2M"
	ColPressure   = "MSL"
	ColWaterVapor = "TCWV"
	ColSolarRad   = "SSRD"
	ColLocation   = "location_name"
)

// projection is the fixed set of columns read from a partition. Anything else
// in the file is skipped for load efficiency.
var projection = map[string]bool{
	ColDate: true, ColTempMean: true, ColTempMin: true, ColTempMax: true,
	ColPrecip: true, ColWindU: true, ColWindV: true, ColWindSpeed: true,
	ColCloudCover: true, ColDewPoint: true, ColPressure: true,
	ColWaterVapor: true, ColSolarRad: true, ColLocation: true,
}

// Table is one location's daily observation history, column-oriented and
// sorted ascending by date. Optional columns are nil when the source file
// does not carry them.
type Table struct {
	LocationName string

	Dates      []time.Time
	TempMean   []float64
	TempMin    []float64
	TempMax    []float64
	Precip     []float64
	WindSpeed  []float64
	CloudCover []float64

	DewPoint   []float64
	Pressure   []float64
	WaterVapor []float64
	SolarRad   []float64

	// Derived calendar fields
	Year      []int
	Month     []int
	Day       []int
	DayOfYear []int
}

// Len returns the number of daily records
func (t *Table) Len() int {
	return len(t.Dates)
}

// YearRange returns the first and last calendar years covered
func (t *Table) YearRange() (int, int) {
	if t.Len() == 0 {
		return 0, 0
	}
	return t.Year[0], t.Year[t.Len()-1]
}

// rawColumns is the intermediate form produced by the file readers before
// sorting and calendar derivation.
type rawColumns struct {
	dates    []time.Time
	cols     map[string][]float64
	location string
}

// build converts raw file columns into a finished Table: sorts by date,
// derives wind speed from components when needed, and attaches calendar fields.
func (r *rawColumns) build() *Table {
	n := len(r.dates)

	// Sort rows chronologically without assuming file order
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return r.dates[idx[a]].Before(r.dates[idx[b]]) })

	reorder := func(col []float64) []float64 {
		if col == nil {
			return nil
		}
		out := make([]float64, n)
		for i, j := range idx {
			out[i] = col[j]
		}
		return out
	}

	t := &Table{
		LocationName: r.location,
		Dates:        make([]time.Time, n),
		TempMean:     reorder(r.cols[ColTempMean]),
		TempMin:      reorder(r.cols[ColTempMin]),
		TempMax:      reorder(r.cols[ColTempMax]),
		Precip:       reorder(r.cols[ColPrecip]),
		WindSpeed:    reorder(r.cols[ColWindSpeed]),
		CloudCover:   reorder(r.cols[ColCloudCover]),
		DewPoint:     reorder(r.cols[ColDewPoint]),
		Pressure:     reorder(r.cols[ColPressure]),
		WaterVapor:   reorder(r.cols[ColWaterVapor]),
		SolarRad:     reorder(r.cols[ColSolarRad]),
	}
	for i, j := range idx {
		t.Dates[i] = r.dates[j]
	}

	// Wind speed from orthogonal components when the file lacks a derived column
	if t.WindSpeed == nil {
		u, v := reorder(r.cols[ColWindU]), reorder(r.cols[ColWindV])
		if u != nil && v != nil {
			t.WindSpeed = make([]float64, n)
			for i := range t.WindSpeed {
				t.WindSpeed[i] = math.Hypot(u[i], v[i])
			}
		}
	}

	t.Year = make([]int, n)
	t.Month = make([]int, n)
	t.Day = make([]int, n)
	t.DayOfYear = make([]int, n)
	for i, d := range t.Dates {
		t.Year[i] = d.Year()
		t.Month[i] = int(d.Month())
		t.Day[i] = d.Day()
		t.DayOfYear[i] = d.YearDay()
	}

	return t
}
