package climatology

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"gonum.org/v1/gonum/stat"

	"github.com/skyalmanac/skyalmanac/internal/dataset"
	"github.com/skyalmanac/skyalmanac/internal/log"
	"github.com/skyalmanac/skyalmanac/internal/weather"
)

// Predictor computes closed-form statistics over the historical occurrences
// of a calendar date. It borrows a read-only table from the dataset cache and
// is deterministic given the same table and clock.
type Predictor struct {
	table *dataset.Table
	clock clockwork.Clock
}

// NewPredictor creates a predictor over one location's table. Pass a fake
// clock in tests to pin the next-occurrence date.
func NewPredictor(t *dataset.Table, clock clockwork.Clock) *Predictor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Predictor{table: t, clock: clock}
}

// PredictForDate builds the match set for (month, day) ± windowDays and
// derives probabilistic statistics from it. The day tolerance compares raw
// day-of-month values; records in adjacent months are never matched.
func (p *Predictor) PredictForDate(month, day, windowDays int) (*DateStatistics, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, fmt.Errorf("%02d-%02d: %w", month, day, ErrInvalidDate)
	}
	if windowDays < 0 || windowDays > MaxWindowDays {
		return nil, fmt.Errorf("window %d out of range [0, %d]: %w", windowDays, MaxWindowDays, ErrInvalidDate)
	}

	futureDate, err := p.nextOccurrence(month, day)
	if err != nil {
		return nil, err
	}

	matches := p.matchIndices(month, day, windowDays)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%02d-%02d window %d: %w", month, day, windowDays, ErrEmptyMatch)
	}

	t := p.table
	total := len(matches)
	years := distinctYears(t, matches)
	log.Debugf("matched %d historical records across %d years for %02d-%02d",
		total, years, month, day)

	precip := gather(t.Precip, matches)
	tempMean := gather(t.TempMean, matches)
	tempMin := gather(t.TempMin, matches)
	tempMax := gather(t.TempMax, matches)
	wind := gather(t.WindSpeed, matches)
	cloud := gather(t.CloudCover, matches)

	rainyDays := countAbove(precip, RainThresholdMM)
	rainProbability := float64(rainyDays) / float64(total)

	lightRain := countBetween(precip, RainThresholdMM, LightRainMaxMM)
	moderateRain := countBetween(precip, LightRainMaxMM, ModerateRainMaxMM)
	heavyRain := countAbove(precip, ModerateRainMaxMM)

	cloudMean := nanMean(cloud)
	category, confidence := weather.Categorize(rainProbability, cloudMean)

	startYear, endYear := t.YearRange()

	result := &DateStatistics{
		Date:                    futureDate.Format("2006-01-02"),
		MonthDay:                fmt.Sprintf("%02d-%02d", month, day),
		Location:                t.LocationName,
		PredictionType:          "historical_pattern",
		BasedOnDataRange:        fmt.Sprintf("%d-%d", startYear, endYear),
		HistoricalYearsAnalyzed: years,
		TotalObservations:       total,

		Rainfall: RainfallStats{
			Probability:        round3(rainProbability),
			ProbabilityPercent: round1(rainProbability * 100),
			ExpectedAmountMM:   round2(nanMean(precip)),
			MedianAmountMM:     round2(median(precip)),
			MaxRecordedMM:      round2(maxOf(precip)),
			StdDeviationMM:     round2(nanStd(precip)),
			Intensity: IntensityDistribution{
				LightRainDays:    lightRain,
				ModerateRainDays: moderateRain,
				HeavyRainDays:    heavyRain,
				NoRainDays:       total - rainyDays,
			},
		},

		Temperature: TemperatureStats{
			MeanAvgC: round1(nanMean(tempMean)),
			MeanStdC: round1(nanStd(tempMean)),
			ExpectedRange: RangeC{
				Min: round1(nanMean(tempMin)),
				Max: round1(nanMean(tempMax)),
			},
			RecordLowC:  round1(minOf(tempMin)),
			RecordHighC: round1(maxOf(tempMax)),
		},

		Wind: WindStats{
			MeanSpeedMS:    round1(nanMean(wind)),
			MaxRecordedMS:  round1(maxOf(wind)),
			StdDeviationMS: round1(nanStd(wind)),
		},

		CloudCover: CloudStats{
			MeanPercent:       round1(cloudMean),
			StdPercent:        round1(nanStd(cloud)),
			ClearDaysPercent:  round1(float64(countBelow(cloud, ClearSkyPct)) / float64(total) * 100),
			CloudyDaysPercent: round1(float64(countAbove(cloud, OvercastPct)) / float64(total) * 100),
		},

		WeatherCategory:    category,
		CategoryConfidence: round2(confidence),

		Extremes: ExtremeProbabilities{
			TempAbove30C:     round3(float64(countAbove(tempMax, HotDayC)) / float64(total)),
			TempBelow10C:     round3(float64(countBelow(tempMin, ColdDayC)) / float64(total)),
			HeavyRainAbove10: round3(float64(heavyRain) / float64(total)),
			HighWindAbove5MS: round3(float64(countAbove(wind, HighWindMS)) / float64(total)),
		},

		Additional:  p.optionalMeans(matches),
		RecentYears: p.yearlyBreakdown(matches),
	}

	return result, nil
}

// nextOccurrence finds the next future calendar occurrence of (month, day)
// relative to the clock: this year if not yet passed, otherwise next year.
// Dates invalid in the current leap context (Feb 29) roll forward to the
// next year in which they exist.
func (p *Predictor) nextOccurrence(month, day int) (time.Time, error) {
	now := p.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for year := now.Year(); year <= now.Year()+8; year++ {
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if int(d.Month()) != month || d.Day() != day {
			continue // normalized away: no such date in this year
		}
		if d.Before(today) {
			continue
		}
		return d, nil
	}
	return time.Time{}, fmt.Errorf("%02d-%02d: %w", month, day, ErrInvalidDate)
}

func (p *Predictor) matchIndices(month, day, windowDays int) []int {
	var matches []int
	for i := 0; i < p.table.Len(); i++ {
		if p.table.Month[i] != month {
			continue
		}
		if abs(p.table.Day[i]-day) <= windowDays {
			matches = append(matches, i)
		}
	}
	return matches
}

func (p *Predictor) optionalMeans(matches []int) AdditionalStats {
	var a AdditionalStats
	if p.table.DewPoint != nil {
		a.HumidityProxy = ptr(round1(nanMean(gather(p.table.DewPoint, matches))))
	}
	if p.table.Pressure != nil {
		a.PressureHPa = ptr(round1(nanMean(gather(p.table.Pressure, matches))))
	}
	if p.table.SolarRad != nil {
		a.SolarRadiation = ptr(round1(nanMean(gather(p.table.SolarRad, matches))))
	}
	return a
}

// yearlyBreakdown groups the match set by calendar year (precipitation sum,
// means for the rest), keeping only the most recent RecentYearsReported years.
func (p *Predictor) yearlyBreakdown(matches []int) map[string]YearSummary {
	type agg struct {
		precip, temp, wind, cloud float64
		tempN, windN, cloudN      int
	}
	byYear := make(map[int]*agg)
	for _, i := range matches {
		y := p.table.Year[i]
		a, ok := byYear[y]
		if !ok {
			a = &agg{}
			byYear[y] = a
		}
		// Cells that failed to parse are NaN and stay out of the sums.
		if v := p.table.Precip[i]; !math.IsNaN(v) {
			a.precip += v
		}
		if v := p.table.TempMean[i]; !math.IsNaN(v) {
			a.temp += v
			a.tempN++
		}
		if v := p.table.WindSpeed[i]; !math.IsNaN(v) {
			a.wind += v
			a.windN++
		}
		if v := p.table.CloudCover[i]; !math.IsNaN(v) {
			a.cloud += v
			a.cloudN++
		}
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	if len(years) > RecentYearsReported {
		years = years[len(years)-RecentYearsReported:]
	}

	out := make(map[string]YearSummary, len(years))
	for _, y := range years {
		a := byYear[y]
		out[fmt.Sprintf("%d", y)] = YearSummary{
			RainfallMM: round2(a.precip),
			TempC:      round2(a.temp / float64(a.tempN)),
			WindMS:     round2(a.wind / float64(a.windN)),
			CloudPct:   round2(a.cloud / float64(a.cloudN)),
		}
	}
	return out
}

func distinctYears(t *dataset.Table, matches []int) int {
	seen := make(map[int]bool)
	for _, i := range matches {
		seen[t.Year[i]] = true
	}
	return len(seen)
}

func gather(col []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = col[j]
	}
	return out
}

func countAbove(vals []float64, threshold float64) int {
	n := 0
	for _, v := range vals {
		if v > threshold {
			n++
		}
	}
	return n
}

func countBelow(vals []float64, threshold float64) int {
	n := 0
	for _, v := range vals {
		if v < threshold {
			n++
		}
	}
	return n
}

func countBetween(vals []float64, low, high float64) int {
	n := 0
	for _, v := range vals {
		if v > low && v <= high {
			n++
		}
	}
	return n
}

// dropNaN returns vals with NaN cells removed. Unparseable source cells load
// as NaN and must not reach the moment computations.
func dropNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func nanMean(vals []float64) float64 { return stat.Mean(dropNaN(vals), nil) }
func nanStd(vals []float64) float64  { return stat.StdDev(dropNaN(vals), nil) }

// median ignores NaN and averages the two middle values for even counts.
func median(vals []float64) float64 {
	sorted := dropNaN(vals)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func minOf(vals []float64) float64 {
	m := math.Inf(1)
	for _, v := range vals {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func ptr(v float64) *float64 { return &v }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
