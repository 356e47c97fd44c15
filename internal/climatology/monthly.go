package climatology

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// MonthlyStatistics aggregates every record in the given calendar month
// across all years. Simpler sibling of PredictForDate: no window, no
// categorization.
func (p *Predictor) MonthlyStatistics(month int) (*MonthStatistics, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month %d: %w", month, ErrInvalidDate)
	}

	t := p.table
	var matches []int
	for i := 0; i < t.Len(); i++ {
		if t.Month[i] == month {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("month %d: %w", month, ErrEmptyMatch)
	}

	total := len(matches)
	precip := gather(t.Precip, matches)

	// Average of per-year precipitation totals. NaN cells stay out of the
	// sums but the year still counts as covered.
	totalsByYear := make(map[int]float64)
	for _, i := range matches {
		y := t.Year[i]
		if _, ok := totalsByYear[y]; !ok {
			totalsByYear[y] = 0
		}
		if v := t.Precip[i]; !math.IsNaN(v) {
			totalsByYear[y] += v
		}
	}
	var yearTotals []float64
	for _, sum := range totalsByYear {
		yearTotals = append(yearTotals, sum)
	}

	result := &MonthStatistics{
		Month:        month,
		MonthName:    time.Month(month).String(),
		Location:     t.LocationName,
		TotalDays:    total,
		YearsCovered: len(totalsByYear),
	}
	result.Rainfall.RainyDaysPercent = round1(float64(countAbove(precip, RainThresholdMM)) / float64(total) * 100)
	result.Rainfall.AverageMonthlyTotalMM = round1(stat.Mean(yearTotals, nil))
	result.Temperature.AverageMeanC = round1(nanMean(gather(t.TempMean, matches)))
	result.Temperature.AverageMinC = round1(nanMean(gather(t.TempMin, matches)))
	result.Temperature.AverageMaxC = round1(nanMean(gather(t.TempMax, matches)))
	result.Wind.AverageSpeedMS = round1(nanMean(gather(t.WindSpeed, matches)))
	result.CloudCover.AveragePercent = round1(nanMean(gather(t.CloudCover, matches)))

	return result, nil
}
