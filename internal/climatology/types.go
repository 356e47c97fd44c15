// Package climatology answers "what does the weather typically do on this
// date here" by mining every historical occurrence of a calendar date, within
// a tolerance window, out of a location's reanalysis record.
package climatology

import (
	"errors"

	"github.com/skyalmanac/skyalmanac/internal/weather"
)

// ErrEmptyMatch reports that a date query matched zero historical records.
var ErrEmptyMatch = errors.New("no historical records match")

// ErrInvalidDate reports an impossible calendar date.
var ErrInvalidDate = errors.New("invalid calendar date")

// Thresholds for the derived statistics. Rain is anything above
// RainThresholdMM; the intensity buckets partition the rainy days.
const (
	RainThresholdMM   = 0.1
	LightRainMaxMM    = 2.5
	ModerateRainMaxMM = 10.0

	HotDayC    = 30.0
	ColdDayC   = 10.0
	HighWindMS = 5.0

	ClearSkyPct = 30.0
	OvercastPct = 70.0

	DefaultWindowDays = 7
	MaxWindowDays     = 14

	// RecentYearsReported caps the per-year breakdown in results
	RecentYearsReported = 10
)

// RainfallStats summarizes precipitation over the match set
type RainfallStats struct {
	Probability        float64               `json:"probability"`
	ProbabilityPercent float64               `json:"probability_percent"`
	ExpectedAmountMM   float64               `json:"expected_amount_mm"`
	MedianAmountMM     float64               `json:"median_amount_mm"`
	MaxRecordedMM      float64               `json:"max_recorded_mm"`
	StdDeviationMM     float64               `json:"std_deviation_mm"`
	Intensity          IntensityDistribution `json:"intensity_distribution"`
}

// IntensityDistribution buckets matched days by rainfall amount. The four
// counts always sum to the total number of matched observations.
type IntensityDistribution struct {
	LightRainDays    int `json:"light_rain_days"`
	ModerateRainDays int `json:"moderate_rain_days"`
	HeavyRainDays    int `json:"heavy_rain_days"`
	NoRainDays       int `json:"no_rain_days"`
}

// TemperatureStats summarizes daily temperatures over the match set
type TemperatureStats struct {
	MeanAvgC      float64 `json:"mean_avg_celsius"`
	MeanStdC      float64 `json:"mean_std_celsius"`
	ExpectedRange RangeC  `json:"expected_range"`
	RecordLowC    float64 `json:"record_low_celsius"`
	RecordHighC   float64 `json:"record_high_celsius"`
}

// RangeC is a min/max pair in degrees Celsius
type RangeC struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// WindStats summarizes wind speed over the match set
type WindStats struct {
	MeanSpeedMS    float64 `json:"mean_speed_ms"`
	MaxRecordedMS  float64 `json:"max_recorded_ms"`
	StdDeviationMS float64 `json:"std_deviation_ms"`
}

// CloudStats summarizes cloud cover over the match set
type CloudStats struct {
	MeanPercent       float64 `json:"mean_percent"`
	StdPercent        float64 `json:"std_percent"`
	ClearDaysPercent  float64 `json:"clear_days_percent"`
	CloudyDaysPercent float64 `json:"cloudy_days_percent"`
}

// ExtremeProbabilities are independent chances of threshold exceedances,
// each the fraction of matched days satisfying the condition.
type ExtremeProbabilities struct {
	TempAbove30C     float64 `json:"temp_above_30C"`
	TempBelow10C     float64 `json:"temp_below_10C"`
	HeavyRainAbove10 float64 `json:"heavy_rain_above_10mm"`
	HighWindAbove5MS float64 `json:"high_wind_above_5ms"`
}

// AdditionalStats carries optional means, nil when the source dataset lacks
// the underlying column.
type AdditionalStats struct {
	HumidityProxy  *float64 `json:"humidity_celsius"`
	PressureHPa    *float64 `json:"pressure_hpa"`
	SolarRadiation *float64 `json:"solar_radiation_wm2"`
}

// YearSummary aggregates the match set within one calendar year
type YearSummary struct {
	RainfallMM float64 `json:"rainfall_mm"`
	TempC      float64 `json:"temp_celsius"`
	WindMS     float64 `json:"wind_ms"`
	CloudPct   float64 `json:"cloud_pct"`
}

// DateStatistics is the full result of a window-matched date query
type DateStatistics struct {
	Date                    string `json:"date"`
	MonthDay                string `json:"month_day"`
	Location                string `json:"location"`
	PredictionType          string `json:"prediction_type"`
	BasedOnDataRange        string `json:"based_on_data_range"`
	HistoricalYearsAnalyzed int    `json:"historical_years_analyzed"`
	TotalObservations       int    `json:"total_observations"`

	Rainfall    RainfallStats    `json:"rainfall"`
	Temperature TemperatureStats `json:"temperature"`
	Wind        WindStats        `json:"wind"`
	CloudCover  CloudStats       `json:"cloud_cover"`

	WeatherCategory    weather.Category `json:"weather_category"`
	CategoryConfidence float64          `json:"category_confidence"`

	Extremes    ExtremeProbabilities   `json:"extreme_probabilities"`
	Additional  AdditionalStats        `json:"additional"`
	RecentYears map[string]YearSummary `json:"recent_years"`
}

// MonthStatistics is the result of the simpler month-wide query
type MonthStatistics struct {
	Month        int    `json:"month"`
	MonthName    string `json:"month_name"`
	Location     string `json:"location"`
	TotalDays    int    `json:"total_days"`
	YearsCovered int    `json:"years_covered"`

	Rainfall struct {
		RainyDaysPercent      float64 `json:"rainy_days_percent"`
		AverageMonthlyTotalMM float64 `json:"average_monthly_total_mm"`
	} `json:"rainfall"`

	Temperature struct {
		AverageMeanC float64 `json:"average_mean_celsius"`
		AverageMinC  float64 `json:"average_min_celsius"`
		AverageMaxC  float64 `json:"average_max_celsius"`
	} `json:"temperature"`

	Wind struct {
		AverageSpeedMS float64 `json:"average_speed_ms"`
	} `json:"wind"`

	CloudCover struct {
		AveragePercent float64 `json:"average_percent"`
	} `json:"cloud_cover"`
}
