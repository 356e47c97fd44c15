// Package weather holds the categorization rule shared by the historical
// pattern predictor and the ensemble model.
package weather

// Category is a coarse sky condition label
type Category string

const (
	CategoryRainy  Category = "Rainy"
	CategoryCloudy Category = "Cloudy"
	CategoryClear  Category = "Clear"
)

// Categorization thresholds. Rain wins over cloud; a probability of exactly
// RainyProbability is not rainy.
const (
	RainyProbability = 0.6
	CloudyCoverPct   = 60.0
)

// Categorize applies the priority rule to a rain probability in [0,1] and a
// cloud cover percentage in [0,100], returning the category and a confidence
// in [0,1].
func Categorize(rainProbability, cloudPct float64) (Category, float64) {
	switch {
	case rainProbability > RainyProbability:
		return CategoryRainy, rainProbability
	case cloudPct > CloudyCoverPct:
		return CategoryCloudy, cloudPct / 100
	default:
		return CategoryClear, (100 - cloudPct) / 100
	}
}
