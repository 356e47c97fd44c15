package ensemble

import (
	"fmt"
	"math"

	"github.com/skyalmanac/skyalmanac/internal/dataset"
	"github.com/skyalmanac/skyalmanac/internal/weather"
)

// Point-prediction threshold flags, mirrors of the historical extreme
// probabilities but evaluated on predicted values.
const (
	ThresholdHotC        = 30.0
	ThresholdHeavyRainMM = 10.0
	ThresholdHighWindMS  = 5.0
	ThresholdHeavyCloud  = 75.0
)

// TempRange is a predicted min/max temperature pair
type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Thresholds are boolean exceedance flags on the predicted values
type Thresholds struct {
	TempAbove30C      bool `json:"temp_above_30C"`
	RainfallAbove10MM bool `json:"rainfall_above_10mm"`
	HighWind          bool `json:"high_wind"`
	HeavyCloud        bool `json:"heavy_cloud"`
}

// Prediction is the ensemble's structured output for one day
type Prediction struct {
	Date                string           `json:"date"`
	Location            string           `json:"location"`
	RainfallProbability float64          `json:"rainfall_probability"`
	PredictedRainfallMM float64          `json:"predicted_rainfall_mm"`
	PredictedTempRange  TempRange        `json:"predicted_temp_range"`
	PredictedWindSpeed  float64          `json:"predicted_wind_speed"`
	CloudCoverPct       float64          `json:"cloud_cover_pct"`
	WeatherCategory     weather.Category `json:"weather_category"`
	Thresholds          Thresholds       `json:"thresholds"`
}

// Predict runs the ensemble on one engineered feature row. Features named in
// the persisted metadata but absent from the row are filled with 0; the row
// is reordered to the persisted layout before scaling, so inference always
// sees the exact column order the scaler was fit on.
func (e *Ensemble) Predict(row map[string]float64, date, location string) (*Prediction, error) {
	vec := make([]float64, len(e.FeatureNames))
	for j, name := range e.FeatureNames {
		if v, ok := row[name]; ok && !math.IsNaN(v) {
			vec[j] = v
		}
	}

	scaled, err := e.Scaler.TransformRow(vec)
	if err != nil {
		return nil, err
	}

	cm, ok := e.models[SlotRainClassifier]
	if !ok {
		return nil, fmt.Errorf("ensemble for %q has no %s", e.Location, SlotRainClassifier)
	}
	classifier, ok := cm.(*Classifier)
	if !ok {
		return nil, fmt.Errorf("slot %s holds a %s", SlotRainClassifier, cm.Kind())
	}
	rainProb := classifier.PredictProba(scaled)

	// Two-stage gate: the amount model is only trusted once occurrence
	// looks likely, and only when training had enough rainy rows to fit it
	rainAmount := 0.0
	if amountModel, ok := e.models[SlotRainAmount]; ok && rainProb > RainGateProbability {
		rainAmount = math.Max(0, amountModel.Predict(scaled))
	}

	tempPred := e.models[SlotTemperature].Predict(scaled)
	windPred := e.models[SlotWind].Predict(scaled)
	cloudPred := e.models[SlotCloud].Predict(scaled)
	cloudPred = math.Min(math.Max(cloudPred, 0), 100)

	// Observed min/max from the input row when available, a fixed spread
	// around the predicted mean otherwise
	tempMin, tempMax := tempPred-3, tempPred+3
	if v, ok := row[dataset.ColTempMin]; ok && !math.IsNaN(v) {
		tempMin = v
	}
	if v, ok := row[dataset.ColTempMax]; ok && !math.IsNaN(v) {
		tempMax = v
	}

	category, _ := weather.Categorize(rainProb, cloudPred)

	return &Prediction{
		Date:                date,
		Location:            location,
		RainfallProbability: round3(rainProb),
		PredictedRainfallMM: round2(rainAmount),
		PredictedTempRange:  TempRange{Min: round1(tempMin), Max: round1(tempMax)},
		PredictedWindSpeed:  round1(windPred),
		CloudCoverPct:       round1(cloudPred),
		WeatherCategory:     category,
		Thresholds: Thresholds{
			TempAbove30C:      tempMax > ThresholdHotC,
			RainfallAbove10MM: rainAmount > ThresholdHeavyRainMM,
			HighWind:          windPred > ThresholdHighWindMS,
			HeavyCloud:        cloudPred > ThresholdHeavyCloud,
		},
	}, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
