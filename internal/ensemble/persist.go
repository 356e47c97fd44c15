package ensemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/skyalmanac/skyalmanac/internal/dataset"
	"github.com/skyalmanac/skyalmanac/internal/log"
)

const (
	bundlePrefix = "almanac"
	modelVersion = "1.0"
)

// Metadata is the bundle descriptor. The feature name list records, in
// order, exactly the columns the scaler was fit against; inference must
// reproduce that ordering.
type Metadata struct {
	FeatureNames []string `json:"feature_names"`
	NFeatures    int      `json:"n_features"`
	LocationName string   `json:"location_name"`
	ModelVersion string   `json:"model_version"`
	TrainedDate  string   `json:"trained_date"`
}

// artifact is the serialized form of one model slot
type artifact struct {
	Kind    string    `msgpack:"kind"`
	Weights []float64 `msgpack:"weights"`
	Bias    float64   `msgpack:"bias"`
}

func bundleDir(modelDir, location string) string {
	return filepath.Join(modelDir, dataset.FolderName(location))
}

func artifactPath(dir, slot string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.bin", bundlePrefix, slot))
}

// Save persists every present slot, the scaler, and the metadata descriptor
// under a location-derived directory, overwriting any prior bundle. Stale
// optional artifacts from an earlier run are removed so the bundle on disk
// always mirrors this ensemble.
func (e *Ensemble) Save(modelDir string) error {
	dir := bundleDir(modelDir, e.Location)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating bundle dir: %w", err)
	}

	for _, slot := range slots {
		path := artifactPath(dir, slot.name)
		m, ok := e.models[slot.name]
		if !ok {
			os.Remove(path)
			continue
		}
		weights, bias := m.Coefficients()
		buf, err := msgpack.Marshal(artifact{Kind: m.Kind(), Weights: weights, Bias: bias})
		if err != nil {
			return fmt.Errorf("encoding %s: %w", slot.name, err)
		}
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", slot.name, err)
		}
	}

	scalerBuf, err := msgpack.Marshal(e.Scaler)
	if err != nil {
		return fmt.Errorf("encoding scaler: %w", err)
	}
	if err := os.WriteFile(artifactPath(dir, "feature_scaler"), scalerBuf, 0o644); err != nil {
		return fmt.Errorf("writing scaler: %w", err)
	}

	meta := Metadata{
		FeatureNames: e.FeatureNames,
		NFeatures:    len(e.FeatureNames),
		LocationName: e.Location,
		ModelVersion: modelVersion,
		TrainedDate:  e.TrainedAt.Format(time.RFC3339),
	}
	metaBuf, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	metaPath := filepath.Join(dir, bundlePrefix+"_metadata.json")
	if err := os.WriteFile(metaPath, metaBuf, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	log.Infof("models saved to %s", dir)
	return nil
}

// Load reads a persisted bundle for a location. The rain-amount regressor is
// optional: its absence means training saw too few rainy rows. Every other
// slot and the scaler are required.
func Load(modelDir, location string) (*Ensemble, error) {
	dir := bundleDir(modelDir, location)

	metaBuf, err := os.ReadFile(filepath.Join(dir, bundlePrefix+"_metadata.json"))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("location %q: %w", location, ErrBundleNotFound)
	}
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(metaBuf, &meta); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}

	scalerBuf, err := os.ReadFile(artifactPath(dir, "feature_scaler"))
	if err != nil {
		return nil, fmt.Errorf("reading scaler: %w", err)
	}
	scaler := &Scaler{}
	if err := msgpack.Unmarshal(scalerBuf, scaler); err != nil {
		return nil, fmt.Errorf("decoding scaler: %w", err)
	}

	e := &Ensemble{
		Location:     meta.LocationName,
		FeatureNames: meta.FeatureNames,
		Scaler:       scaler,
		models:       make(map[string]Model),
	}
	if t, err := time.Parse(time.RFC3339, meta.TrainedDate); err == nil {
		e.TrainedAt = t
	}

	for _, slot := range slots {
		buf, err := os.ReadFile(artifactPath(dir, slot.name))
		if os.IsNotExist(err) {
			if slot.optional {
				continue
			}
			return nil, fmt.Errorf("bundle for %q missing required artifact %s", location, slot.name)
		}
		if err != nil {
			return nil, err
		}

		var a artifact
		if err := msgpack.Unmarshal(buf, &a); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", slot.name, err)
		}
		m, err := newModelOfKind(a.Kind)
		if err != nil {
			return nil, fmt.Errorf("artifact %s: %w", slot.name, err)
		}
		m.SetCoefficients(a.Weights, a.Bias)
		e.models[slot.name] = m
	}

	log.Infof("models loaded from %s", dir)
	return e, nil
}
