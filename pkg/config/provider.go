package config

// Provider defines the interface for configuration data sources
type Provider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetLocations() ([]LocationData, error)
	GetEngineConfig() (*EngineData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Engine    EngineData     `json:"engine"`
	Locations []LocationData `json:"locations,omitempty"`
}

// EngineData holds paths and tuning knobs for the prediction engine
type EngineData struct {
	DataDir      string  `json:"data_dir"`
	ModelDir     string  `json:"model_dir"`
	Debug        bool    `json:"debug,omitempty"`
	WindowDays   int     `json:"window_days,omitempty"`
	TestFraction float64 `json:"test_fraction,omitempty"`
	ValFraction  float64 `json:"val_fraction,omitempty"`
}

// LocationData identifies one coverage point; the folder name under the
// data directory is derived from the identifier.
type LocationData struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}
