package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/skyalmanac/skyalmanac/internal/dataset"
	"github.com/skyalmanac/skyalmanac/internal/ensemble"
	"github.com/skyalmanac/skyalmanac/internal/forecast"
	"github.com/skyalmanac/skyalmanac/internal/log"
	"github.com/skyalmanac/skyalmanac/pkg/config"
	"github.com/skyalmanac/skyalmanac/pkg/metrics"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to YAML configuration file")
	location := flag.String("location", "", "Train a single location; empty trains every configured location")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("almanac-train %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfgData, err := loadConfig(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector("skyalmanac")
	store := dataset.NewStore(cfgData.Engine.DataDir)
	cache := dataset.NewCache(store, log.GetSugaredLogger(), collector)
	controller := forecast.NewController(cache, cfgData.Engine.ModelDir, log.GetSugaredLogger(), collector,
		ensemble.TrainConfig{
			TestFraction: cfgData.Engine.TestFraction,
			ValFraction:  cfgData.Engine.ValFraction,
		})

	targets := resolveTargets(cfgData, *location)
	if len(targets) == 0 {
		log.Errorf("No locations to train. Configure locations or pass -location.")
		os.Exit(1)
	}

	failed := 0
	for _, loc := range targets {
		log.Infof("Training models for %s", loc)
		if err := controller.Train(loc); err != nil {
			log.Errorf("Training failed for %s: %v", loc, err)
			failed++
		}
	}
	if failed > 0 {
		log.Errorf("%d of %d training runs failed", failed, len(targets))
		os.Exit(1)
	}
}

func loadConfig(cfgFile string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)
	provider := config.NewYAMLProvider(filename)
	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}
	return cfgData, nil
}

func resolveTargets(cfgData *config.ConfigData, location string) []string {
	if location != "" {
		return []string{location}
	}
	targets := make([]string, 0, len(cfgData.Locations))
	for _, loc := range cfgData.Locations {
		targets = append(targets, loc.ID)
	}
	return targets
}
