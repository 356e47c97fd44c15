package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/skyalmanac/skyalmanac/internal/climatology"
	"github.com/skyalmanac/skyalmanac/internal/dataset"
	"github.com/skyalmanac/skyalmanac/internal/ensemble"
	"github.com/skyalmanac/skyalmanac/internal/forecast"
	"github.com/skyalmanac/skyalmanac/internal/log"
	"github.com/skyalmanac/skyalmanac/pkg/config"
	"github.com/skyalmanac/skyalmanac/pkg/metrics"
	"github.com/skyalmanac/skyalmanac/pkg/responseformat"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to YAML configuration file")
	location := flag.String("location", "", "Location identifier to query (required)")
	date := flag.String("date", "", "Historical-pattern query for a calendar day, MM-DD")
	month := flag.Int("month", 0, "Monthly climate summary for a month, 1-12")
	window := flag.Int("window", climatology.DefaultWindowDays, "Day-of-month window for -date matching, 0-14")
	predictDate := flag.String("predict-date", "", "Run the trained ensemble for a date, YYYY-MM-DD")
	nextDays := flag.Int("next-days", 0, "Iterative ensemble forecast for the N days after the record ends")
	format := flag.String("format", "json", "Output format: json or msgpack")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("almanac %s\n", version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *location == "" {
		log.Errorf("The -location flag is required")
		os.Exit(1)
	}

	outFormat, err := responseformat.ParseFormat(*format)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	cfgData, err := loadConfig(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector("skyalmanac")
	store := dataset.NewStore(cfgData.Engine.DataDir)
	cache := dataset.NewCache(store, log.GetSugaredLogger(), collector)

	result, err := runQuery(cache, cfgData, collector, *location, *date, *month, *window, *predictDate, *nextDays)
	if err != nil {
		log.Errorf("Query failed: %v", err)
		os.Exit(1)
	}

	if err := responseformat.NewFormatter().Write(os.Stdout, outFormat, result); err != nil {
		log.Errorf("Failed to encode result: %v", err)
		os.Exit(1)
	}
}

func runQuery(cache *dataset.Cache, cfgData *config.ConfigData, collector *metrics.Collector,
	location, date string, month, window int, predictDate string, nextDays int) (any, error) {

	switch {
	case date != "":
		table, err := cache.GetOrLoad(location)
		if err != nil {
			return nil, err
		}
		m, d, err := parseMonthDay(date)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		predictor := climatology.NewPredictor(table, clockwork.NewRealClock())
		stats, err := predictor.PredictForDate(m, d, window)
		collector.QueryDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			collector.DateQueriesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		collector.DateQueriesTotal.WithLabelValues("ok").Inc()
		return stats, nil

	case month != 0:
		table, err := cache.GetOrLoad(location)
		if err != nil {
			return nil, err
		}
		collector.MonthlyQueriesTotal.Inc()
		predictor := climatology.NewPredictor(table, clockwork.NewRealClock())
		return predictor.MonthlyStatistics(month)

	case predictDate != "":
		target, err := time.Parse("2006-01-02", predictDate)
		if err != nil {
			return nil, fmt.Errorf("invalid -predict-date %q: %w", predictDate, err)
		}
		controller := newForecastController(cache, cfgData, collector)
		return controller.PredictDate(target, location)

	case nextDays > 0:
		controller := newForecastController(cache, cfgData, collector)
		return controller.PredictNextDays(nextDays, location)

	default:
		return nil, fmt.Errorf("nothing to do: pass one of -date, -month, -predict-date, or -next-days")
	}
}

func newForecastController(cache *dataset.Cache, cfgData *config.ConfigData, collector *metrics.Collector) *forecast.Controller {
	return forecast.NewController(cache, cfgData.Engine.ModelDir, log.GetSugaredLogger(), collector,
		ensemble.TrainConfig{
			TestFraction: cfgData.Engine.TestFraction,
			ValFraction:  cfgData.Engine.ValFraction,
		})
}

func parseMonthDay(s string) (int, int, error) {
	var m, d int
	if _, err := fmt.Sscanf(s, "%d-%d", &m, &d); err != nil {
		return 0, 0, fmt.Errorf("invalid -date %q, want MM-DD: %w", s, err)
	}
	return m, d, nil
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
