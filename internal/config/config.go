package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all report settings, populated from environment variables.
type Config struct {
	CrimeDataPath      string
	WeatherDataPath    string
	OutputDir          string
	CleaningPolicyPath string
	ReportTitle        string

	// View tuning.
	SmoothingWindow int
	MapClusterCell  float64

	LogLevel        string
	LogFormat       string
	ServeReport     bool
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Optional monthly-summary publishing.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool

	PushgatewayURL string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	window, err := parseSmoothingWindow()
	if err != nil {
		return nil, err
	}

	cell, err := parseClusterCell()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		CrimeDataPath:      sharedcfg.EnvOrDefault("CRIME_DATA_PATH", "data/crime.csv"),
		WeatherDataPath:    sharedcfg.EnvOrDefault("WEATHER_DATA_PATH", "data/weather.csv"),
		OutputDir:          sharedcfg.EnvOrDefault("OUTPUT_DIR", "report"),
		CleaningPolicyPath: os.Getenv("CLEANING_POLICY_PATH"),
		ReportTitle:        sharedcfg.EnvOrDefault("REPORT_TITLE", "Crime and Weather"),
		SmoothingWindow:    window,
		MapClusterCell:     cell,
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ServeReport:        os.Getenv("SERVE_REPORT") == "true",
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout:    shutdownTimeout,
		KafkaBrokers:       brokers,
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "crime-weather-monthly"),
		KafkaEnabled:       len(brokers) > 0,
		PushgatewayURL:     os.Getenv("PUSHGATEWAY_URL"),
	}

	if cfg.CrimeDataPath == "" {
		return nil, errors.New("CRIME_DATA_PATH is required")
	}
	if cfg.WeatherDataPath == "" {
		return nil, errors.New("WEATHER_DATA_PATH is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// parseSmoothingWindow reads the centred moving-average width, which must be odd.
func parseSmoothingWindow() (int, error) {
	s := sharedcfg.EnvOrDefault("SMOOTHING_WINDOW", "3")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n%2 == 0 {
		return 0, errors.New("invalid SMOOTHING_WINDOW: must be an odd integer >= 1")
	}
	return n, nil
}

// parseClusterCell reads the map clustering grid size in degrees; 0 disables clustering.
func parseClusterCell() (float64, error) {
	s := sharedcfg.EnvOrDefault("MAP_CLUSTER_CELL", "0.01")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, errors.New("invalid MAP_CLUSTER_CELL: must be a number >= 0")
	}
	return v, nil
}
