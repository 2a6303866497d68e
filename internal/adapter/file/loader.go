package file

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/crime-weather-report/internal/config"
	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var crimeTypes = map[string]series.Type{
	domain.ColDate:            series.String,
	domain.ColCategory:        series.String,
	domain.ColOutcomeStatus:   series.String,
	domain.ColContext:         series.String,
	domain.ColLocationSubtype: series.String,
	domain.ColPersistentID:    series.String,
	domain.ColLocationType:    series.String,
	domain.ColStreetName:      series.String,
	domain.ColLat:             series.Float,
	domain.ColLong:            series.Float,
}

var weatherTypes = map[string]series.Type{
	domain.ColWeatherDate:     series.String,
	domain.ColTemperatureCAvg: series.Float,
	domain.ColPrecmm:          series.Float,
	domain.ColWindkmhInt:      series.Float,
	domain.ColLowClOct:        series.Float,
	domain.ColPreselevHp:      series.Float,
	domain.ColSnowDepcm:       series.Float,
	"TemperatureCMax":         series.Float,
	"TemperatureCMin":         series.Float,
	"HrAvg":                   series.Float,
	"WindkmhGust":             series.Float,
}

// Loader reads the crime and weather extracts from disk.
// It implements pipeline.Extractor.
type Loader struct {
	crimePath   string
	weatherPath string
	logger      *slog.Logger
}

// NewLoader creates a Loader for the configured input paths.
func NewLoader(cfg *config.Config, logger *slog.Logger) *Loader {
	return &Loader{
		crimePath:   cfg.CrimeDataPath,
		weatherPath: cfg.WeatherDataPath,
		logger:      logger,
	}
}

// Extract loads both datasets, checks their required columns and renames the
// weather date column so both tables share the date key.
func (l *Loader) Extract(ctx context.Context) (domain.Datasets, error) {
	if err := ctx.Err(); err != nil {
		return domain.Datasets{}, err
	}
	crime, err := load(l.crimePath, crimeTypes, domain.RequiredCrimeColumns)
	if err != nil {
		return domain.Datasets{}, fmt.Errorf("load %s: %w", domain.DatasetCrime, err)
	}
	l.logger.Info("dataset loaded", "dataset", domain.DatasetCrime, "path", l.crimePath, "rows", crime.Nrow(), "columns", crime.Ncol())

	if err := ctx.Err(); err != nil {
		return domain.Datasets{}, err
	}
	weather, err := load(l.weatherPath, weatherTypes, domain.RequiredWeatherColumns)
	if err != nil {
		return domain.Datasets{}, fmt.Errorf("load %s: %w", domain.DatasetWeather, err)
	}
	if domain.HasColumn(weather, domain.ColDate) {
		return domain.Datasets{}, fmt.Errorf("load %s: %w: %s has both %q and %q columns",
			domain.DatasetWeather, domain.ErrSchemaMismatch, l.weatherPath, domain.ColWeatherDate, domain.ColDate)
	}
	weather = weather.Rename(domain.ColDate, domain.ColWeatherDate)
	if weather.Err != nil {
		return domain.Datasets{}, fmt.Errorf("load %s: rename date column: %w", domain.DatasetWeather, weather.Err)
	}
	l.logger.Info("dataset loaded", "dataset", domain.DatasetWeather, "path", l.weatherPath, "rows", weather.Nrow(), "columns", weather.Ncol())

	return domain.Datasets{Crime: crime, Weather: weather}, nil
}

func load(path string, types map[string]series.Type, required []string) (dataframe.DataFrame, error) {
	df, err := ReadTable(path, types)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	for _, col := range required {
		if !domain.HasColumn(df, col) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s is missing column %q", domain.ErrSchemaMismatch, path, col)
		}
	}
	return df, nil
}
