// Package report selects and reshapes the cleaned and aggregated tables into
// one data structure per view, and writes the narrative commentary. It does
// no rendering; the chart, interactive, workbook and site adapters draw from
// the Report it builds.
package report

import (
	"fmt"
	"time"

	"github.com/couchcryptid/crime-weather-report/internal/cleaning"
	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/couchcryptid/crime-weather-report/internal/quality"
	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
)

// CleaningLog records what the cleaner did to one dataset.
type CleaningLog struct {
	Dataset     string                `json:"dataset"`
	Dropped     []string              `json:"dropped"`
	Imputations []cleaning.Imputation `json:"imputations"`
}

// Input is everything Build needs. Crime and Weather are the cleaned tables
// with the month column added.
type Input struct {
	Title           string
	Crime           dataframe.DataFrame
	Weather         dataframe.DataFrame
	Monthly         []domain.MergedMonthlyRecord
	Quality         []quality.Report
	Cleaning        []CleaningLog
	SmoothingWindow int
	ClusterCell     float64
}

// Report holds the data behind every table, chart and paragraph.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Title       string    `json:"title"`

	Categories    Frequency  `json:"categories"`
	Outcomes      Frequency  `json:"outcomes"`
	LocationTypes *Frequency `json:"location_types,omitempty"`
	Contingency   Crosstab   `json:"contingency"`

	Temperature Distribution `json:"temperature"`
	Rainfall    PointCloud   `json:"rainfall"`

	TempVsCrime Scatter           `json:"temp_vs_crime"`
	Pairs       PairGrid          `json:"pairs"`
	Correlation CorrelationMatrix `json:"correlation"`
	Series      TimeSeries        `json:"series"`
	Map         MapView           `json:"map"`

	Monthly    []domain.MergedMonthlyRecord `json:"monthly"`
	Quality    []quality.Report             `json:"quality"`
	Cleaning   []CleaningLog                `json:"cleaning"`
	Commentary []string                     `json:"commentary"`
}

// Build computes every view. Empty inputs fail with ErrEmptyAggregate and
// missing columns with ErrSchemaMismatch; no view is ever left empty.
func Build(in Input) (*Report, error) {
	if in.Crime.Nrow() == 0 {
		return nil, fmt.Errorf("%w: no crime rows to report", domain.ErrEmptyAggregate)
	}
	if in.Weather.Nrow() == 0 {
		return nil, fmt.Errorf("%w: no weather rows to report", domain.ErrEmptyAggregate)
	}
	if len(in.Monthly) == 0 {
		return nil, fmt.Errorf("%w: no monthly rows to report", domain.ErrEmptyAggregate)
	}
	window := in.SmoothingWindow
	if window < 1 {
		window = 1
	}

	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: domain.Now(),
		Title:       in.Title,
		Monthly:     in.Monthly,
		Quality:     in.Quality,
		Cleaning:    in.Cleaning,
	}

	var err error
	if r.Categories, err = frequency(in.Crime, domain.ColCategory); err != nil {
		return nil, fmt.Errorf("category view: %w", err)
	}
	if r.Outcomes, err = frequency(in.Crime, domain.ColOutcomeStatus); err != nil {
		return nil, fmt.Errorf("outcome view: %w", err)
	}
	if domain.HasColumn(in.Crime, domain.ColLocationType) {
		lt, err := frequency(in.Crime, domain.ColLocationType)
		if err != nil {
			return nil, fmt.Errorf("location type view: %w", err)
		}
		r.LocationTypes = &lt
	}
	if r.Contingency, err = crosstab(in.Crime, domain.ColCategory, domain.ColOutcomeStatus); err != nil {
		return nil, fmt.Errorf("contingency view: %w", err)
	}
	if r.Temperature, err = distribution(in.Weather, domain.ColTemperatureCAvg); err != nil {
		return nil, fmt.Errorf("temperature view: %w", err)
	}
	if r.Rainfall, err = pointCloud(in.Weather, domain.ColPrecmm); err != nil {
		return nil, fmt.Errorf("rainfall view: %w", err)
	}
	if r.TempVsCrime, err = scatter(in.Monthly, domain.ColAvgTemp, domain.ColCrimeCount); err != nil {
		return nil, fmt.Errorf("temperature scatter view: %w", err)
	}
	r.Pairs = pairGrid(in.Monthly, domain.MonthlyColumns)
	r.Correlation = correlationMatrix(in.Monthly, domain.MonthlyColumns)
	r.Series = timeSeries(in.Monthly, window)
	if r.Map, err = mapView(in.Crime, in.ClusterCell); err != nil {
		return nil, fmt.Errorf("map view: %w", err)
	}

	r.Commentary = commentary(r)
	return r, nil
}
