// Package reporttest builds a small, fully populated report for adapter tests.
package reporttest

import (
	"testing"

	"github.com/couchcryptid/crime-weather-report/internal/aggregate"
	"github.com/couchcryptid/crime-weather-report/internal/cleaning"
	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/couchcryptid/crime-weather-report/internal/quality"
	"github.com/couchcryptid/crime-weather-report/internal/report"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Crime returns twelve cleaned incidents over 2024-01 to 2024-03 (3, 4 and 5
// per month): 5 violent-crime, 4 shoplifting, 2 burglary and 1
// anti-social-behaviour.
func Crime() dataframe.DataFrame {
	rows := []struct {
		date, category, outcome, locType string
		lat, long                        float64
	}{
		{"2024-01", "violent-crime", "Unknown", "Force", 52.6301, -1.1301},
		{"2024-01", "shoplifting", "Under investigation", "Force", 52.6302, -1.1302},
		{"2024-01", "violent-crime", "Unknown", "Force", 52.6411, -1.1411},
		{"2024-02", "burglary", "Investigation complete", "Force", 52.6303, -1.1303},
		{"2024-02", "violent-crime", "Under investigation", "BTP", 52.6412, -1.1412},
		{"2024-02", "shoplifting", "Unknown", "Force", 52.6304, -1.1304},
		{"2024-02", "violent-crime", "Under investigation", "Force", 52.6521, -1.1521},
		{"2024-03", "burglary", "Unknown", "Force", 52.6305, -1.1305},
		{"2024-03", "shoplifting", "Investigation complete", "Force", 52.6413, -1.1413},
		{"2024-03", "shoplifting", "Under investigation", "Force", 52.6306, -1.1306},
		{"2024-03", "violent-crime", "Unknown", "BTP", 52.6307, -1.1307},
		{"2024-03", "anti-social-behaviour", "Unknown", "Force", 52.6522, -1.1522},
	}
	n := len(rows)
	dates, cats, outcomes, locs := make([]string, n), make([]string, n), make([]string, n), make([]string, n)
	lats, longs := make([]float64, n), make([]float64, n)
	for i, r := range rows {
		dates[i], cats[i], outcomes[i], locs[i] = r.date, r.category, r.outcome, r.locType
		lats[i], longs[i] = r.lat, r.long
	}
	return dataframe.New(
		series.New(dates, series.String, domain.ColDate),
		series.New(cats, series.String, domain.ColCategory),
		series.New(outcomes, series.String, domain.ColOutcomeStatus),
		series.New(lats, series.Float, domain.ColLat),
		series.New(longs, series.Float, domain.ColLong),
		series.New(locs, series.String, domain.ColLocationType),
	)
}

// Weather returns cleaned daily weather whose monthly mean temperatures are
// 3, 6 and 10 for 2024-01 to 2024-03.
func Weather() dataframe.DataFrame {
	dates := []string{"2024-01-01", "2024-01-02", "2024-02-01", "2024-02-02", "2024-03-01", "2024-03-02", "2024-03-03"}
	temp := []float64{2, 4, 5, 7, 8, 10, 12}
	rain := []float64{1.5, 0, 3.2, 0.8, 0, 0, 2.4}
	wind := []float64{20, 18, 15, 17, 9, 11, 13}
	lowCl := []float64{6, 5, 7, 5, 3, 4, 2}
	return dataframe.New(
		series.New(dates, series.String, domain.ColDate),
		series.New(temp, series.Float, domain.ColTemperatureCAvg),
		series.New(rain, series.Float, domain.ColPrecmm),
		series.New(wind, series.Float, domain.ColWindkmhInt),
		series.New(lowCl, series.Float, domain.ColLowClOct),
	)
}

// Input aggregates the fixture tables into a report input.
func Input(tb testing.TB) report.Input {
	tb.Helper()
	agg, err := aggregate.Run(Crime(), Weather())
	if err != nil {
		tb.Fatalf("aggregate fixture: %v", err)
	}
	return report.Input{
		Title:   "Fixture",
		Crime:   agg.Crime,
		Weather: agg.Weather,
		Monthly: agg.Merged,
		Quality: []quality.Report{
			quality.Inspect(domain.DatasetCrime, agg.Crime),
			quality.Inspect(domain.DatasetWeather, agg.Weather),
		},
		Cleaning: []report.CleaningLog{
			{
				Dataset:     domain.DatasetCrime,
				Dropped:     []string{domain.ColContext, domain.ColLocationSubtype, domain.ColPersistentID},
				Imputations: []cleaning.Imputation{{Column: domain.ColOutcomeStatus, Action: cleaning.ActionFillSentinel, Count: 6, Value: domain.UnknownOutcome}},
			},
		},
		SmoothingWindow: 3,
		ClusterCell:     0.01,
	}
}

// Sample builds the fixture report.
func Sample(tb testing.TB) *report.Report {
	tb.Helper()
	r, err := report.Build(Input(tb))
	if err != nil {
		tb.Fatalf("build fixture report: %v", err)
	}
	return r
}
