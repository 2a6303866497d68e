package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/crime-weather-report/internal/adapter/site"
	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const crimeCSV = `category,date,lat,long
burglary,2024-01,52.63,-1.13
shoplifting,2024-01,52.63,-1.13
burglary,2024-02,52.63,-1.13
`

const weatherCSV = `Date,TemperatureCAvg,Precmm,WindkmhInt
2024-01-01,4,1.5,10
2024-01-02,6,,14
`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func writeMonthly(t *testing.T, dir string, recs []domain.MergedMonthlyRecord) string {
	t.Helper()
	data, err := json.Marshal(site.Monthly{RunID: "run-1", Monthly: recs})
	require.NoError(t, err)
	return write(t, dir, "monthly.json", string(data))
}

func f(v float64) *float64 { return &v }

func TestRun_Passes(t *testing.T) {
	dir := t.TempDir()
	monthly := writeMonthly(t, dir, []domain.MergedMonthlyRecord{
		{Month: "2024-01", CrimeCount: 2, AvgTemp: f(5), TotalRain: f(1.5), AvgWind: f(12)},
		{Month: "2024-02", CrimeCount: 1},
	})

	code := run(write(t, dir, "crime.csv", crimeCSV), write(t, dir, "weather.csv", weatherCSV), monthly)
	assert.Equal(t, 0, code)
}

func TestRun_Fails(t *testing.T) {
	tests := []struct {
		name string
		recs []domain.MergedMonthlyRecord
	}{
		{"wrong count", []domain.MergedMonthlyRecord{
			{Month: "2024-01", CrimeCount: 3, AvgTemp: f(5), TotalRain: f(1.5), AvgWind: f(12)},
			{Month: "2024-02", CrimeCount: 1},
		}},
		{"missing month", []domain.MergedMonthlyRecord{
			{Month: "2024-01", CrimeCount: 2, AvgTemp: f(5), TotalRain: f(1.5), AvgWind: f(12)},
		}},
		{"rain null not zero", []domain.MergedMonthlyRecord{
			{Month: "2024-01", CrimeCount: 2, AvgTemp: f(5), TotalRain: f(3), AvgWind: f(12)},
			{Month: "2024-02", CrimeCount: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			code := run(write(t, dir, "crime.csv", crimeCSV), write(t, dir, "weather.csv", weatherCSV), writeMonthly(t, dir, tt.recs))
			assert.Equal(t, 1, code)
		})
	}
}

func TestValidateJoinCompleteness_Order(t *testing.T) {
	p := validateJoinCompleteness([]domain.MergedMonthlyRecord{
		{Month: "2024-02", CrimeCount: 1},
		{Month: "2024-01", CrimeCount: 2},
	}, map[string]int{"2024-01": 2, "2024-02": 1})
	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "out of order")
}
