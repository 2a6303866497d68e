package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/crime-weather-report/internal/adapter/file"
	"github.com/couchcryptid/crime-weather-report/internal/cleaning"
	"github.com/couchcryptid/crime-weather-report/internal/config"
	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/couchcryptid/crime-weather-report/internal/observability"
	"github.com/couchcryptid/crime-weather-report/internal/pipeline"
	"github.com/couchcryptid/crime-weather-report/internal/report"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const crimeCSV = `category,persistent_id,date,lat,long,street_id,street_name,context,id,location_type,location_subtype,outcome_status
violent-crime,,2024-01,52.6311,-1.1321,1,On or near Mill Lane,,1001,Force,,Under investigation
shoplifting,abc123,2024-01,52.6350,-1.1390,2,On or near High Street,,1002,Force,,
burglary,def456,2024-02,52.6301,-1.1302,3,On or near Park Road,,1003,Force,,Unable to prosecute suspect
violent-crime,,2024-03,52.6312,-1.1322,1,On or near Mill Lane,,1004,BTP,,Under investigation
burglary,,2024-03,52.6313,-1.1323,1,On or near Mill Lane,,1005,Force,,Unable to prosecute suspect
`

const weatherCSV = `Date,TemperatureCAvg,TemperatureCMax,TemperatureCMin,Precmm,WindkmhInt,lowClOct,PreselevHp,SnowDepcm
2024-01-01,5.2,7.1,3.0,1.2,14,5,,
2024-01-02,4.8,6.0,2.9,,12,,,
2024-02-01,6.5,8.8,4.1,0.0,20,7,1012.3,
`

// --- mocks ---

type mockExtractor struct {
	err error
}

func (m *mockExtractor) Extract(context.Context) (domain.Datasets, error) {
	return domain.Datasets{}, m.err
}

type mockRenderer struct {
	paths []string
	err   error
	calls int
}

func (m *mockRenderer) Render(_ context.Context, _ *report.Report) ([]string, error) {
	m.calls++
	return m.paths, m.err
}

type mockPublisher struct {
	runID   string
	records []domain.MergedMonthlyRecord
	err     error
}

func (m *mockPublisher) Publish(_ context.Context, runID string, _ time.Time, records []domain.MergedMonthlyRecord) error {
	m.runID = runID
	m.records = records
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLoader(t *testing.T) *file.Loader {
	t.Helper()
	dir := t.TempDir()
	crime := filepath.Join(dir, "crime.csv")
	weather := filepath.Join(dir, "weather.csv")
	require.NoError(t, os.WriteFile(crime, []byte(crimeCSV), 0o600))
	require.NoError(t, os.WriteFile(weather, []byte(weatherCSV), 0o600))
	return file.NewLoader(&config.Config{CrimeDataPath: crime, WeatherDataPath: weather}, discardLogger())
}

func defaultOptions(t *testing.T) pipeline.Options {
	t.Helper()
	policy, err := cleaning.DefaultPolicy()
	require.NoError(t, err)
	return pipeline.Options{Policy: policy, Title: "Test", SmoothingWindow: 3, ClusterCell: 0.01}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	rend := &mockRenderer{paths: []string{"out/charts/a.png", "out/charts/b.png", "out/index.html"}}
	pub := &mockPublisher{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(newLoader(t), []pipeline.Renderer{rend}, pub, defaultOptions(t), discardLogger(), metrics)
	require.Error(t, p.CheckReadiness(context.Background()), "not ready before the first run")

	r, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.CheckReadiness(context.Background()))

	assert.Equal(t, 1, rend.calls)
	assert.Equal(t, r.RunID, pub.runID)

	jan, feb := 5.0, 6.5
	janRain, febRain := 1.2, 0.0
	janWind, febWind := 13.0, 20.0
	want := []domain.MergedMonthlyRecord{
		{Month: "2024-01", CrimeCount: 2, AvgTemp: &jan, TotalRain: &janRain, AvgWind: &janWind},
		{Month: "2024-02", CrimeCount: 1, AvgTemp: &feb, TotalRain: &febRain, AvgWind: &febWind},
		{Month: "2024-03", CrimeCount: 2},
	}
	if diff := cmp.Diff(want, pub.records, approxFloats()); diff != "" {
		t.Errorf("published records mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 5, testutil.ToFloat64(metrics.RowsLoaded.WithLabelValues(domain.DatasetCrime)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MissingValues.WithLabelValues(domain.DatasetCrime, domain.ColOutcomeStatus)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CellsImputed.WithLabelValues(domain.DatasetCrime, domain.ColOutcomeStatus, string(cleaning.ActionFillSentinel))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CellsImputed.WithLabelValues(domain.DatasetWeather, domain.ColPrecmm, string(cleaning.ActionFillConstant))), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.ColumnsDropped.WithLabelValues(domain.DatasetCrime)), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.MonthsAggregated), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.ArtifactsRendered.WithLabelValues("png")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ArtifactsRendered.WithLabelValues("html")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.RecordsPublished), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.LastRunSuccess), 0)
	assert.Equal(t, 7, testutil.CollectAndCount(metrics.StageDuration))

	require.Len(t, r.Cleaning, 2)
	assert.Equal(t, []string{domain.ColPersistentID, domain.ColContext, domain.ColLocationSubtype}, r.Cleaning[0].Dropped, "in column order")
	assert.Contains(t, r.Commentary[5], "2024-03")
}

func TestPipeline_Run_WithoutPublisher(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(newLoader(t), nil, nil, defaultOptions(t), discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.RecordsPublished), 0)
	assert.Equal(t, 6, testutil.CollectAndCount(metrics.StageDuration))
}

func TestPipeline_Run_Failures(t *testing.T) {
	gap := func(t *testing.T) pipeline.Options {
		opts := defaultOptions(t)
		opts.Policy.Crime = opts.Policy.Crime[:len(opts.Policy.Crime)-1]
		return opts
	}
	renderErr := errors.New("disk full")
	publishErr := errors.New("broker down")

	tests := []struct {
		name      string
		extractor pipeline.Extractor
		opts      func(*testing.T) pipeline.Options
		renderer  *mockRenderer
		publisher *mockPublisher
		wantErr   error
		wantMsg   string
	}{
		{
			name:      "extract fails",
			extractor: &mockExtractor{err: domain.ErrSourceNotFound},
			opts:      defaultOptions,
			renderer:  &mockRenderer{},
			publisher: &mockPublisher{},
			wantErr:   domain.ErrSourceNotFound,
			wantMsg:   "extract",
		},
		{
			name:      "policy gap",
			opts:      gap,
			renderer:  &mockRenderer{},
			publisher: &mockPublisher{},
			wantErr:   domain.ErrCleaningIncomplete,
			wantMsg:   "clean",
		},
		{
			name:      "render fails",
			opts:      defaultOptions,
			renderer:  &mockRenderer{err: renderErr},
			publisher: &mockPublisher{},
			wantErr:   renderErr,
			wantMsg:   "render",
		},
		{
			name:      "publish fails",
			opts:      defaultOptions,
			renderer:  &mockRenderer{},
			publisher: &mockPublisher{err: publishErr},
			wantErr:   publishErr,
			wantMsg:   "publish",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := tt.extractor
			if ext == nil {
				ext = newLoader(t)
			}
			metrics := observability.NewMetricsForTesting()
			p := pipeline.New(ext, []pipeline.Renderer{tt.renderer}, tt.publisher, tt.opts(t), discardLogger(), metrics)

			r, err := p.Run(context.Background())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Nil(t, r)
			require.Error(t, p.CheckReadiness(context.Background()))
			assert.InDelta(t, 0, testutil.ToFloat64(metrics.LastRunSuccess), 0)
		})
	}
}

func approxFloats() cmp.Option {
	return cmp.Comparer(func(a, b float64) bool {
		d := a - b
		return d < 1e-9 && d > -1e-9
	})
}
