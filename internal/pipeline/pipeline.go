package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/crime-weather-report/internal/aggregate"
	"github.com/couchcryptid/crime-weather-report/internal/cleaning"
	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/couchcryptid/crime-weather-report/internal/observability"
	"github.com/couchcryptid/crime-weather-report/internal/quality"
	"github.com/couchcryptid/crime-weather-report/internal/report"
	"github.com/go-gota/gota/dataframe"
)

// Stage names used as the stage label of the duration histogram.
const (
	StageExtract   = "extract"
	StageInspect   = "inspect"
	StageClean     = "clean"
	StageAggregate = "aggregate"
	StageReport    = "report"
	StageRender    = "render"
	StagePublish   = "publish"
)

// Extractor reads the raw crime and weather tables.
type Extractor interface {
	Extract(ctx context.Context) (domain.Datasets, error)
}

// Renderer writes one family of report artifacts and returns their paths.
type Renderer interface {
	Render(ctx context.Context, r *report.Report) ([]string, error)
}

// Publisher ships the merged monthly table downstream.
type Publisher interface {
	Publish(ctx context.Context, runID string, generatedAt time.Time, records []domain.MergedMonthlyRecord) error
}

// Options are the report settings that do not come from an adapter.
type Options struct {
	Policy          cleaning.Policy
	Title           string
	SmoothingWindow int
	ClusterCell     float64
}

// Pipeline runs one report: extract, inspect, clean, aggregate, build,
// render and optionally publish.
type Pipeline struct {
	extractor Extractor
	renderers []Renderer
	publisher Publisher
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline. publisher may be nil to skip publishing.
func New(e Extractor, renderers []Renderer, publisher Publisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		renderers: renderers,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a report has been rendered.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no report has been rendered yet")
	}
	return nil
}

// Run produces one report. Any stage failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*report.Report, error) {
	p.logger.Info("report run started", "title", p.opts.Title)
	p.metrics.LastRunSuccess.Set(0)

	r, err := p.run(ctx)
	if err != nil {
		return nil, err
	}

	p.metrics.LastRunSuccess.Set(1)
	p.ready.Store(true)
	p.logger.Info("report run finished", "run_id", r.RunID, "months", len(r.Monthly))
	return r, nil
}

func (p *Pipeline) run(ctx context.Context) (*report.Report, error) {
	start := time.Now()
	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	p.metrics.RowsLoaded.WithLabelValues(domain.DatasetCrime).Add(float64(raw.Crime.Nrow()))
	p.metrics.RowsLoaded.WithLabelValues(domain.DatasetWeather).Add(float64(raw.Weather.Nrow()))
	p.observe(StageExtract, start)

	start = time.Now()
	reports := []quality.Report{
		quality.Inspect(domain.DatasetCrime, raw.Crime),
		quality.Inspect(domain.DatasetWeather, raw.Weather),
	}
	for _, q := range reports {
		for col, n := range q.Missing {
			p.metrics.MissingValues.WithLabelValues(q.Dataset, col).Set(float64(n))
		}
		p.logger.Info("dataset inspected", "dataset", q.Dataset, "rows", q.Rows, "missing", q.TotalMissing())
		p.logger.Debug("quality summary", "dataset", q.Dataset, "summary", q.Text())
	}
	p.observe(StageInspect, start)

	start = time.Now()
	crime, crimeLog, err := p.clean(domain.DatasetCrime, raw.Crime)
	if err != nil {
		return nil, err
	}
	weather, weatherLog, err := p.clean(domain.DatasetWeather, raw.Weather)
	if err != nil {
		return nil, err
	}
	p.observe(StageClean, start)

	start = time.Now()
	agg, err := aggregate.Run(crime, weather)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	p.metrics.MonthsAggregated.Set(float64(len(agg.Merged)))
	p.observe(StageAggregate, start)

	start = time.Now()
	r, err := report.Build(report.Input{
		Title:           p.opts.Title,
		Crime:           agg.Crime,
		Weather:         agg.Weather,
		Monthly:         agg.Merged,
		Quality:         reports,
		Cleaning:        []report.CleaningLog{crimeLog, weatherLog},
		SmoothingWindow: p.opts.SmoothingWindow,
		ClusterCell:     p.opts.ClusterCell,
	})
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	p.observe(StageReport, start)

	start = time.Now()
	for _, rend := range p.renderers {
		paths, err := rend.Render(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		for _, path := range paths {
			p.metrics.ArtifactsRendered.WithLabelValues(artifactKind(path)).Inc()
		}
		p.logger.Info("artifacts rendered", "count", len(paths))
	}
	p.observe(StageRender, start)

	if p.publisher != nil {
		start = time.Now()
		if err := p.publisher.Publish(ctx, r.RunID, r.GeneratedAt, r.Monthly); err != nil {
			return nil, fmt.Errorf("publish: %w", err)
		}
		p.metrics.RecordsPublished.Add(float64(len(r.Monthly)))
		p.observe(StagePublish, start)
	}
	return r, nil
}

// clean applies the dataset's policy rules and records what they changed.
func (p *Pipeline) clean(dataset string, df dataframe.DataFrame) (dataframe.DataFrame, report.CleaningLog, error) {
	rules, err := p.opts.Policy.Rules(dataset)
	if err != nil {
		return dataframe.DataFrame{}, report.CleaningLog{}, fmt.Errorf("clean: %w", err)
	}
	res, err := cleaning.Clean(dataset, df, rules)
	if err != nil {
		return dataframe.DataFrame{}, report.CleaningLog{}, fmt.Errorf("clean: %w", err)
	}
	for _, imp := range res.Imputations {
		p.metrics.CellsImputed.WithLabelValues(dataset, imp.Column, string(imp.Action)).Add(float64(imp.Count))
	}
	p.metrics.ColumnsDropped.WithLabelValues(dataset).Add(float64(len(res.Dropped)))
	p.logger.Info("dataset cleaned",
		"dataset", dataset,
		"dropped", len(res.Dropped),
		"imputed_columns", len(res.Imputations),
	)
	return res.Frame, report.CleaningLog{Dataset: dataset, Dropped: res.Dropped, Imputations: res.Imputations}, nil
}

func (p *Pipeline) observe(stage string, start time.Time) {
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// artifactKind labels an output file by its extension.
func artifactKind(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "other"
	}
	return strings.ToLower(ext)
}
