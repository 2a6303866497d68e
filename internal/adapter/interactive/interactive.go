// Package interactive renders the interactive report pages with go-echarts:
// the trend scatter, the smoothed time series and the incident map.
package interactive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/crime-weather-report/internal/report"
	"github.com/go-echarts/go-echarts/v2/render"
)

// Dir is the subdirectory of the output directory the pages are written to.
const Dir = "interactive"

// Page file names.
const (
	ScatterFile = "scatter_trend.html"
	SeriesFile  = "time_series.html"
	MapFile     = "map.html"
)

// Renderer writes the interactive pages of a report.
type Renderer struct {
	dir    string
	logger *slog.Logger
}

// NewRenderer creates a Renderer writing under outputDir/interactive.
func NewRenderer(outputDir string, logger *slog.Logger) *Renderer {
	return &Renderer{dir: filepath.Join(outputDir, Dir), logger: logger}
}

// Pages lists the page files in render order.
func Pages() []string { return []string{ScatterFile, SeriesFile, MapFile} }

// Render writes every page and returns the written paths.
func (w *Renderer) Render(ctx context.Context, r *report.Report) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create interactive dir: %w", err)
	}

	pages := []struct {
		name  string
		chart render.Renderer
	}{
		{ScatterFile, scatterTrend(r.TempVsCrime)},
		{SeriesFile, timeSeries(r.Series)},
		{MapFile, incidentMap(r.Map)},
	}

	var paths []string
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path := filepath.Join(w.dir, p.name)
		if err := save(p.chart, path); err != nil {
			return paths, fmt.Errorf("save %s: %w", p.name, err)
		}
		paths = append(paths, path)
		w.logger.Debug("interactive page rendered", "file", path)
	}
	return paths, nil
}

func save(chart render.Renderer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
