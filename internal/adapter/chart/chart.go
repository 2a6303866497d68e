// Package chart renders the static report charts as PNG files with gonum/plot.
package chart

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/crime-weather-report/internal/report"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Dir is the subdirectory of the output directory the charts are written to.
const Dir = "charts"

const (
	width  = 16 * vg.Centimeter
	height = 10 * vg.Centimeter
)

// Renderer writes every static chart of a report as PNG.
type Renderer struct {
	dir    string
	logger *slog.Logger
}

// NewRenderer creates a Renderer writing under outputDir/charts.
func NewRenderer(outputDir string, logger *slog.Logger) *Renderer {
	return &Renderer{dir: filepath.Join(outputDir, Dir), logger: logger}
}

type chartDef struct {
	name  string
	build func(*report.Report) (*plot.Plot, error)
}

// Charts lists the chart files in render order, without the directory.
func Charts(r *report.Report) []string {
	var names []string
	for _, s := range chartDefs(r) {
		names = append(names, s.name)
	}
	return append(names, pairsFile)
}

func chartDefs(r *report.Report) []chartDef {
	out := []chartDef{
		{"categories_bar.png", categoriesBar},
		{"outcomes_pie.png", outcomesPie},
	}
	if r.LocationTypes != nil {
		out = append(out, chartDef{"location_types_dot.png", locationTypesDot})
	}
	return append(out,
		chartDef{"temperature_hist.png", temperatureHist},
		chartDef{"temperature_density.png", temperatureDensity},
		chartDef{"temperature_box.png", temperatureBox},
		chartDef{"temperature_violin.png", temperatureViolin},
		chartDef{"rainfall_cloud.png", rainfallCloud},
		chartDef{"temp_vs_crime.png", tempVsCrime},
		chartDef{"correlation.png", correlationHeatMap},
		chartDef{"crime_series.png", crimeSeries},
	)
}

// Render draws each chart and returns the written paths.
func (w *Renderer) Render(ctx context.Context, r *report.Report) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	var paths []string
	for _, s := range chartDefs(r) {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		p, err := s.build(r)
		if err != nil {
			return paths, fmt.Errorf("build %s: %w", s.name, err)
		}
		path := filepath.Join(w.dir, s.name)
		if err := p.Save(width, height, path); err != nil {
			return paths, fmt.Errorf("save %s: %w", s.name, err)
		}
		paths = append(paths, path)
		w.logger.Debug("chart rendered", "file", path)
	}

	path := filepath.Join(w.dir, pairsFile)
	if err := savePairGrid(r.Pairs, path); err != nil {
		return paths, fmt.Errorf("save %s: %w", pairsFile, err)
	}
	paths = append(paths, path)
	w.logger.Debug("chart rendered", "file", path)

	return paths, nil
}
