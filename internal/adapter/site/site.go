// Package site writes the report's landing page and the machine-readable
// monthly table.
package site

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/couchcryptid/crime-weather-report/internal/adapter/chart"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/interactive"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/workbook"
	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/couchcryptid/crime-weather-report/internal/report"
)

// Output file names.
const (
	IndexFile   = "index.html"
	MonthlyFile = "monthly.json"
)

//go:embed index.html.tmpl
var indexSource string

var index = template.Must(template.New(IndexFile).Funcs(template.FuncMap{
	"label":   report.Label,
	"percent": func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
	"coef": func(f float64) string {
		if math.IsNaN(f) {
			return "n/a"
		}
		return fmt.Sprintf("%.2f", f)
	},
	"opt": func(f *float64) string {
		if f == nil {
			return "–"
		}
		return fmt.Sprintf("%.2f", *f)
	},
}).Parse(indexSource))

// Monthly is the document written to monthly.json.
type Monthly struct {
	RunID       string                       `json:"run_id"`
	GeneratedAt time.Time                    `json:"generated_at"`
	Title       string                       `json:"title"`
	Monthly     []domain.MergedMonthlyRecord `json:"monthly"`
}

// Writer writes index.html and monthly.json.
// It implements pipeline.Renderer.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer for outputDir.
func NewWriter(outputDir string, logger *slog.Logger) *Writer {
	return &Writer{dir: outputDir, logger: logger}
}

type link struct {
	Name string
	Href string
}

type page struct {
	*report.Report
	Charts      []link
	Interactive []link
	Workbook    string
	MonthlyJSON string
	Generated   string
}

// Render writes both files and returns their paths.
func (w *Writer) Render(ctx context.Context, r *report.Report) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	monthlyPath := filepath.Join(w.dir, MonthlyFile)
	if err := writeMonthly(monthlyPath, r); err != nil {
		return nil, fmt.Errorf("write %s: %w", MonthlyFile, err)
	}

	indexPath := filepath.Join(w.dir, IndexFile)
	if err := writeIndex(indexPath, newPage(r)); err != nil {
		return []string{monthlyPath}, fmt.Errorf("write %s: %w", IndexFile, err)
	}

	w.logger.Debug("site written", "dir", w.dir)
	return []string{monthlyPath, indexPath}, nil
}

func newPage(r *report.Report) page {
	p := page{
		Report:      r,
		Workbook:    workbook.File,
		MonthlyJSON: MonthlyFile,
		Generated:   r.GeneratedAt.Format(time.RFC1123),
	}
	for _, name := range chart.Charts(r) {
		p.Charts = append(p.Charts, link{Name: name, Href: path.Join(chart.Dir, name)})
	}
	for _, name := range interactive.Pages() {
		p.Interactive = append(p.Interactive, link{Name: name, Href: path.Join(interactive.Dir, name)})
	}
	return p
}

func writeMonthly(p string, r *report.Report) error {
	data, err := json.MarshalIndent(Monthly{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		Title:       r.Title,
		Monthly:     r.Monthly,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, append(data, '\n'), 0o644)
}

func writeIndex(p string, pg page) error {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := index.Execute(f, pg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
