// Package workbook writes the report tables to an Excel workbook.
package workbook

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/couchcryptid/crime-weather-report/internal/report"
	"github.com/xuri/excelize/v2"
)

// File is the workbook name inside the output directory.
const File = "tables.xlsx"

// Sheet names, in workbook order.
const (
	SheetFrequency   = "Frequency"
	SheetContingency = "Contingency"
	SheetMonthly     = "Monthly"
	SheetCorrelation = "Correlation"
	SheetQuality     = "Quality"
	SheetCleaning    = "Cleaning"
)

type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer for outputDir/tables.xlsx.
func NewWriter(outputDir string, logger *slog.Logger) *Writer {
	return &Writer{path: filepath.Join(outputDir, File), logger: logger}
}

// Render builds every sheet and saves the workbook.
func (w *Writer) Render(ctx context.Context, r *report.Report) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetFrequency, frequencyRows(r)},
		{SheetContingency, contingencyRows(r.Contingency)},
		{SheetMonthly, monthlyRows(r.Monthly)},
		{SheetCorrelation, correlationRows(r.Correlation)},
		{SheetQuality, qualityRows(r)},
		{SheetCleaning, cleaningRows(r)},
	}
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", s.name, err)
		}
		if err := writeRows(f, s.name, s.rows); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	w.logger.Debug("workbook written", "file", w.path, "sheets", len(sheets))
	return []string{w.path}, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func frequencyRows(r *report.Report) [][]interface{} {
	tables := []report.Frequency{r.Categories, r.Outcomes}
	if r.LocationTypes != nil {
		tables = append(tables, *r.LocationTypes)
	}
	rows := [][]interface{}{{"Table", "Value", "Label", "Count", "Share"}}
	for _, t := range tables {
		for _, c := range t.Counts {
			rows = append(rows, []interface{}{t.Title, c.Value, c.Label, c.N, c.Share})
		}
	}
	return rows
}

func contingencyRows(ct report.Crosstab) [][]interface{} {
	header := []interface{}{report.Label(ct.RowColumn) + " / " + report.Label(ct.ColColumn)}
	for _, c := range ct.Cols {
		header = append(header, c)
	}
	rows := [][]interface{}{append(header, "Total")}
	for i, name := range ct.Rows {
		row := []interface{}{name}
		for _, n := range ct.Cells[i] {
			row = append(row, n)
		}
		rows = append(rows, append(row, ct.RowTotals[i]))
	}
	totals := []interface{}{"Total"}
	for _, n := range ct.ColTotals {
		totals = append(totals, n)
	}
	return append(rows, append(totals, ct.Total))
}

// monthlyRows leaves a cell blank where the month has no weather.
func monthlyRows(monthly []domain.MergedMonthlyRecord) [][]interface{} {
	header := []interface{}{domain.ColMonth}
	for _, c := range domain.MonthlyColumns {
		header = append(header, c)
	}
	rows := [][]interface{}{header}
	for _, m := range monthly {
		row := []interface{}{m.Month}
		for _, c := range domain.MonthlyColumns {
			if v, ok := m.Value(c); ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func correlationRows(m report.CorrelationMatrix) [][]interface{} {
	header := []interface{}{""}
	for _, c := range m.Columns {
		header = append(header, report.Label(c))
	}
	rows := [][]interface{}{header}
	for i, c := range m.Columns {
		row := []interface{}{report.Label(c)}
		for j := range m.Columns {
			if math.IsNaN(m.R[i][j]) {
				row = append(row, "n/a")
			} else {
				row = append(row, m.R[i][j])
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func qualityRows(r *report.Report) [][]interface{} {
	rows := [][]interface{}{{"Dataset", "Rows", "Column", "Type", "Present", "Missing", "Min", "Max", "Mean", "Top level"}}
	for _, q := range r.Quality {
		for _, c := range q.Columns {
			row := []interface{}{q.Dataset, q.Rows, c.Name, c.Type, c.Present, c.Missing}
			if c.Numeric && c.Present > 0 {
				row = append(row, c.Min, c.Max, c.Mean, nil)
			} else {
				top := ""
				if len(c.Levels) > 0 {
					top = fmt.Sprintf("%s (%d)", c.Levels[0].Value, c.Levels[0].Count)
				}
				row = append(row, nil, nil, nil, top)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func cleaningRows(r *report.Report) [][]interface{} {
	rows := [][]interface{}{{"Dataset", "Column", "Action", "Cells", "Value"}}
	for _, l := range r.Cleaning {
		for _, col := range l.Dropped {
			rows = append(rows, []interface{}{l.Dataset, col, "drop", nil, nil})
		}
		for _, imp := range l.Imputations {
			rows = append(rows, []interface{}{l.Dataset, imp.Column, string(imp.Action), imp.Count, imp.Value})
		}
	}
	return rows
}
