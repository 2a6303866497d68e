package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
)

// missingMarkers are the raw cell values treated as missing.
var missingMarkers = []string{"", "NA", "NaN", "<nil>"}

// ReadTable reads a CSV or XLSX file into a DataFrame. Columns named in types
// are forced to that type; the rest are detected. For .xlsx files only the
// first sheet is read and its first row is the header. A cell of a forced
// float column that is neither a number nor a missing marker is a schema
// mismatch.
func ReadTable(path string, types map[string]series.Type) (dataframe.DataFrame, error) {
	var records [][]string
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		var err error
		if records, err = readSheet(path); err != nil {
			return dataframe.DataFrame{}, err
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return dataframe.DataFrame{}, sourceErr(path, err)
		}
		defer f.Close()
		// Every column as text, so the cells survive for checkNumeric.
		raw := dataframe.ReadCSV(f,
			dataframe.HasHeader(true),
			dataframe.DetectTypes(false),
			dataframe.NaNValues(missingMarkers),
		)
		if raw.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s: %v", domain.ErrSchemaMismatch, path, raw.Err)
		}
		records = raw.Records()
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingMarkers),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s: %v", domain.ErrSchemaMismatch, path, df.Err)
	}
	if err := checkNumeric(records, df, types); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s: %v", domain.ErrSchemaMismatch, path, err)
	}
	return df, nil
}

// checkNumeric fails on the first cell of a forced float column that parsed
// to NaN without being a missing marker. Rows are numbered as in the file,
// with the header on row 1.
func checkNumeric(records [][]string, df dataframe.DataFrame, types map[string]series.Type) error {
	if len(records) == 0 {
		return nil
	}
	for j, name := range records[0] {
		if types[name] != series.Float {
			continue
		}
		nan := df.Col(name).IsNaN()
		for i, row := range records[1:] {
			if i >= len(nan) || j >= len(row) {
				break
			}
			if nan[i] && !slices.Contains(missingMarkers, row[j]) {
				return fmt.Errorf("column %q row %d: %q is not a number", name, i+2, row[j])
			}
		}
	}
	return nil
}

// readSheet flattens the first worksheet into string records. Short rows are
// padded to the header width and blank rows are skipped.
func readSheet(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, sourceErr(path, err)
	}
	book, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceNotFound, path, err)
	}
	if len(book.Sheets) == 0 {
		return nil, fmt.Errorf("%w: %s: workbook has no sheets", domain.ErrSchemaMismatch, path)
	}

	sheet := book.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s: sheet %q is empty", domain.ErrSchemaMismatch, path, sheet.Name)
	}

	var header []string
	for _, cell := range sheet.Rows[0].Cells {
		header = append(header, strings.TrimSpace(cell.Value))
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}

	records := [][]string{header}
	for _, row := range sheet.Rows[1:] {
		if row == nil {
			continue
		}
		rec := make([]string, len(header))
		blank := true
		for i, cell := range row.Cells {
			if i >= len(header) || cell == nil {
				continue
			}
			rec[i] = cell.Value
			if rec[i] != "" {
				blank = false
			}
		}
		if !blank {
			records = append(records, rec)
		}
	}
	return records, nil
}

func sourceErr(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist", domain.ErrSourceNotFound, path)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrSourceNotFound, path, err)
}
