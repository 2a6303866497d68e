// Package cleaning applies a declarative per-column policy to a raw table and
// verifies that no missing value survives.
package cleaning

import (
	"fmt"
	"math"
	"strconv"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// Imputation records the cells one fill rule replaced.
type Imputation struct {
	Column string `json:"column"`
	Action Action `json:"action"`
	Count  int    `json:"count"`
	Value  string `json:"value"`
}

// Result is a cleaned table plus what was done to it.
type Result struct {
	Frame       dataframe.DataFrame
	Dropped     []string
	Imputations []Imputation
}

// Clean applies rules to df and returns a new table. Every column of df must
// have a rule. Drop rules for absent columns are skipped. Cleaning an already
// clean table returns it unchanged with no imputations.
func Clean(dataset string, df dataframe.DataFrame, rules []Rule) (Result, error) {
	byColumn := make(map[string]Rule, len(rules))
	for _, r := range rules {
		byColumn[r.Column] = r
	}

	var res Result
	for _, name := range df.Names() {
		r, ok := byColumn[name]
		if !ok {
			return Result{}, fmt.Errorf("%w: %s column %q has no cleaning rule", domain.ErrCleaningIncomplete, dataset, name)
		}
		if r.Action == ActionDrop {
			res.Dropped = append(res.Dropped, name)
		}
	}

	out := df
	if len(res.Dropped) > 0 {
		out = out.Drop(res.Dropped)
		if out.Err != nil {
			return Result{}, fmt.Errorf("%s: drop columns: %w", dataset, out.Err)
		}
	}

	for _, r := range rules {
		if r.Action == ActionKeep || r.Action == ActionDrop || !domain.HasColumn(out, r.Column) {
			continue
		}
		s := out.Col(r.Column)
		missing := Missing(s)
		n := countTrue(missing)
		if n == 0 {
			continue
		}

		filled, value, err := fill(s, missing, r)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", dataset, err)
		}
		out = out.Mutate(filled)
		if out.Err != nil {
			return Result{}, fmt.Errorf("%s: replace column %q: %w", dataset, r.Column, out.Err)
		}
		res.Imputations = append(res.Imputations, Imputation{Column: r.Column, Action: r.Action, Count: n, Value: value})
	}

	if err := VerifyComplete(dataset, out); err != nil {
		return Result{}, err
	}
	res.Frame = out
	return res, nil
}

// VerifyComplete fails with ErrCleaningIncomplete when any column still has
// a missing value.
func VerifyComplete(dataset string, df dataframe.DataFrame) error {
	for _, name := range df.Names() {
		if n := countTrue(Missing(df.Col(name))); n > 0 {
			return fmt.Errorf("%w: %s column %q has %d missing values after cleaning", domain.ErrCleaningIncomplete, dataset, name, n)
		}
	}
	return nil
}

// Missing marks the missing cells of s. Float cells holding NaN count as
// missing even when the element was not flagged on load.
func Missing(s series.Series) []bool {
	mask := s.IsNaN()
	if s.Type() != series.Float {
		return mask
	}
	for i, v := range s.Float() {
		if math.IsNaN(v) {
			mask[i] = true
		}
	}
	return mask
}

func fill(s series.Series, missing []bool, r Rule) (series.Series, string, error) {
	numeric := s.Type() == series.Float || s.Type() == series.Int

	switch r.Action {
	case ActionFillSentinel:
		if numeric {
			return series.Series{}, "", fmt.Errorf("%w: fill_sentinel on numeric column %q", domain.ErrSchemaMismatch, r.Column)
		}
		vals := s.Records()
		for i, m := range missing {
			if m {
				vals[i] = r.Value
			}
		}
		return series.New(vals, series.String, r.Column), r.Value, nil

	case ActionFillConstant:
		if !numeric {
			return series.Series{}, "", fmt.Errorf("%w: fill_constant on text column %q", domain.ErrSchemaMismatch, r.Column)
		}
		v, err := strconv.ParseFloat(r.Value, 64)
		if err != nil {
			return series.Series{}, "", fmt.Errorf("fill_constant %q for column %q: %w", r.Value, r.Column, err)
		}
		return replaceFloats(s, missing, v, r.Column), r.Value, nil

	case ActionFillMean:
		if !numeric {
			return series.Series{}, "", fmt.Errorf("%w: fill_mean on text column %q", domain.ErrSchemaMismatch, r.Column)
		}
		observed := make([]float64, 0, len(missing))
		for i, v := range s.Float() {
			if !missing[i] {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			return series.Series{}, "", fmt.Errorf("%w: column %q has no observed values to average", domain.ErrCleaningIncomplete, r.Column)
		}
		mean := stat.Mean(observed, nil)
		return replaceFloats(s, missing, mean, r.Column), strconv.FormatFloat(mean, 'f', -1, 64), nil
	}
	return series.Series{}, "", fmt.Errorf("column %q: action %q does not fill", r.Column, r.Action)
}

func replaceFloats(s series.Series, missing []bool, v float64, name string) series.Series {
	vals := s.Float()
	for i, m := range missing {
		if m {
			vals[i] = v
		}
	}
	return series.New(vals, series.Float, name)
}

func countTrue(mask []bool) int {
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n
}
