// Package quality summarises missingness and value ranges of a raw table.
// Its output is informational; nothing downstream branches on it.
package quality

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// maxLevelsInText caps the categorical levels printed per column.
const maxLevelsInText = 10

// Level is one categorical value and how often it occurs.
type Level struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnSummary describes one column.
type ColumnSummary struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Present int     `json:"present"`
	Missing int     `json:"missing"`
	Numeric bool    `json:"numeric"`
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
	Mean    float64 `json:"mean,omitempty"`
	Levels  []Level `json:"levels,omitempty"`
}

// Report is the inspection result for one dataset.
type Report struct {
	Dataset string          `json:"dataset"`
	Rows    int             `json:"rows"`
	Missing map[string]int  `json:"missing"`
	Columns []ColumnSummary `json:"columns"`
}

// Inspect counts missing values per column and summarises each column:
// min/max/mean for numeric columns, level counts for everything else.
func Inspect(dataset string, df dataframe.DataFrame) Report {
	r := Report{
		Dataset: dataset,
		Rows:    df.Nrow(),
		Missing: make(map[string]int, df.Ncol()),
	}
	for _, name := range df.Names() {
		s := df.Col(name)
		cs := summarise(name, s)
		r.Missing[name] = cs.Missing
		r.Columns = append(r.Columns, cs)
	}
	return r
}

// TotalMissing sums missing cells over all columns.
func (r Report) TotalMissing() int {
	n := 0
	for _, m := range r.Missing {
		n += m
	}
	return n
}

func summarise(name string, s series.Series) ColumnSummary {
	cs := ColumnSummary{Name: name, Type: string(s.Type())}
	nan := s.IsNaN()

	switch s.Type() {
	case series.Float, series.Int:
		cs.Numeric = true
		vals := s.Float()
		present := make([]float64, 0, len(vals))
		for i, v := range vals {
			if nan[i] || math.IsNaN(v) {
				continue
			}
			present = append(present, v)
		}
		cs.Present = len(present)
		cs.Missing = len(vals) - len(present)
		if len(present) > 0 {
			cs.Min = floats.Min(present)
			cs.Max = floats.Max(present)
			cs.Mean = stat.Mean(present, nil)
		}
	default:
		counts := make(map[string]int)
		for i, v := range s.Records() {
			if nan[i] {
				cs.Missing++
				continue
			}
			counts[v]++
			cs.Present++
		}
		cs.Levels = sortLevels(counts)
	}
	return cs
}

// sortLevels orders levels by count descending, then by value.
func sortLevels(counts map[string]int) []Level {
	levels := make([]Level, 0, len(counts))
	for v, n := range counts {
		levels = append(levels, Level{Value: v, Count: n})
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].Count != levels[j].Count {
			return levels[i].Count > levels[j].Count
		}
		return levels[i].Value < levels[j].Value
	})
	return levels
}

// Text renders the report as a plain-text summary.
func (r Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d rows, %d columns, %d missing cells\n", r.Dataset, r.Rows, len(r.Columns), r.TotalMissing())
	for _, c := range r.Columns {
		fmt.Fprintf(&b, "  %s (%s): %d present, %d missing", c.Name, c.Type, c.Present, c.Missing)
		switch {
		case c.Numeric && c.Present > 0:
			fmt.Fprintf(&b, ", min %.2f, max %.2f, mean %.2f", c.Min, c.Max, c.Mean)
		case len(c.Levels) > 0:
			b.WriteString(", levels:")
			for i, l := range c.Levels {
				if i == maxLevelsInText {
					fmt.Fprintf(&b, " ... %d more", len(c.Levels)-maxLevelsInText)
					break
				}
				fmt.Fprintf(&b, " %s=%d", l.Value, l.Count)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
