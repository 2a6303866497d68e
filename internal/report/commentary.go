package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
)

// commentary writes the narrative paragraph for the report, one sentence per
// finding.
func commentary(r *Report) []string {
	var out []string

	top := r.Categories.Top()
	out = append(out, fmt.Sprintf("%s was the most common category, with %d of %d incidents (%.1f%%).",
		top.Label, top.N, r.Categories.Total, top.Share*100))

	peak, trough := r.Series.peakAndTrough()
	if peak == trough {
		out = append(out, fmt.Sprintf("Every month has %d incidents.", int(r.Series.Counts[peak])))
	} else {
		out = append(out, fmt.Sprintf("Crime peaked in %s (%d incidents) and was lowest in %s (%d).",
			r.Series.Months[peak], int(r.Series.Counts[peak]),
			r.Series.Months[trough], int(r.Series.Counts[trough])))
	}

	if col, rv, ok := r.Correlation.strongestWith(domain.ColCrimeCount); ok {
		out = append(out, fmt.Sprintf("%s has the strongest correlation with the monthly crime count (r = %.2f, %s).",
			Label(col), rv, strength(rv)))
	} else {
		out = append(out, "No weather measure has a defined correlation with the monthly crime count.")
	}

	t := r.TempVsCrime.Trend
	direction := "more"
	if t.Slope < 0 {
		direction = "fewer"
	}
	out = append(out, fmt.Sprintf("Across %d months, each extra degree of average temperature goes with %.1f %s crimes per month (R² = %.2f).",
		t.N, math.Abs(t.Slope), direction, t.RSquared))

	unknown := 0
	for _, c := range r.Outcomes.Counts {
		if c.Value == domain.UnknownOutcome {
			unknown = c.N
		}
	}
	out = append(out, fmt.Sprintf("%d incidents (%.1f%%) have no recorded outcome.",
		unknown, 100*float64(unknown)/float64(r.Outcomes.Total)))

	var missing []string
	for _, m := range r.Monthly {
		if !m.HasWeather() {
			missing = append(missing, m.Month)
		}
	}
	if len(missing) == 0 {
		out = append(out, "Every crime month has matching weather data.")
	} else {
		out = append(out, fmt.Sprintf("%d of %d crime months have no matching weather data (%s) and are left out of the weather comparisons.",
			len(missing), len(r.Monthly), strings.Join(missing, ", ")))
	}
	return out
}

func (ts TimeSeries) peakAndTrough() (int, int) {
	peak, trough := 0, 0
	for i, c := range ts.Counts {
		if c > ts.Counts[peak] {
			peak = i
		}
		if c < ts.Counts[trough] {
			trough = i
		}
	}
	return peak, trough
}

// strongestWith returns the column whose defined correlation with target has
// the largest magnitude.
func (m CorrelationMatrix) strongestWith(target string) (string, float64, bool) {
	ti := -1
	for i, c := range m.Columns {
		if c == target {
			ti = i
		}
	}
	if ti < 0 {
		return "", 0, false
	}
	best, bestR := "", 0.0
	for j, c := range m.Columns {
		r := m.R[ti][j]
		if j == ti || math.IsNaN(r) {
			continue
		}
		if best == "" || math.Abs(r) > math.Abs(bestR) {
			best, bestR = c, r
		}
	}
	return best, bestR, best != ""
}

func strength(r float64) string {
	switch a := math.Abs(r); {
	case a >= 0.7:
		return "strong"
	case a >= 0.4:
		return "moderate"
	default:
		return "weak"
	}
}
