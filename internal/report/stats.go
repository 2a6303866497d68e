package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// densityPoints is the number of grid points a density curve is evaluated at.
const densityPoints = 128

// jitterWidth is the horizontal spread of a point cloud around its group.
const jitterWidth = 0.6

// XY is a point in data coordinates.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Trend is a least-squares line y = Intercept + Slope*x.
type Trend struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	RSquared  float64 `json:"r_squared"`
	N         int     `json:"n"`
}

// At evaluates the line at x.
func (t Trend) At(x float64) float64 { return t.Intercept + t.Slope*x }

// fitTrend regresses ys on xs. At least two distinct x values are required.
func fitTrend(xs, ys []float64) (Trend, error) {
	if len(xs) < 2 {
		return Trend{}, fmt.Errorf("%w: trend line needs at least 2 points, got %d", domain.ErrEmptyAggregate, len(xs))
	}
	if floats.Max(xs) == floats.Min(xs) {
		return Trend{}, fmt.Errorf("%w: trend line needs at least 2 distinct x values", domain.ErrEmptyAggregate)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Trend{
		Intercept: alpha,
		Slope:     beta,
		RSquared:  stat.RSquared(xs, ys, nil, alpha, beta),
		N:         len(xs),
	}, nil
}

// pearson returns the correlation of the pairs where both values are present,
// and how many such pairs there were. Fewer than two pairs, or a constant
// side, gives NaN.
func pearson(a, b []*float64) (float64, int) {
	var xs, ys []float64
	for i := range a {
		if a[i] == nil || b[i] == nil {
			continue
		}
		xs = append(xs, *a[i])
		ys = append(ys, *b[i])
	}
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN(), len(xs)
	}
	return stat.Correlation(xs, ys, nil), len(xs)
}

// silvermanBandwidth is Silverman's rule of thumb for a Gaussian kernel. It
// falls back to 1 when the sample has no spread.
func silvermanBandwidth(sorted []float64) float64 {
	n := float64(len(sorted))
	sd := stat.StdDev(sorted, nil)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)
	spread := sd
	if iqr > 0 && iqr/1.34 < spread {
		spread = iqr / 1.34
	}
	h := 0.9 * spread * math.Pow(n, -0.2)
	if h <= 0 || math.IsNaN(h) {
		return 1
	}
	return h
}

// kde evaluates a Gaussian kernel density estimate on an even grid covering
// the sample plus three bandwidths either side.
func kde(values []float64) ([]XY, float64) {
	if len(values) == 0 {
		return nil, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	h := silvermanBandwidth(sorted)

	lo, hi := sorted[0]-3*h, sorted[len(sorted)-1]+3*h
	step := (hi - lo) / float64(densityPoints-1)
	kernel := distuv.UnitNormal
	norm := 1 / (float64(len(sorted)) * h)

	out := make([]XY, densityPoints)
	for i := range out {
		x := lo + float64(i)*step
		var sum float64
		for _, v := range sorted {
			sum += kernel.Prob((x - v) / h)
		}
		out[i] = XY{X: x, Y: sum * norm}
	}
	return out, h
}

// movingAverage is a centred moving average. Near the ends the window shrinks
// to the values available, so the output has the same length as the input.
func movingAverage(values []float64, window int) []float64 {
	half := window / 2
	out := make([]float64, len(values))
	for i := range values {
		lo, hi := max(0, i-half), min(len(values)-1, i+half)
		out[i] = stat.Mean(values[lo:hi+1], nil)
	}
	return out
}

// jitter returns a deterministic offset in [-jitterWidth/2, jitterWidth/2)
// for the i-th point of a group, spread by the golden-ratio sequence.
func jitter(i int) float64 {
	const phi = 0.6180339887498949
	frac := math.Mod(float64(i)*phi, 1)
	return (frac - 0.5) * jitterWidth
}

// quartiles returns the minimum, lower quartile, median, upper quartile and
// maximum of values.
func quartiles(values []float64) [5]float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return [5]float64{
		sorted[0],
		stat.Quantile(0.25, stat.Empirical, sorted, nil),
		stat.Quantile(0.5, stat.Empirical, sorted, nil),
		stat.Quantile(0.75, stat.Empirical, sorted, nil),
		sorted[len(sorted)-1],
	}
}
