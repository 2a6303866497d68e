package chart

import (
	"fmt"
	"math"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/couchcryptid/crime-weather-report/internal/report"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// histBins is the bin count of the temperature histogram.
const histBins = 20

// violinHalfWidth is the widest a violin gets either side of its month.
const violinHalfWidth = 0.4

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func labels(counts []report.Count) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Label
	}
	return out
}

func categoriesBar(r *report.Report) (*plot.Plot, error) {
	f := r.Categories
	p := newPlot("Incidents by "+f.Title, "", "Incidents")

	vals := make(plotter.Values, len(f.Counts))
	for i, c := range f.Counts {
		vals[i] = float64(c.N)
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(14))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels(f.Counts)...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

func outcomesPie(r *report.Report) (*plot.Plot, error) {
	f := r.Outcomes
	p := newPlot("Incidents by "+f.Title, "", "")
	p.HideAxes()

	pie := newPie()
	for i, c := range f.Counts {
		if err := pie.add(float64(c.N), plotutil.Color(i)); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Value, err)
		}
		p.Legend.Add(fmt.Sprintf("%s (%.1f%%)", c.Label, c.Share*100), swatch{plotutil.Color(i)})
	}
	p.Add(pie)
	p.Legend.Top = true
	return p, nil
}

func locationTypesDot(r *report.Report) (*plot.Plot, error) {
	f := *r.LocationTypes
	p := newPlot("Incidents by "+f.Title, "Incidents", "")

	pts := make(plotter.XYs, len(f.Counts))
	for i, c := range f.Counts {
		pts[i] = plotter.XY{X: float64(c.N), Y: float64(i)}
	}
	dots, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	dots.GlyphStyle.Shape = draw.CircleGlyph{}
	dots.GlyphStyle.Radius = vg.Points(4)
	dots.GlyphStyle.Color = plotutil.Color(1)
	p.Add(plotter.NewGrid(), dots)
	p.NominalY(labels(f.Counts)...)
	p.X.Min = 0
	return p, nil
}

func temperatureHist(r *report.Report) (*plot.Plot, error) {
	d := r.Temperature
	p := newPlot("Distribution of "+report.Label(d.Column), report.Label(d.Column), "Days")
	h, err := plotter.NewHist(plotter.Values(d.Values), histBins)
	if err != nil {
		return nil, err
	}
	h.FillColor = plotutil.Color(2)
	p.Add(h)
	return p, nil
}

func temperatureDensity(r *report.Report) (*plot.Plot, error) {
	d := r.Temperature
	p := newPlot(fmt.Sprintf("Density of %s (bandwidth %.2f)", report.Label(d.Column), d.Bandwidth), report.Label(d.Column), "Density")

	h, err := plotter.NewHist(plotter.Values(d.Values), histBins)
	if err != nil {
		return nil, err
	}
	h.Normalize(1)
	h.FillColor = plotutil.Color(6)
	h.LineStyle.Width = 0

	line, err := plotter.NewLine(xys(d.Density))
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = plotutil.Color(0)
	line.LineStyle.Width = vg.Points(2)
	p.Add(h, line)
	return p, nil
}

func temperatureBox(r *report.Report) (*plot.Plot, error) {
	d := r.Temperature
	p := newPlot(report.Label(d.Column)+" by Month", "Month", report.Label(d.Column))

	names := make([]string, len(d.ByMonth))
	for i, g := range d.ByMonth {
		box, err := plotter.NewBoxPlot(vg.Points(18), float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", g.Label, err)
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
		names[i] = g.Label
	}
	p.NominalX(names...)
	return p, nil
}

func temperatureViolin(r *report.Report) (*plot.Plot, error) {
	d := r.Temperature
	p := newPlot(report.Label(d.Column)+" by Month", "Month", report.Label(d.Column))

	names := make([]string, len(d.ByMonth))
	for i, g := range d.ByMonth {
		poly, err := plotter.NewPolygon(violinOutline(float64(i), g.Density))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", g.Label, err)
		}
		poly.Color = plotutil.Color(i)
		poly.LineStyle.Width = vg.Points(0.5)
		p.Add(poly)
		names[i] = g.Label
	}
	p.NominalX(names...)
	return p, nil
}

// violinOutline mirrors a density curve either side of x, scaled so the peak
// spans violinHalfWidth. The density's X is the measured value and becomes
// the plot's Y.
func violinOutline(x float64, density []report.XY) plotter.XYs {
	peak := 0.0
	for _, pt := range density {
		peak = math.Max(peak, pt.Y)
	}
	scale := 0.0
	if peak > 0 {
		scale = violinHalfWidth / peak
	}
	out := make(plotter.XYs, 0, 2*len(density))
	for _, pt := range density {
		out = append(out, plotter.XY{X: x - pt.Y*scale, Y: pt.X})
	}
	for i := len(density) - 1; i >= 0; i-- {
		pt := density[i]
		out = append(out, plotter.XY{X: x + pt.Y*scale, Y: pt.X})
	}
	return out
}

func rainfallCloud(r *report.Report) (*plot.Plot, error) {
	pc := r.Rainfall
	p := newPlot(report.Label(pc.Column)+" by Month", "Month", report.Label(pc.Column))

	byGroup := make([]plotter.XYs, len(pc.Groups))
	for _, pt := range pc.Points {
		byGroup[pt.Group] = append(byGroup[pt.Group], plotter.XY{X: pt.X, Y: pt.Y})
	}
	for i, pts := range byGroup {
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pc.Groups[i], err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(2)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
	}
	p.NominalX(pc.Groups...)
	return p, nil
}

func tempVsCrime(r *report.Report) (*plot.Plot, error) {
	s := r.TempVsCrime
	p := newPlot(fmt.Sprintf("%s against %s", report.Label(s.YColumn), report.Label(s.XColumn)),
		report.Label(s.XColumn), report.Label(s.YColumn))

	pts := make(plotter.XYs, len(s.Points))
	names := make([]string, len(s.Points))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, pt := range s.Points {
		pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
		names[i] = pt.Label
		lo, hi = math.Min(lo, pt.X), math.Max(hi, pt.X)
	}
	dots, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	dots.GlyphStyle.Shape = draw.CircleGlyph{}
	dots.GlyphStyle.Radius = vg.Points(3)
	dots.GlyphStyle.Color = plotutil.Color(0)

	trend, err := plotter.NewLine(plotter.XYs{{X: lo, Y: s.Trend.At(lo)}, {X: hi, Y: s.Trend.At(hi)}})
	if err != nil {
		return nil, err
	}
	trend.LineStyle.Color = plotutil.Color(1)
	trend.LineStyle.Width = vg.Points(1.5)
	trend.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}

	tags, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: names})
	if err != nil {
		return nil, err
	}
	p.Add(dots, trend, tags)
	p.Legend.Add(fmt.Sprintf("y = %.2f + %.2fx (R² %.2f)", s.Trend.Intercept, s.Trend.Slope, s.Trend.RSquared), trend)
	p.Legend.Top = true
	return p, nil
}

func crimeSeries(r *report.Report) (*plot.Plot, error) {
	ts := r.Series
	p := newPlot("Monthly "+report.Label(domain.ColCrimeCount), "Month", "Incidents")

	raw := make(plotter.XYs, len(ts.Counts))
	smooth := make(plotter.XYs, len(ts.Smoothed))
	for i := range ts.Counts {
		raw[i] = plotter.XY{X: float64(i), Y: ts.Counts[i]}
		smooth[i] = plotter.XY{X: float64(i), Y: ts.Smoothed[i]}
	}
	line, points, err := plotter.NewLinePoints(raw)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = plotutil.Color(0)
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Color = plotutil.Color(0)

	ma, err := plotter.NewLine(smooth)
	if err != nil {
		return nil, err
	}
	ma.LineStyle.Color = plotutil.Color(1)
	ma.LineStyle.Width = vg.Points(2)
	ma.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}

	p.Add(plotter.NewGrid(), line, points, ma)
	p.Legend.Add("Incidents", line, points)
	p.Legend.Add(fmt.Sprintf("%d-month moving average", ts.Window), ma)
	p.Legend.Top = true
	p.NominalX(ts.Months...)
	return p, nil
}

func correlationHeatMap(r *report.Report) (*plot.Plot, error) {
	m := r.Correlation
	p := newPlot("Correlation of Monthly Measures", "", "")

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid(m), cmap.Palette(255))
	hm.NaN = plotutil.Color(7)
	p.Add(hm)

	var pts plotter.XYs
	var text []string
	for i := range m.Columns {
		for j := range m.Columns {
			pts = append(pts, plotter.XY{X: float64(j), Y: float64(i)})
			if math.IsNaN(m.R[i][j]) {
				text = append(text, "n/a")
			} else {
				text = append(text, fmt.Sprintf("%.2f", m.R[i][j]))
			}
		}
	}
	tags, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: text})
	if err != nil {
		return nil, err
	}
	for i := range tags.TextStyle {
		tags.TextStyle[i].XAlign = draw.XCenter
		tags.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(tags)

	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = report.Label(c)
	}
	p.NominalX(names...)
	p.NominalY(names...)
	return p, nil
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ; column c is the x
// axis and row r the y axis.
type corrGrid report.CorrelationMatrix

func (g corrGrid) Dims() (int, int)   { return len(g.Columns), len(g.Columns) }
func (g corrGrid) Z(c, r int) float64 { return g.R[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

func xys(pts []report.XY) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		out[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return out
}
