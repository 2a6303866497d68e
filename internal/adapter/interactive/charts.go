package interactive

import (
	"fmt"
	"math"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/couchcryptid/crime-weather-report/internal/report"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Cluster bubbles grow with the square root of their incident count.
const (
	minClusterSymbol = 8
	maxClusterSymbol = 48
)

func tooltip() charts.GlobalOpts {
	return charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)})
}

func scatterTrend(s report.Scatter) *charts.Scatter {
	xName, yName := report.Label(s.XColumn), report.Label(s.YColumn)

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: yName + " against " + xName}),
		charts.WithTitleOpts(opts.Title{
			Title:    yName + " against " + xName,
			Subtitle: fmt.Sprintf("y = %.2f + %.2fx, R² %.2f, n = %d", s.Trend.Intercept, s.Trend.Slope, s.Trend.RSquared, s.Trend.N),
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: xName, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: yName, Scale: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		tooltip(),
	)

	points := make([]opts.ScatterData, len(s.Points))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, p := range s.Points {
		points[i] = opts.ScatterData{Name: p.Label, Value: []interface{}{p.X, p.Y}, SymbolSize: 12}
		lo, hi = math.Min(lo, p.X), math.Max(hi, p.X)
	}
	sc.AddSeries("Months", points)

	trend := charts.NewLine()
	trend.AddSeries("Trend", []opts.LineData{
		{Value: []interface{}{lo, s.Trend.At(lo)}},
		{Value: []interface{}{hi, s.Trend.At(hi)}},
	}, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Width: 2}))
	sc.Overlap(trend)
	return sc
}

func timeSeries(ts report.TimeSeries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Monthly " + report.Label(domain.ColCrimeCount)}),
		charts.WithTitleOpts(opts.Title{Title: "Monthly " + report.Label(domain.ColCrimeCount)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Incidents"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		tooltip(),
	)

	counts := make([]opts.LineData, len(ts.Counts))
	smoothed := make([]opts.LineData, len(ts.Smoothed))
	for i := range ts.Counts {
		counts[i] = opts.LineData{Value: ts.Counts[i]}
		smoothed[i] = opts.LineData{Value: math.Round(ts.Smoothed[i]*100) / 100}
	}
	line.SetXAxis(ts.Months).
		AddSeries("Incidents", counts).
		AddSeries(fmt.Sprintf("%d-month moving average", ts.Window), smoothed,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Width: 2}),
		)
	return line
}

// incidentMap plots incidents by longitude and latitude, one series per
// category, with the clusters as an overlaid bubble series.
func incidentMap(m report.MapView) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Incident Map", Width: "1000px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: "Incident Map", Subtitle: fmt.Sprintf("%d located incidents", len(m.Points))}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Longitude", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Latitude", Scale: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", XAxisIndex: []int{0}},
			opts.DataZoom{Type: "inside", YAxisIndex: []int{0}},
		),
		tooltip(),
	)

	var order []string
	byCategory := make(map[string][]opts.ScatterData)
	for _, p := range m.Points {
		if _, ok := byCategory[p.Category]; !ok {
			order = append(order, p.Category)
		}
		byCategory[p.Category] = append(byCategory[p.Category], opts.ScatterData{
			Name:       report.Label(p.Category),
			Value:      []interface{}{p.Long, p.Lat},
			SymbolSize: 5,
		})
	}
	for _, c := range order {
		sc.AddSeries(report.Label(c), byCategory[c])
	}

	if len(m.Clusters) > 0 {
		sc.AddSeries(fmt.Sprintf("Clusters (%.3f° cells)", m.Cell), clusterData(m.Clusters))
	}
	return sc
}

func clusterData(clusters []report.Cluster) []opts.ScatterData {
	largest := 0
	for _, c := range clusters {
		if c.Count > largest {
			largest = c.Count
		}
	}
	out := make([]opts.ScatterData, len(clusters))
	for i, c := range clusters {
		out[i] = opts.ScatterData{
			Name:       fmt.Sprintf("%d incidents, mostly %s", c.Count, report.Label(c.TopCategory)),
			Value:      []interface{}{c.Long, c.Lat},
			SymbolSize: clusterSymbol(c.Count, largest),
		}
	}
	return out
}

func clusterSymbol(count, largest int) int {
	if largest <= 0 {
		return minClusterSymbol
	}
	scale := math.Sqrt(float64(count) / float64(largest))
	return minClusterSymbol + int(math.Round(scale*(maxClusterSymbol-minClusterSymbol)))
}
