package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/go-gota/gota/dataframe"
)

// Count is one level of a frequency table.
type Count struct {
	Value string  `json:"value"`
	Label string  `json:"label"`
	N     int     `json:"n"`
	Share float64 `json:"share"`
}

// Frequency is a one-way frequency table, most frequent level first.
type Frequency struct {
	Column string  `json:"column"`
	Title  string  `json:"title"`
	Total  int     `json:"total"`
	Counts []Count `json:"counts"`
}

// Top returns the most frequent level.
func (f Frequency) Top() Count { return f.Counts[0] }

// Crosstab is a two-way contingency table with margins.
type Crosstab struct {
	RowColumn string   `json:"row_column"`
	ColColumn string   `json:"col_column"`
	Rows      []string `json:"rows"`
	Cols      []string `json:"cols"`
	Cells     [][]int  `json:"cells"`
	RowTotals []int    `json:"row_totals"`
	ColTotals []int    `json:"col_totals"`
	Total     int      `json:"total"`
}

// Group is the values of one month in a by-month view.
type Group struct {
	Label   string     `json:"label"`
	Values  []float64  `json:"values"`
	Box     [5]float64 `json:"box"`
	Density []XY       `json:"density"`
}

// Distribution describes a daily measurement overall and by month.
type Distribution struct {
	Column    string    `json:"column"`
	Values    []float64 `json:"values"`
	Density   []XY      `json:"density"`
	Bandwidth float64   `json:"bandwidth"`
	ByMonth   []Group   `json:"by_month"`
}

// CloudPoint is one jittered observation; X is the group index plus jitter.
type CloudPoint struct {
	Group int     `json:"group"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// PointCloud is a strip plot of a daily measurement grouped by month.
type PointCloud struct {
	Column string       `json:"column"`
	Groups []string     `json:"groups"`
	Points []CloudPoint `json:"points"`
}

// LabeledXY is a point tagged with the month it came from.
type LabeledXY struct {
	XY
	Label string `json:"label"`
}

// Scatter plots one monthly column against another with a trend line.
type Scatter struct {
	XColumn string      `json:"x_column"`
	YColumn string      `json:"y_column"`
	Points  []LabeledXY `json:"points"`
	Trend   Trend       `json:"trend"`
}

// PairGrid holds the complete-case points for every pair of monthly columns.
// Cells[i][j] has column j on the x axis and column i on the y axis.
type PairGrid struct {
	Columns []string `json:"columns"`
	Cells   [][][]XY `json:"cells"`
}

// CorrelationMatrix holds pairwise-complete Pearson coefficients and the
// number of observations behind each. Undefined coefficients are NaN.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	R       [][]float64 `json:"-"`
	N       [][]int     `json:"n"`
}

// TimeSeries is the monthly crime count with a centred moving average.
type TimeSeries struct {
	Months   []string  `json:"months"`
	Counts   []float64 `json:"counts"`
	Smoothed []float64 `json:"smoothed"`
	Window   int       `json:"window"`
}

// MapPoint is one incident location.
type MapPoint struct {
	Lat      float64 `json:"lat"`
	Long     float64 `json:"long"`
	Category string  `json:"category"`
}

// Cluster is a grid cell of nearby incidents, placed at their centroid.
type Cluster struct {
	Lat         float64 `json:"lat"`
	Long        float64 `json:"long"`
	Count       int     `json:"count"`
	TopCategory string  `json:"top_category"`
}

// MapView is the incident map. Clusters is empty when clustering is off.
type MapView struct {
	Points   []MapPoint `json:"points"`
	Cell     float64    `json:"cell"`
	Clusters []Cluster  `json:"clusters"`
}

func frequency(df dataframe.DataFrame, column string) (Frequency, error) {
	if !domain.HasColumn(df, column) {
		return Frequency{}, fmt.Errorf("%w: frequency table: no %q column", domain.ErrSchemaMismatch, column)
	}
	values := df.Col(column).Records()
	if len(values) == 0 {
		return Frequency{}, fmt.Errorf("%w: frequency table of %q has no rows", domain.ErrEmptyAggregate, column)
	}
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	f := Frequency{Column: column, Title: Label(column), Total: len(values)}
	for _, v := range orderLevels(counts) {
		f.Counts = append(f.Counts, Count{
			Value: v,
			Label: Label(v),
			N:     counts[v],
			Share: float64(counts[v]) / float64(len(values)),
		})
	}
	return f, nil
}

// orderLevels sorts levels by count descending, then by value.
func orderLevels(counts map[string]int) []string {
	levels := make([]string, 0, len(counts))
	for v := range counts {
		levels = append(levels, v)
	}
	sort.Slice(levels, func(i, j int) bool {
		if counts[levels[i]] != counts[levels[j]] {
			return counts[levels[i]] > counts[levels[j]]
		}
		return levels[i] < levels[j]
	})
	return levels
}

func crosstab(df dataframe.DataFrame, rowCol, colCol string) (Crosstab, error) {
	for _, c := range []string{rowCol, colCol} {
		if !domain.HasColumn(df, c) {
			return Crosstab{}, fmt.Errorf("%w: contingency table: no %q column", domain.ErrSchemaMismatch, c)
		}
	}
	rows := df.Col(rowCol).Records()
	cols := df.Col(colCol).Records()
	if len(rows) == 0 {
		return Crosstab{}, fmt.Errorf("%w: contingency table has no rows", domain.ErrEmptyAggregate)
	}

	rowCounts := make(map[string]int)
	colCounts := make(map[string]int)
	for i := range rows {
		rowCounts[rows[i]]++
		colCounts[cols[i]]++
	}
	ct := Crosstab{
		RowColumn: rowCol,
		ColColumn: colCol,
		Rows:      orderLevels(rowCounts),
		Cols:      orderLevels(colCounts),
		Total:     len(rows),
	}
	rowIdx := indexOf(ct.Rows)
	colIdx := indexOf(ct.Cols)

	ct.Cells = make([][]int, len(ct.Rows))
	for i := range ct.Cells {
		ct.Cells[i] = make([]int, len(ct.Cols))
	}
	for i := range rows {
		ct.Cells[rowIdx[rows[i]]][colIdx[cols[i]]]++
	}
	ct.RowTotals = make([]int, len(ct.Rows))
	for i, r := range ct.Rows {
		ct.RowTotals[i] = rowCounts[r]
	}
	ct.ColTotals = make([]int, len(ct.Cols))
	for j, c := range ct.Cols {
		ct.ColTotals[j] = colCounts[c]
	}
	return ct, nil
}

// byMonth groups a numeric weather column by month, in month order.
func byMonth(df dataframe.DataFrame, column string) ([]string, [][]float64) {
	months := df.Col(domain.ColMonth).Records()
	values := df.Col(column).Float()
	idx := make(map[string]int)
	var labels []string
	for _, m := range months {
		if _, ok := idx[m]; !ok {
			idx[m] = 0
			labels = append(labels, m)
		}
	}
	sort.Strings(labels)
	for i, m := range labels {
		idx[m] = i
	}
	groups := make([][]float64, len(labels))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		g := idx[months[i]]
		groups[g] = append(groups[g], v)
	}
	return labels, groups
}

func distribution(df dataframe.DataFrame, column string) (Distribution, error) {
	if err := requireColumns(df, column, domain.ColMonth); err != nil {
		return Distribution{}, err
	}
	labels, groups := byMonth(df, column)
	d := Distribution{Column: column}
	for _, g := range groups {
		d.Values = append(d.Values, g...)
	}
	if len(d.Values) == 0 {
		return Distribution{}, fmt.Errorf("%w: distribution of %q has no values", domain.ErrEmptyAggregate, column)
	}
	d.Density, d.Bandwidth = kde(d.Values)
	for i, g := range groups {
		if len(g) == 0 {
			continue
		}
		density, _ := kde(g)
		d.ByMonth = append(d.ByMonth, Group{Label: labels[i], Values: g, Box: quartiles(g), Density: density})
	}
	return d, nil
}

func pointCloud(df dataframe.DataFrame, column string) (PointCloud, error) {
	if err := requireColumns(df, column, domain.ColMonth); err != nil {
		return PointCloud{}, err
	}
	labels, groups := byMonth(df, column)
	pc := PointCloud{Column: column, Groups: labels}
	for gi, g := range groups {
		for i, v := range g {
			pc.Points = append(pc.Points, CloudPoint{Group: gi, X: float64(gi) + jitter(i), Y: v})
		}
	}
	if len(pc.Points) == 0 {
		return PointCloud{}, fmt.Errorf("%w: point cloud of %q has no values", domain.ErrEmptyAggregate, column)
	}
	return pc, nil
}

func scatter(monthly []domain.MergedMonthlyRecord, xCol, yCol string) (Scatter, error) {
	s := Scatter{XColumn: xCol, YColumn: yCol}
	var xs, ys []float64
	for _, r := range monthly {
		x, okX := r.Value(xCol)
		y, okY := r.Value(yCol)
		if !okX || !okY {
			continue
		}
		s.Points = append(s.Points, LabeledXY{XY: XY{X: x, Y: y}, Label: r.Month})
		xs = append(xs, x)
		ys = append(ys, y)
	}
	trend, err := fitTrend(xs, ys)
	if err != nil {
		return Scatter{}, fmt.Errorf("scatter of %s against %s: %w", yCol, xCol, err)
	}
	s.Trend = trend
	return s, nil
}

func columnValues(monthly []domain.MergedMonthlyRecord, column string) []*float64 {
	out := make([]*float64, len(monthly))
	for i, r := range monthly {
		if v, ok := r.Value(column); ok {
			out[i] = &v
		}
	}
	return out
}

func pairGrid(monthly []domain.MergedMonthlyRecord, columns []string) PairGrid {
	vals := make([][]*float64, len(columns))
	for i, c := range columns {
		vals[i] = columnValues(monthly, c)
	}
	g := PairGrid{Columns: columns, Cells: make([][][]XY, len(columns))}
	for i := range columns {
		g.Cells[i] = make([][]XY, len(columns))
		for j := range columns {
			for k := range monthly {
				if vals[j][k] != nil && vals[i][k] != nil {
					g.Cells[i][j] = append(g.Cells[i][j], XY{X: *vals[j][k], Y: *vals[i][k]})
				}
			}
		}
	}
	return g
}

func correlationMatrix(monthly []domain.MergedMonthlyRecord, columns []string) CorrelationMatrix {
	vals := make([][]*float64, len(columns))
	for i, c := range columns {
		vals[i] = columnValues(monthly, c)
	}
	m := CorrelationMatrix{
		Columns: columns,
		R:       make([][]float64, len(columns)),
		N:       make([][]int, len(columns)),
	}
	for i := range columns {
		m.R[i] = make([]float64, len(columns))
		m.N[i] = make([]int, len(columns))
		for j := range columns {
			m.R[i][j], m.N[i][j] = pearson(vals[i], vals[j])
		}
	}
	return m
}

func timeSeries(monthly []domain.MergedMonthlyRecord, window int) TimeSeries {
	ts := TimeSeries{Window: window}
	for _, r := range monthly {
		ts.Months = append(ts.Months, r.Month)
		ts.Counts = append(ts.Counts, float64(r.CrimeCount))
	}
	ts.Smoothed = movingAverage(ts.Counts, window)
	return ts
}

func mapView(df dataframe.DataFrame, cell float64) (MapView, error) {
	if err := requireColumns(df, domain.ColLat, domain.ColLong, domain.ColCategory); err != nil {
		return MapView{}, err
	}
	lats := df.Col(domain.ColLat).Float()
	longs := df.Col(domain.ColLong).Float()
	cats := df.Col(domain.ColCategory).Records()

	mv := MapView{Cell: cell}
	for i := range lats {
		if math.IsNaN(lats[i]) || math.IsNaN(longs[i]) {
			continue
		}
		mv.Points = append(mv.Points, MapPoint{Lat: lats[i], Long: longs[i], Category: cats[i]})
	}
	if len(mv.Points) == 0 {
		return MapView{}, fmt.Errorf("%w: map has no located incidents", domain.ErrEmptyAggregate)
	}
	if cell > 0 {
		mv.Clusters = cluster(mv.Points, cell)
	}
	return mv, nil
}

// cluster buckets points into a lat/long grid of the given cell size.
// Clusters are ordered by size, then position.
func cluster(points []MapPoint, cell float64) []Cluster {
	type key struct{ lat, long int64 }
	type acc struct {
		lat, long float64
		n         int
		cats      map[string]int
	}
	cells := make(map[key]*acc)
	for _, p := range points {
		k := key{int64(math.Floor(p.Lat / cell)), int64(math.Floor(p.Long / cell))}
		a, ok := cells[k]
		if !ok {
			a = &acc{cats: make(map[string]int)}
			cells[k] = a
		}
		a.lat += p.Lat
		a.long += p.Long
		a.n++
		a.cats[p.Category]++
	}

	out := make([]Cluster, 0, len(cells))
	for _, a := range cells {
		out = append(out, Cluster{
			Lat:         a.lat / float64(a.n),
			Long:        a.long / float64(a.n),
			Count:       a.n,
			TopCategory: orderLevels(a.cats)[0],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Lat != out[j].Lat {
			return out[i].Lat < out[j].Lat
		}
		return out[i].Long < out[j].Long
	})
	return out
}

func indexOf(values []string) map[string]int {
	m := make(map[string]int, len(values))
	for i, v := range values {
		m[v] = i
	}
	return m
}

func requireColumns(df dataframe.DataFrame, columns ...string) error {
	for _, c := range columns {
		if !domain.HasColumn(df, c) {
			return fmt.Errorf("%w: no %q column", domain.ErrSchemaMismatch, c)
		}
	}
	return nil
}
