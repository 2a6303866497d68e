// Package aggregate reduces cleaned crime and weather tables to one row per
// month and left-joins them.
package aggregate

import (
	"fmt"
	"math"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Result holds every table the aggregator produces. Frames are sorted by month.
type Result struct {
	// Crime and Weather are the cleaned inputs with a month column added.
	Crime   dataframe.DataFrame
	Weather dataframe.DataFrame

	CrimeByMonth   []domain.MonthlyCrimeSummary
	WeatherByMonth []domain.MonthlyWeatherSummary
	Merged         []domain.MergedMonthlyRecord
	MergedFrame    dataframe.DataFrame
}

// Run keys both tables by month, summarises them and joins the summaries.
// An empty crime table fails with ErrEmptyAggregate; an empty weather table
// yields merged rows with no weather.
func Run(crime, weather dataframe.DataFrame) (Result, error) {
	if crime.Nrow() == 0 {
		return Result{}, fmt.Errorf("%w: %s table has no rows", domain.ErrEmptyAggregate, domain.DatasetCrime)
	}

	crime, err := WithMonth(crime)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", domain.DatasetCrime, err)
	}
	if weather.Nrow() > 0 {
		weather, err = WithMonth(weather)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", domain.DatasetWeather, err)
		}
	}

	crimeMonthly, err := MonthlyCrime(crime)
	if err != nil {
		return Result{}, err
	}
	weatherMonthly, err := MonthlyWeather(weather)
	if err != nil {
		return Result{}, err
	}
	merged, err := Merge(crimeMonthly, weatherMonthly)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Crime:          crime,
		Weather:        weather,
		CrimeByMonth:   crimeSummaries(crimeMonthly),
		WeatherByMonth: weatherSummaries(weatherMonthly),
		Merged:         MergedRecords(merged),
		MergedFrame:    merged,
	}, nil
}

// WithMonth adds (or replaces) the month column derived from the date column.
func WithMonth(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !domain.HasColumn(df, domain.ColDate) {
		return dataframe.DataFrame{}, fmt.Errorf("%w: no %q column", domain.ErrSchemaMismatch, domain.ColDate)
	}
	keys, err := domain.MonthKeys(df.Col(domain.ColDate).Records())
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	out := df.Mutate(series.New(keys, series.String, domain.ColMonth))
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("add month column: %w", out.Err)
	}
	return out, nil
}

// MonthlyCrime counts crime rows per month. Months without crimes get no row.
func MonthlyCrime(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: no crime rows to count", domain.ErrEmptyAggregate)
	}
	agg := df.GroupBy(domain.ColMonth).Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_COUNT},
		[]string{domain.ColDate},
	)
	if agg.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("count crimes by month: %w", agg.Err)
	}

	counts := agg.Col(domain.ColDate + "_COUNT").Float()
	ints := make([]int, len(counts))
	for i, c := range counts {
		ints[i] = int(math.Round(c))
	}
	out := dataframe.New(
		agg.Col(domain.ColMonth),
		series.New(ints, series.Int, domain.ColCrimeCount),
	).Arrange(dataframe.Sort(domain.ColMonth))
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("count crimes by month: %w", out.Err)
	}
	return out, nil
}

// MonthlyWeather reduces daily weather to mean temperature, total rainfall and
// mean wind per month. An empty table gives an empty summary.
func MonthlyWeather(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if df.Nrow() == 0 {
		return emptyWeatherSummary(), nil
	}
	agg := df.GroupBy(domain.ColMonth).Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_MEAN, dataframe.Aggregation_SUM, dataframe.Aggregation_MEAN},
		[]string{domain.ColTemperatureCAvg, domain.ColPrecmm, domain.ColWindkmhInt},
	)
	if agg.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("summarise weather by month: %w", agg.Err)
	}
	out := dataframe.New(
		agg.Col(domain.ColMonth),
		series.New(agg.Col(domain.ColTemperatureCAvg+"_MEAN").Float(), series.Float, domain.ColAvgTemp),
		series.New(agg.Col(domain.ColPrecmm+"_SUM").Float(), series.Float, domain.ColTotalRain),
		series.New(agg.Col(domain.ColWindkmhInt+"_MEAN").Float(), series.Float, domain.ColAvgWind),
	).Arrange(dataframe.Sort(domain.ColMonth))
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("summarise weather by month: %w", out.Err)
	}
	return out, nil
}

func emptyWeatherSummary() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{}, series.String, domain.ColMonth),
		series.New([]float64{}, series.Float, domain.ColAvgTemp),
		series.New([]float64{}, series.Float, domain.ColTotalRain),
		series.New([]float64{}, series.Float, domain.ColAvgWind),
	)
}

// Merge left-joins monthly crime counts with monthly weather. Every crime
// month appears exactly once; weather columns are NaN where no weather month
// matches.
func Merge(crimeMonthly, weatherMonthly dataframe.DataFrame) (dataframe.DataFrame, error) {
	if crimeMonthly.Nrow() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: no crime months to join", domain.ErrEmptyAggregate)
	}

	var joined dataframe.DataFrame
	if weatherMonthly.Nrow() == 0 {
		n := crimeMonthly.Nrow()
		joined = crimeMonthly.CBind(dataframe.New(
			series.New(nanSlice(n), series.Float, domain.ColAvgTemp),
			series.New(nanSlice(n), series.Float, domain.ColTotalRain),
			series.New(nanSlice(n), series.Float, domain.ColAvgWind),
		))
	} else {
		joined = crimeMonthly.LeftJoin(weatherMonthly, domain.ColMonth)
	}
	if joined.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("join monthly tables: %w", joined.Err)
	}

	out := joined.
		Select(append([]string{domain.ColMonth}, domain.MonthlyColumns...)).
		Arrange(dataframe.Sort(domain.ColMonth))
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("join monthly tables: %w", out.Err)
	}
	if out.Nrow() != crimeMonthly.Nrow() {
		return dataframe.DataFrame{}, fmt.Errorf("join monthly tables: %d crime months became %d rows", crimeMonthly.Nrow(), out.Nrow())
	}
	return out, nil
}

// MergedRecords converts a merged frame to records, mapping NaN weather cells to nil.
func MergedRecords(df dataframe.DataFrame) []domain.MergedMonthlyRecord {
	months := df.Col(domain.ColMonth).Records()
	counts := df.Col(domain.ColCrimeCount).Float()
	temp := nullable(df.Col(domain.ColAvgTemp))
	rain := nullable(df.Col(domain.ColTotalRain))
	wind := nullable(df.Col(domain.ColAvgWind))

	out := make([]domain.MergedMonthlyRecord, len(months))
	for i, m := range months {
		out[i] = domain.MergedMonthlyRecord{
			Month:      m,
			CrimeCount: int(math.Round(counts[i])),
			AvgTemp:    temp[i],
			TotalRain:  rain[i],
			AvgWind:    wind[i],
		}
	}
	return out
}

func crimeSummaries(df dataframe.DataFrame) []domain.MonthlyCrimeSummary {
	months := df.Col(domain.ColMonth).Records()
	counts := df.Col(domain.ColCrimeCount).Float()
	out := make([]domain.MonthlyCrimeSummary, len(months))
	for i, m := range months {
		out[i] = domain.MonthlyCrimeSummary{Month: m, CrimeCount: int(math.Round(counts[i]))}
	}
	return out
}

func weatherSummaries(df dataframe.DataFrame) []domain.MonthlyWeatherSummary {
	months := df.Col(domain.ColMonth).Records()
	temp := df.Col(domain.ColAvgTemp).Float()
	rain := df.Col(domain.ColTotalRain).Float()
	wind := df.Col(domain.ColAvgWind).Float()
	out := make([]domain.MonthlyWeatherSummary, len(months))
	for i, m := range months {
		out[i] = domain.MonthlyWeatherSummary{Month: m, AvgTemp: temp[i], TotalRain: rain[i], AvgWind: wind[i]}
	}
	return out
}

func nullable(s series.Series) []*float64 {
	nan := s.IsNaN()
	vals := s.Float()
	out := make([]*float64, len(vals))
	for i, v := range vals {
		if nan[i] || math.IsNaN(v) {
			continue
		}
		out[i] = &vals[i]
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
