// Command validate re-derives the monthly table from the raw crime and
// weather CSV extracts, independently of the report pipeline's dataframe
// code, and checks it against the monthly.json the report wrote. It verifies
// the crime count round trip, join completeness, and the weather aggregates
// with missing rainfall read as zero.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -crime data/crime.csv \
//	  -weather data/weather.csv \
//	  -monthly report/monthly.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/crime-weather-report/internal/adapter/site"
	"github.com/couchcryptid/crime-weather-report/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// weatherMonth accumulates one month of daily weather.
type weatherMonth struct {
	tempSum, windSum, rain float64
	days                   int
}

func main() {
	crimePath := flag.String("crime", "", "path to the crime CSV extract")
	weatherPath := flag.String("weather", "", "path to the weather CSV extract")
	monthlyPath := flag.String("monthly", "", "path to the report's monthly.json")
	flag.Parse()

	if *crimePath == "" || *weatherPath == "" || *monthlyPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*crimePath, *weatherPath, *monthlyPath); code != 0 {
		os.Exit(code)
	}
}

func run(crimePath, weatherPath, monthlyPath string) int {
	fmt.Println("=== Crime and Weather Report Validation ===")
	fmt.Println()

	crime, err := loadCSV(crimePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load crime CSV: %v\n", err)
		return 1
	}
	weather, err := loadCSV(weatherPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load weather CSV: %v\n", err)
		return 1
	}
	doc, err := loadMonthly(monthlyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load monthly JSON: %v\n", err)
		return 1
	}

	counts, err := crimeCounts(crime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: derive crime counts: %v\n", err)
		return 1
	}
	months, err := weatherMonths(weather)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: derive weather months: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCountRoundTrip(doc.Monthly, counts, len(crime)),
		validateJoinCompleteness(doc.Monthly, counts),
		validateWeather(doc.Monthly, months),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d crime rows, %d weather days, %d monthly rows (run %s)\n",
		len(crime), len(weather), len(doc.Monthly), doc.RunID)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// csvRow is a parsed CSV row with field values keyed by header name.
type csvRow struct {
	lineNum int
	fields  map[string]string
}

func loadCSV(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	header := all[0]
	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[h] = strings.TrimSpace(row[j])
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, fields: fields})
	}
	return rows, nil
}

func loadMonthly(path string) (site.Monthly, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return site.Monthly{}, err
	}
	var doc site.Monthly
	if err := json.Unmarshal(data, &doc); err != nil {
		return site.Monthly{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// ── Independent derivation ──

func crimeCounts(rows []csvRow) (map[string]int, error) {
	counts := make(map[string]int)
	for _, r := range rows {
		m, err := domain.MonthKey(r.fields[domain.ColDate])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
		}
		counts[m]++
	}
	return counts, nil
}

func weatherMonths(rows []csvRow) (map[string]*weatherMonth, error) {
	months := make(map[string]*weatherMonth)
	for _, r := range rows {
		m, err := domain.MonthKey(r.fields[domain.ColWeatherDate])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
		}
		temp, err := parseNumber(r.fields[domain.ColTemperatureCAvg])
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", r.lineNum, domain.ColTemperatureCAvg, err)
		}
		wind, err := parseNumber(r.fields[domain.ColWindkmhInt])
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", r.lineNum, domain.ColWindkmhInt, err)
		}
		rain := 0.0
		if v := r.fields[domain.ColPrecmm]; !isMissing(v) {
			if rain, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", r.lineNum, domain.ColPrecmm, err)
			}
		}

		wm, ok := months[m]
		if !ok {
			wm = &weatherMonth{}
			months[m] = wm
		}
		wm.tempSum += temp
		wm.windSum += wind
		wm.rain += rain
		wm.days++
	}
	return months, nil
}

func parseNumber(v string) (float64, error) {
	if isMissing(v) {
		return 0, errors.New("missing value")
	}
	return strconv.ParseFloat(v, 64)
}

func isMissing(v string) bool {
	switch v {
	case "", "NA", "NaN":
		return true
	}
	return false
}

// ── Phases ──

func validateCountRoundTrip(monthly []domain.MergedMonthlyRecord, counts map[string]int, rows int) *phase {
	p := &phase{name: "Crime count round trip"}
	fmt.Println("Checking crime counts against raw rows...")

	total := 0
	for _, r := range monthly {
		total += r.CrimeCount
		if want := counts[r.Month]; r.CrimeCount != want {
			p.errorf("%s: crime_count %d, raw rows %d", r.Month, r.CrimeCount, want)
		}
	}
	if total != rows {
		p.errorf("sum of crime_count %d != %d crime rows", total, rows)
	}
	return p
}

func validateJoinCompleteness(monthly []domain.MergedMonthlyRecord, counts map[string]int) *phase {
	p := &phase{name: "Join completeness"}
	fmt.Println("Checking every crime month appears exactly once...")

	seen := make(map[string]int, len(monthly))
	for i, r := range monthly {
		seen[r.Month]++
		if _, ok := counts[r.Month]; !ok {
			p.errorf("%s is in monthly.json but has no crime rows", r.Month)
		}
		if i > 0 && monthly[i-1].Month >= r.Month {
			p.errorf("rows out of order at %s", r.Month)
		}
	}
	want := make([]string, 0, len(counts))
	for m := range counts {
		want = append(want, m)
	}
	sort.Strings(want)
	for _, m := range want {
		if seen[m] != 1 {
			p.errorf("%s appears %d times, want 1", m, seen[m])
		}
	}
	return p
}

func validateWeather(monthly []domain.MergedMonthlyRecord, months map[string]*weatherMonth) *phase {
	p := &phase{name: "Weather aggregates (rain null as 0)"}
	fmt.Println("Recomputing monthly weather from daily rows...")

	for _, r := range monthly {
		wm, ok := months[r.Month]
		if !ok {
			if r.HasWeather() {
				p.errorf("%s has weather in monthly.json but no weather days", r.Month)
			}
			continue
		}
		days := float64(wm.days)
		checkField(p, r.Month, domain.ColAvgTemp, r.AvgTemp, wm.tempSum/days)
		checkField(p, r.Month, domain.ColTotalRain, r.TotalRain, wm.rain)
		checkField(p, r.Month, domain.ColAvgWind, r.AvgWind, wm.windSum/days)
	}
	return p
}

func checkField(p *phase, month, column string, got *float64, want float64) {
	if got == nil {
		p.errorf("%s: %s is null, recomputed %.4f", month, column, want)
		return
	}
	if !floatEq(*got, want) {
		p.errorf("%s: %s %.6f, recomputed %.6f", month, column, *got, want)
	}
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
