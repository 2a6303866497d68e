// Command genmock writes deterministic synthetic crime and weather extracts
// for local runs and demos. The same seed always produces byte-identical
// files. Missing values are injected at fixed rates so every cleaning rule
// has something to do.
//
// Usage:
//
//	go run ./cmd/genmock -out data -from 2023-01 -months 24
//	go run ./cmd/genmock -out data -weather-format xlsx
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Missing-value rates per column.
const (
	missingOutcome   = 0.12
	missingPrecip    = 0.05
	missingLowCloud  = 0.04
	missingPressure  = 0.10
	snowOnColdDays   = 0.2
	persistentIDRate = 0.85
)

var categories = []struct {
	name   string
	weight float64
	// heat scales how strongly the category follows temperature.
	heat float64
}{
	{"violent-crime", 0.32, 1.2},
	{"anti-social-behaviour", 0.18, 1.6},
	{"shoplifting", 0.14, 0.4},
	{"criminal-damage-arson", 0.08, 1.0},
	{"public-order", 0.08, 1.1},
	{"vehicle-crime", 0.06, 0.6},
	{"burglary", 0.05, 0.3},
	{"other-theft", 0.05, 0.8},
	{"drugs", 0.02, 0.9},
	{"bicycle-theft", 0.02, 1.8},
}

var outcomes = []string{
	"Under investigation",
	"Investigation complete; no suspect identified",
	"Unable to prosecute suspect",
	"Awaiting court outcome",
	"Local resolution",
}

var streets = []string{
	"On or near High Street",
	"On or near Mill Lane",
	"On or near Park Road",
	"On or near Shopping Area",
	"On or near Parking Area",
	"On or near Nightclub",
	"On or near Supermarket",
	"On or near Sports/Recreation Area",
}

// hotspots are the centres incidents scatter around.
var hotspots = []struct{ lat, long, weight float64 }{
	{52.6369, -1.1398, 0.45},
	{52.6240, -1.1250, 0.30},
	{52.6520, -1.1660, 0.25},
}

var (
	crimeHeader   = []string{"category", "persistent_id", "date", "lat", "long", "street_id", "street_name", "context", "id", "location_type", "location_subtype", "outcome_status"}
	weatherHeader = []string{"Date", "TemperatureCAvg", "TemperatureCMax", "TemperatureCMin", "HrAvg", "WindkmhInt", "WindkmhGust", "PreselevHp", "Precmm", "lowClOct", "SnowDepcm"}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data", "output directory")
	from := flag.String("from", "2023-01", "first month (YYYY-MM)")
	months := flag.Int("months", 24, "number of months")
	seed := flag.Uint64("seed", 20240501, "random seed")
	weatherFormat := flag.String("weather-format", "csv", "weather extract format: csv or xlsx")
	flag.Parse()

	start, err := time.Parse("2006-01", *from)
	if err != nil {
		return fmt.Errorf("invalid -from: %w", err)
	}
	if *months < 1 {
		return errors.New("-months must be at least 1")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))

	weather := genWeather(rng, start, *months)
	crime := genCrime(rng, start, *months, weather)

	crimePath := filepath.Join(*out, "crime.csv")
	if err := writeCSV(crimePath, crimeHeader, crime); err != nil {
		return fmt.Errorf("writing crime extract: %w", err)
	}
	log.Printf("wrote %s: %d incidents", crimePath, len(crime))

	var weatherPath string
	switch *weatherFormat {
	case "csv":
		weatherPath = filepath.Join(*out, "weather.csv")
		err = writeCSV(weatherPath, weatherHeader, weather)
	case "xlsx":
		weatherPath = filepath.Join(*out, "weather.xlsx")
		err = writeXLSX(weatherPath, weatherHeader, weather)
	default:
		return fmt.Errorf("unknown -weather-format %q", *weatherFormat)
	}
	if err != nil {
		return fmt.Errorf("writing weather extract: %w", err)
	}
	log.Printf("wrote %s: %d days", weatherPath, len(weather))
	return nil
}

// seasonal returns the climatological mean temperature for a day of year.
func seasonal(t time.Time) float64 {
	return 10.5 - 7*math.Cos(2*math.Pi*(float64(t.YearDay())-15)/365.25)
}

func genWeather(rng *rand.Rand, start time.Time, months int) [][]string {
	end := start.AddDate(0, months, 0)
	var rows [][]string
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		avg := seasonal(d) + rng.NormFloat64()*2.5
		spread := 3 + rng.Float64()*4
		wind := math.Max(2, 14+rng.NormFloat64()*6)

		precip := ""
		if rng.Float64() >= missingPrecip {
			p := 0.0
			if rng.Float64() < 0.45 {
				p = rng.ExpFloat64() * 3.5
			}
			precip = fmtFloat(p)
		}
		lowCloud := ""
		if rng.Float64() >= missingLowCloud {
			lowCloud = strconv.Itoa(rng.IntN(9))
		}
		pressure := ""
		if rng.Float64() >= missingPressure {
			pressure = fmtFloat(1013 + rng.NormFloat64()*9)
		}
		snow := ""
		if avg < 2 && rng.Float64() < snowOnColdDays {
			snow = strconv.Itoa(1 + rng.IntN(6))
		}

		rows = append(rows, []string{
			d.Format("2006-01-02"),
			fmtFloat(avg),
			fmtFloat(avg + spread/2),
			fmtFloat(avg - spread/2),
			strconv.Itoa(60 + rng.IntN(35)),
			fmtFloat(wind),
			fmtFloat(wind * (1.4 + rng.Float64()*0.6)),
			pressure,
			precip,
			lowCloud,
			snow,
		})
	}
	return rows
}

// genCrime draws a monthly incident count that rises with the month's mean
// temperature, then scatters the incidents over categories and hotspots.
func genCrime(rng *rand.Rand, start time.Time, months int, weather [][]string) [][]string {
	monthTemp := make(map[string][]float64)
	for _, w := range weather {
		key, _ := domain.MonthKey(w[0])
		t, _ := strconv.ParseFloat(w[1], 64)
		monthTemp[key] = append(monthTemp[key], t)
	}

	var rows [][]string
	id := 100000
	for m := 0; m < months; m++ {
		month := start.AddDate(0, m, 0).Format("2006-01")
		temp := mean(monthTemp[month])

		weights := make([]float64, len(categories))
		for i, c := range categories {
			weights[i] = c.weight * (1 + c.heat*temp/30)
		}
		n := int(420 + 9*temp + rng.NormFloat64()*25)

		for i := 0; i < n; i++ {
			id++
			cat := categories[pick(rng, weights)].name
			spot := hotspots[pickSpot(rng)]
			street := rng.IntN(len(streets))

			persistent := ""
			if cat != "anti-social-behaviour" && rng.Float64() < persistentIDRate {
				persistent = fmt.Sprintf("%016x", rng.Uint64())
			}
			outcome := ""
			if cat != "anti-social-behaviour" && rng.Float64() >= missingOutcome {
				outcome = outcomes[rng.IntN(len(outcomes))]
			}
			locType := "Force"
			if rng.Float64() < 0.03 {
				locType = "BTP"
			}

			rows = append(rows, []string{
				cat,
				persistent,
				month,
				strconv.FormatFloat(spot.lat+rng.NormFloat64()*0.006, 'f', 6, 64),
				strconv.FormatFloat(spot.long+rng.NormFloat64()*0.009, 'f', 6, 64),
				strconv.Itoa(1500000 + street),
				streets[street],
				"",
				strconv.Itoa(id),
				locType,
				"",
				outcome,
			})
		}
	}
	return rows
}

func pick(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

func pickSpot(rng *rand.Rand) int {
	weights := make([]float64, len(hotspots))
	for i, h := range hotspots {
		weights[i] = h.weight
	}
	return pick(rng, weights)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*10)/10, 'f', 1, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeXLSX writes the rows to the first sheet. Numeric cells are stored as
// numbers and missing cells are left empty.
func writeXLSX(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var val interface{} = v
			if c > 0 {
				if num, err := strconv.ParseFloat(v, 64); err == nil {
					val = num
				}
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
