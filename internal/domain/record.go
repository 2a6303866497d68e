package domain

import "github.com/go-gota/gota/dataframe"

// Dataset names used in logs, metrics labels and error messages.
const (
	DatasetCrime   = "crime"
	DatasetWeather = "weather"
)

// Crime extract columns.
const (
	ColDate            = "date"
	ColCategory        = "category"
	ColOutcomeStatus   = "outcome_status"
	ColContext         = "context"
	ColLocationSubtype = "location_subtype"
	ColPersistentID    = "persistent_id"
	ColLat             = "lat"
	ColLong            = "long"
	ColLocationType    = "location_type"
	ColStreetName      = "street_name"
)

// Weather extract columns. The source spells the date column "Date"; the
// loader renames it to ColDate so both datasets share the key.
const (
	ColWeatherDate     = "Date"
	ColTemperatureCAvg = "TemperatureCAvg"
	ColPrecmm          = "Precmm"
	ColWindkmhInt      = "WindkmhInt"
	ColLowClOct        = "lowClOct"
	ColPreselevHp      = "PreselevHp"
	ColSnowDepcm       = "SnowDepcm"
)

// ColMonth is the derived year-month join key.
const ColMonth = "month"

// UnknownOutcome replaces a missing outcome_status.
const UnknownOutcome = "Unknown"

// Monthly table columns, in display order.
const (
	ColCrimeCount = "crime_count"
	ColAvgTemp    = "avg_temp"
	ColTotalRain  = "total_rain"
	ColAvgWind    = "avg_wind"
)

// MonthlyColumns lists the numeric columns of the merged monthly table.
var MonthlyColumns = []string{ColCrimeCount, ColAvgTemp, ColTotalRain, ColAvgWind}

// RequiredCrimeColumns must be present in the crime extract.
var RequiredCrimeColumns = []string{
	ColDate, ColCategory, ColOutcomeStatus, ColContext,
	ColLocationSubtype, ColPersistentID, ColLat, ColLong,
}

// RequiredWeatherColumns must be present in the weather extract, before the
// date column is renamed.
var RequiredWeatherColumns = []string{
	ColWeatherDate, ColTemperatureCAvg, ColPrecmm, ColWindkmhInt,
	ColLowClOct, ColPreselevHp, ColSnowDepcm,
}

// Datasets holds the two tables produced by the loader.
type Datasets struct {
	Crime   dataframe.DataFrame
	Weather dataframe.DataFrame
}

// HasColumn reports whether df carries a column with the given name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// CrimeRecord is one reported incident after cleaning.
type CrimeRecord struct {
	Date          string  `json:"date"`
	Category      string  `json:"category"`
	OutcomeStatus string  `json:"outcome_status"`
	Lat           float64 `json:"lat"`
	Long          float64 `json:"long"`
}

// WeatherRecord is one calendar day after cleaning.
type WeatherRecord struct {
	Date            string  `json:"date"`
	TemperatureCAvg float64 `json:"TemperatureCAvg"`
	Precmm          float64 `json:"Precmm"`
	WindkmhInt      float64 `json:"WindkmhInt"`
	LowClOct        float64 `json:"lowClOct"`
}

// MonthlyCrimeSummary counts incidents per month.
type MonthlyCrimeSummary struct {
	Month      string `json:"month"`
	CrimeCount int    `json:"crime_count"`
}

// MonthlyWeatherSummary reduces daily weather to one row per month.
type MonthlyWeatherSummary struct {
	Month     string  `json:"month"`
	AvgTemp   float64 `json:"avg_temp"`
	TotalRain float64 `json:"total_rain"`
	AvgWind   float64 `json:"avg_wind"`
}

// MergedMonthlyRecord is one crime month left-joined with its weather month.
// Weather fields are nil when the weather extract has no matching month.
type MergedMonthlyRecord struct {
	Month      string   `json:"month"`
	CrimeCount int      `json:"crime_count"`
	AvgTemp    *float64 `json:"avg_temp"`
	TotalRain  *float64 `json:"total_rain"`
	AvgWind    *float64 `json:"avg_wind"`
}

// HasWeather reports whether the month matched a weather month.
func (r MergedMonthlyRecord) HasWeather() bool {
	return r.AvgTemp != nil || r.TotalRain != nil || r.AvgWind != nil
}

// Value returns the named monthly column as a float and whether it is present.
func (r MergedMonthlyRecord) Value(column string) (float64, bool) {
	switch column {
	case ColCrimeCount:
		return float64(r.CrimeCount), true
	case ColAvgTemp:
		return deref(r.AvgTemp)
	case ColTotalRain:
		return deref(r.TotalRain)
	case ColAvgWind:
		return deref(r.AvgWind)
	default:
		return 0, false
	}
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}
