package report

import (
	"strings"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var columnLabels = map[string]string{
	domain.ColCrimeCount:      "Crime Count",
	domain.ColAvgTemp:         "Average Temperature (°C)",
	domain.ColTotalRain:       "Total Rainfall (mm)",
	domain.ColAvgWind:         "Average Wind (km/h)",
	domain.ColTemperatureCAvg: "Daily Average Temperature (°C)",
	domain.ColPrecmm:          "Daily Rainfall (mm)",
	domain.ColOutcomeStatus:   "Outcome Status",
	domain.ColLocationType:    "Location Type",
}

var separators = strings.NewReplacer("-", " ", "_", " ")

// Label turns a column name or category code into display text, so
// "violent-crime" becomes "Violent Crime".
func Label(s string) string {
	if l, ok := columnLabels[s]; ok {
		return l
	}
	return cases.Title(language.English).String(separators.Replace(s))
}
