package domain

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order when deriving a month key. The crime
// extract is already month-granular; weather rows carry a calendar date.
var dateLayouts = []string{
	"2006-01",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2006/01/02",
}

// MonthKey truncates a date string to its "YYYY-MM" month key.
func MonthKey(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", fmt.Errorf("%w: empty date", ErrSchemaMismatch)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01"), nil
		}
	}
	return "", fmt.Errorf("%w: unrecognised date %q", ErrSchemaMismatch, date)
}

// MonthKeys derives a month key for every date, failing on the first
// unparsable value with its row index.
func MonthKeys(dates []string) ([]string, error) {
	keys := make([]string, len(dates))
	for i, d := range dates {
		k, err := MonthKey(d)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		keys[i] = k
	}
	return keys, nil
}
