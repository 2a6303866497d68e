package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthKey(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{"month granular", "2024-07", "2024-07"},
		{"calendar day", "2024-05-31", "2024-05"},
		{"timestamp", "2024-01-01 00:00:00", "2024-01"},
		{"rfc3339", "2024-12-31T23:00:00Z", "2024-12"},
		{"day first", "15/03/2024", "2024-03"},
		{"slashes", "2024/11/02", "2024-11"},
		{"surrounding space", " 2024-02 ", "2024-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthKey(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMonthKey_Invalid(t *testing.T) {
	for _, in := range []string{"", "July", "2024-13-01", "NaN"} {
		_, err := MonthKey(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrSchemaMismatch), in)
	}
}

func TestMonthKeys_ReportsRow(t *testing.T) {
	_, err := MonthKeys([]string{"2024-01-01", "2024-01-02", "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestMergedMonthlyRecord_Value(t *testing.T) {
	temp := 13.4
	r := MergedMonthlyRecord{Month: "2024-05", CrimeCount: 568, AvgTemp: &temp}

	v, ok := r.Value(ColCrimeCount)
	assert.True(t, ok)
	assert.Equal(t, 568.0, v)

	v, ok = r.Value(ColAvgTemp)
	assert.True(t, ok)
	assert.InDelta(t, 13.4, v, 1e-9)

	_, ok = r.Value(ColTotalRain)
	assert.False(t, ok)
	_, ok = r.Value("nope")
	assert.False(t, ok)

	assert.True(t, r.HasWeather())
	assert.False(t, MergedMonthlyRecord{Month: "2024-06"}.HasWeather())
}

func TestNow_UsesClock(t *testing.T) {
	fixed := time.Date(2024, time.August, 1, 9, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	assert.Equal(t, fixed, Now())
}

func TestHasColumn(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"2024-01"}, series.String, ColDate),
		series.New([]float64{5.2}, series.Float, ColTemperatureCAvg),
	)
	assert.True(t, HasColumn(df, ColDate))
	assert.True(t, HasColumn(df, ColTemperatureCAvg))
	assert.False(t, HasColumn(df, ColPrecmm))
	assert.False(t, HasColumn(dataframe.DataFrame{}, ColDate))
}
