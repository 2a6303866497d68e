package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKDE_IntegratesToOne(t *testing.T) {
	values := []float64{11.2, 12.5, 13.1, 13.4, 13.9, 14.6, 15.0, 16.8}

	curve, h := kde(values)
	require.Len(t, curve, densityPoints)
	assert.Greater(t, h, 0.0)

	var area float64
	for i := 1; i < len(curve); i++ {
		area += (curve[i].X - curve[i-1].X) * (curve[i].Y + curve[i-1].Y) / 2
	}
	assert.InDelta(t, 1.0, area, 0.01)
}

func TestSilvermanBandwidth_ConstantSample(t *testing.T) {
	assert.InDelta(t, 1.0, silvermanBandwidth([]float64{5, 5, 5}), 1e-12)
}

func TestMovingAverage(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	assert.Equal(t, values, movingAverage(values, 1))
	assert.InDeltaSlice(t, []float64{20, 25, 30, 35, 40}, movingAverage(values, 5), 1e-12)
}

func TestJitter_DeterministicAndBounded(t *testing.T) {
	for i := 0; i < 100; i++ {
		j := jitter(i)
		assert.GreaterOrEqual(t, j, -jitterWidth/2)
		assert.Less(t, j, jitterWidth/2)
		assert.Equal(t, j, jitter(i))
	}
	assert.NotEqual(t, jitter(1), jitter(2))
}

func TestFitTrend(t *testing.T) {
	tr, err := fitTrend([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	require.NoError(t, err)
	assert.InDelta(t, 2, tr.Slope, 1e-9)
	assert.InDelta(t, 1, tr.Intercept, 1e-9)
	assert.InDelta(t, 1, tr.RSquared, 1e-9)
	assert.InDelta(t, 11, tr.At(5), 1e-9)

	_, err = fitTrend([]float64{1}, []float64{2})
	require.Error(t, err)
	_, err = fitTrend([]float64{2, 2}, []float64{1, 3})
	require.Error(t, err)
}

func TestPearson_PairwiseComplete(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	r, n := pearson([]*float64{f(1), f(2), nil, f(4)}, []*float64{f(2), f(4), f(5), nil})
	assert.Equal(t, 2, n)
	assert.InDelta(t, 1, r, 1e-9)

	r, n = pearson([]*float64{f(1), nil}, []*float64{f(2), f(3)})
	assert.Equal(t, 1, n)
	assert.True(t, math.IsNaN(r))

	r, _ = pearson([]*float64{f(1), f(1), f(1)}, []*float64{f(2), f(3), f(4)})
	assert.True(t, math.IsNaN(r), "constant column")
}

func TestCluster(t *testing.T) {
	points := []MapPoint{
		{Lat: 52.631, Long: -1.131, Category: "burglary"},
		{Lat: 52.633, Long: -1.133, Category: "shoplifting"},
		{Lat: 52.635, Long: -1.135, Category: "shoplifting"},
		{Lat: 52.671, Long: -1.171, Category: "burglary"},
	}

	got := cluster(points, 0.01)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, "shoplifting", got[0].TopCategory)
	assert.InDelta(t, 52.633, got[0].Lat, 1e-9)
	assert.InDelta(t, -1.133, got[0].Long, 1e-9)
	assert.Equal(t, 1, got[1].Count)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Violent Crime", Label("violent-crime"))
	assert.Equal(t, "Anti Social Behaviour", Label("anti-social-behaviour"))
	assert.Equal(t, "Under Investigation", Label("Under investigation"))
	assert.Equal(t, "Crime Count", Label("crime_count"))
}
