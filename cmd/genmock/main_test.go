package main

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Deterministic(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	gen := func() ([][]string, [][]string) {
		rng := rand.New(rand.NewPCG(7, 7))
		w := genWeather(rng, start, 3)
		return w, genCrime(rng, start, 3, w)
	}

	w1, c1 := gen()
	w2, c2 := gen()
	assert.Equal(t, w1, w2)
	assert.Equal(t, c1, c2)

	require.Len(t, w1, 31+29+31)
	for _, row := range w1 {
		assert.Len(t, row, len(weatherHeader))
		assert.NotEmpty(t, row[1], "average temperature is always present")
	}
	for _, row := range c1 {
		assert.Len(t, row, len(crimeHeader))
		assert.NotEmpty(t, row[3], "lat is always present")
	}
}

func TestPick(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		assert.Equal(t, 1, pick(rng, []float64{0, 1, 0}))
	}
}
