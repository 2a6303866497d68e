package chart

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/crime-weather-report/internal/report"
	"github.com/couchcryptid/crime-weather-report/internal/report/reporttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRender_WritesEveryChart(t *testing.T) {
	r := reporttest.Sample(t)
	dir := t.TempDir()
	rend := NewRenderer(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	paths, err := rend.Render(context.Background(), r)
	require.NoError(t, err)

	names := Charts(r)
	require.Len(t, paths, len(names))
	assert.Contains(t, names, "location_types_dot.png")
	assert.Equal(t, pairsFile, names[len(names)-1])

	for i, name := range names {
		assert.Equal(t, filepath.Join(dir, Dir, name), paths[i])
		data, err := os.ReadFile(paths[i])
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(data, pngMagic), "%s is not a PNG", name)
	}
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rend := NewRenderer(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := rend.Render(ctx, reporttest.Sample(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCharts_WithoutLocationTypes(t *testing.T) {
	r := reporttest.Sample(t)
	r.LocationTypes = nil
	assert.NotContains(t, Charts(r), "location_types_dot.png")
}

func TestViolinOutline(t *testing.T) {
	density := []report.XY{{X: 1, Y: 0.1}, {X: 2, Y: 0.5}, {X: 3, Y: 0.2}}

	out := violinOutline(4, density)
	require.Len(t, out, 6)
	assert.InDelta(t, 4-violinHalfWidth, out[1].X, 1e-12, "peak reaches the half width")
	assert.InDelta(t, 4+violinHalfWidth, out[4].X, 1e-12)
	assert.InDelta(t, 2, out[1].Y, 1e-12)
	for i := range density {
		assert.InDelta(t, 4-out[i].X, out[len(out)-1-i].X-4, 1e-12, "symmetric about the month")
	}
}

func TestPie(t *testing.T) {
	p := newPie()
	require.NoError(t, p.add(1, color.Black))
	require.NoError(t, p.add(3, color.White))
	require.Error(t, p.add(-1, color.Black))
	require.Error(t, p.add(math.NaN(), color.Black))

	start, sweep := p.angles()
	require.Len(t, sweep, 2)
	assert.InDelta(t, math.Pi/2, start[0], 1e-12)
	assert.InDelta(t, -math.Pi/2, sweep[0], 1e-12)
	assert.InDelta(t, -3*math.Pi/2, sweep[1], 1e-12)
	assert.InDelta(t, start[0]+sweep[0], start[1], 1e-12)

	empty, _ := newPie().angles()
	assert.Empty(t, empty)
}
