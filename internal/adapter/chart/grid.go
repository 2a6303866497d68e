package chart

import (
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/crime-weather-report/internal/report"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const pairsFile = "pairs.png"

// tileSize is the side of one panel of the pair grid.
const tileSize = 6 * vg.Centimeter

// savePairGrid draws a scatter-plot matrix of the monthly measures. The
// diagonal holds a histogram of each measure.
func savePairGrid(g report.PairGrid, path string) error {
	n := len(g.Columns)
	if n == 0 {
		return errors.New("pair grid has no columns")
	}

	plots := make([][]*plot.Plot, n)
	for i := range plots {
		plots[i] = make([]*plot.Plot, n)
		for j := range plots[i] {
			p, err := pairPanel(g, i, j)
			if err != nil {
				return fmt.Errorf("panel %s/%s: %w", g.Columns[i], g.Columns[j], err)
			}
			plots[i][j] = p
		}
	}

	img := vgimg.New(vg.Length(n)*tileSize, vg.Length(n)*tileSize)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      n,
		Cols:      n,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func pairPanel(g report.PairGrid, i, j int) (*plot.Plot, error) {
	p := plot.New()
	if i == len(g.Columns)-1 {
		p.X.Label.Text = report.Label(g.Columns[j])
	}
	if j == 0 {
		p.Y.Label.Text = report.Label(g.Columns[i])
	}

	pts := xys(g.Cells[i][j])
	if len(pts) == 0 {
		p.HideAxes()
		p.Title.Text = "no data"
		return p, nil
	}

	if i == j && distinct(pts) >= 2 {
		vals := make(plotter.Values, len(pts))
		for k, pt := range pts {
			vals[k] = pt.X
		}
		h, err := plotter.NewHist(vals, 5)
		if err != nil {
			return nil, err
		}
		h.FillColor = plotutil.Color(2)
		p.Add(h)
		return p, nil
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2)
	s.GlyphStyle.Color = plotutil.Color(0)
	p.Add(s)
	return p, nil
}

func distinct(pts plotter.XYs) int {
	seen := make(map[float64]struct{}, len(pts))
	for _, pt := range pts {
		seen[pt.X] = struct{}{}
	}
	return len(seen)
}
