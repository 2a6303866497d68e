package chart

import (
	"errors"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pie is a plot.Plotter drawing slices proportional to their values, starting
// at twelve o'clock and running clockwise.
type pie struct {
	values []float64
	colors []color.Color
	// Radius is a fraction of the smaller canvas side.
	radius float64
}

func newPie() *pie { return &pie{radius: 0.4} }

func (p *pie) add(v float64, c color.Color) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("pie slice must be a finite non-negative value")
	}
	p.values = append(p.values, v)
	p.colors = append(p.colors, c)
	return nil
}

// angles returns the start angle and sweep of each slice in radians.
func (p *pie) angles() (start, sweep []float64) {
	var total float64
	for _, v := range p.values {
		total += v
	}
	if total == 0 {
		return nil, nil
	}
	a := math.Pi / 2
	for _, v := range p.values {
		s := -2 * math.Pi * v / total
		start = append(start, a)
		sweep = append(sweep, s)
		a += s
	}
	return start, sweep
}

// Plot implements plot.Plotter.
func (p *pie) Plot(c draw.Canvas, _ *plot.Plot) {
	center := vg.Point{
		X: (c.Min.X + c.Max.X) / 2,
		Y: (c.Min.Y + c.Max.Y) / 2,
	}
	side := c.Max.X - c.Min.X
	if h := c.Max.Y - c.Min.Y; h < side {
		side = h
	}
	r := vg.Length(p.radius) * side

	start, sweep := p.angles()
	for i := range start {
		var path vg.Path
		path.Move(center)
		path.Arc(center, r, start[i], sweep[i])
		path.Close()
		c.SetColor(p.colors[i])
		c.Fill(path)
	}
}

// swatch is a legend thumbnail filled with one colour.
type swatch struct{ color color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonXY(pts))
}
