package scan

import (
	"math"

	"github.com/golang/geo/r2"
)

// margin keeps the outer ring inside the viewport edge.
const margin = 0.9

// Viewport is the drawing surface in device pixels.
type Viewport struct {
	Width, Height int
	PixelRatio    float64
}

// NewViewport sizes a viewport from container dimensions and pixel density.
func NewViewport(width, height int, pixelRatio float64) Viewport {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	return Viewport{
		Width:      int(math.Round(float64(width) * pixelRatio)),
		Height:     int(math.Round(float64(height) * pixelRatio)),
		PixelRatio: pixelRatio,
	}
}

// Empty reports whether nothing can be drawn.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Center returns the robot's position on screen.
func (v Viewport) Center() r2.Point {
	return r2.Point{X: float64(v.Width) / 2, Y: float64(v.Height) / 2}
}

// Scale returns pixels per meter so that zoom meters reach the inner edge.
func (v Viewport) Scale(zoom float64) float64 {
	if v.Empty() || zoom <= 0 {
		return 0
	}
	c := v.Center()
	return math.Min(c.X, c.Y) * margin / zoom
}

// Project converts the drawable beams of r to screen coordinates, in beam order.
// Beams that are non-finite or outside [RangeMin, RangeMax] are dropped.
func Project(r *Reading, v Viewport, zoom float64) []r2.Point {
	if r == nil || v.Empty() || zoom <= 0 {
		return nil
	}
	c := v.Center()
	scale := v.Scale(zoom)
	points := make([]r2.Point, 0, len(r.Ranges))
	for i, d := range r.Ranges {
		if !r.InRange(d) {
			continue
		}
		a := r.Angle(i)
		points = append(points, r2.Point{
			X: c.X + d*math.Sin(a)*scale,
			Y: c.Y - d*math.Cos(a)*scale,
		})
	}
	return points
}
