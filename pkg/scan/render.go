package scan

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/al1y3vk/go1dash/pkg/robot"
)

// RenderState holds the user-adjustable view parameters.
type RenderState struct {
	ZoomMeters float64
	ShowPoints bool
	ShowFill   bool
}

// NewRenderState restores view settings from the config.
func NewRenderState(cfg robot.LidarConfig) RenderState {
	return RenderState{ZoomMeters: cfg.ZoomMeters, ShowPoints: cfg.ShowPoints, ShowFill: cfg.ShowFill}
}

// Config returns the settings in their persisted form.
func (s RenderState) Config() robot.LidarConfig {
	return robot.LidarConfig{ZoomMeters: s.ZoomMeters, ShowPoints: s.ShowPoints, ShowFill: s.ShowFill}
}

// ZoomIn shows less distance, down to robot.MinZoom.
func (s *RenderState) ZoomIn() {
	s.ZoomMeters = math.Max(robot.MinZoom, s.ZoomMeters-robot.ZoomStep)
}

// ZoomOut shows more distance, up to robot.MaxZoom.
func (s *RenderState) ZoomOut() {
	s.ZoomMeters = math.Min(robot.MaxZoom, s.ZoomMeters+robot.ZoomStep)
}

func (s *RenderState) TogglePoints() { s.ShowPoints = !s.ShowPoints }

func (s *RenderState) ToggleFill() { s.ShowFill = !s.ShowFill }

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	colorBackground  = mustHex("#0a0a1a")
	colorRing        = mustHex("#1a2a3a")
	colorLabel       = mustHex("#333344")
	colorAxis        = mustHex("#222233")
	colorPlaceholder = mustHex("#555566")
	colorPoint       = mustHex("#00e676")
	colorRobot       = mustHex("#ff5252")
	colorFill        = color.NRGBA{R: 0, G: 200, B: 120, A: 20}
)

// Placeholder is drawn while no reading has arrived.
const Placeholder = "No scan data"

var regularFont, _ = truetype.Parse(goregular.TTF)

func fontFace(size float64) font.Face {
	if regularFont == nil {
		return nil
	}
	return truetype.NewFace(regularFont, &truetype.Options{Size: size})
}

// Renderer draws readings onto a reusable surface sized to the viewport.
type Renderer struct {
	vp Viewport
	dc *gg.Context

	labelFace       font.Face
	placeholderFace font.Face
}

// NewRenderer returns a renderer with no surface; Draw is a no-op until Resize.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Resize recreates the surface for a container of width x height at pixelRatio.
func (r *Renderer) Resize(width, height int, pixelRatio float64) {
	vp := NewViewport(width, height, pixelRatio)
	if vp == r.vp && r.dc != nil {
		return
	}
	r.vp = vp
	if vp.Empty() {
		r.dc = nil
		return
	}
	r.dc = gg.NewContext(vp.Width, vp.Height)
	r.labelFace = fontFace(11 * vp.PixelRatio)
	r.placeholderFace = fontFace(14 * vp.PixelRatio)
}

// SavePNG writes the last drawn frame to path.
func (r *Renderer) SavePNG(path string) error {
	if r.dc == nil {
		return errors.New("nothing drawn yet")
	}
	return errors.Wrapf(r.dc.SavePNG(path), "save %s", path)
}

// Viewport returns the current surface size.
func (r *Renderer) Viewport() Viewport {
	return r.vp
}

// Draw paints reading under st and returns the surface. The image is reused
// by the next Draw. It returns nil while the viewport has no area.
func (r *Renderer) Draw(reading *Reading, st RenderState) image.Image {
	if r.dc == nil || r.vp.Empty() || st.ZoomMeters <= 0 {
		return nil
	}
	dc := r.dc
	w, h := float64(r.vp.Width), float64(r.vp.Height)
	dpr := r.vp.PixelRatio
	c := r.vp.Center()
	scale := r.vp.Scale(st.ZoomMeters)

	dc.SetColor(colorBackground)
	dc.Clear()

	// range rings
	dc.SetLineWidth(1)
	if r.labelFace != nil {
		dc.SetFontFace(r.labelFace)
	}
	for m := 1.0; m <= st.ZoomMeters; m++ {
		dc.SetColor(colorRing)
		dc.DrawCircle(c.X, c.Y, m*scale)
		dc.Stroke()
		dc.SetColor(colorLabel)
		dc.DrawString(fmt.Sprintf("%gm", m), c.X+m*scale+3, c.Y-3)
	}

	dc.SetColor(colorAxis)
	dc.DrawLine(0, c.Y, w, c.Y)
	dc.DrawLine(c.X, 0, c.X, h)
	dc.Stroke()

	if reading == nil {
		if r.placeholderFace != nil {
			dc.SetFontFace(r.placeholderFace)
		}
		dc.SetColor(colorPlaceholder)
		dc.DrawStringAnchored(Placeholder, c.X, c.Y+30*dpr, 0.5, 0)
		return dc.Image()
	}

	points := Project(reading, r.vp, st.ZoomMeters)

	// beam order, not a hull: concave scans may self-intersect
	if st.ShowFill && len(points) > 2 {
		dc.MoveTo(points[0].X, points[0].Y)
		for _, p := range points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		dc.SetColor(colorFill)
		dc.Fill()
	}

	if st.ShowPoints {
		dc.SetColor(colorPoint)
		size := math.Max(1.5, 3*dpr/2)
		for _, p := range points {
			dc.DrawCircle(p.X, p.Y, size)
		}
		dc.Fill()
	}

	dc.SetColor(colorRobot)
	dc.DrawCircle(c.X, c.Y, 5*dpr)
	dc.Fill()
	dc.SetLineWidth(2)
	dc.DrawLine(c.X, c.Y, c.X, c.Y-15*dpr)
	dc.Stroke()

	return dc.Image()
}
