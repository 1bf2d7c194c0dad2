// Package padview draws a gamepad diagram from a device snapshot. Map is a
// pure function of the snapshot; nothing is remembered between calls.
package padview

import (
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/al1y3vk/go1dash/pkg/input"
)

// Diagram space, as in the 580x410 artwork starting at y=85.
const (
	Width   = 580.0
	Height  = 410.0
	originY = 85.0

	// StickRange is the thumb displacement in diagram pixels at full deflection.
	StickRange = 28.0
)

var (
	leftStickCenter  = r2.Point{X: 142, Y: 211}
	rightStickCenter = r2.Point{X: 365, Y: 300}
)

// Stick is one analog stick as drawn.
type Stick struct {
	Center  r2.Point
	Thumb   r2.Point
	Pressed bool
}

// Diagram is everything Paint needs. Each button highlight is independent.
type Diagram struct {
	LeftStick  Stick
	RightStick Stick
	Buttons    [input.StandardButtons]bool
}

// Pressed reports whether button i is highlighted.
func (d Diagram) Pressed(i int) bool {
	if i < 0 || i >= len(d.Buttons) {
		return false
	}
	return d.Buttons[i]
}

// Map converts a snapshot into a diagram. It returns false when the device is
// disconnected, in which case nothing should be drawn.
func Map(s input.DeviceSnapshot) (Diagram, bool) {
	if !s.Connected {
		return Diagram{}, false
	}
	d := Diagram{
		LeftStick:  stick(s, input.AxisLeftX, input.AxisLeftY, leftStickCenter, input.ButtonLeftStick),
		RightStick: stick(s, input.AxisRightX, input.AxisRightY, rightStickCenter, input.ButtonRightStick),
	}
	for i := range d.Buttons {
		d.Buttons[i] = s.Button(i)
	}
	return d, true
}

func stick(s input.DeviceSnapshot, xAxis, yAxis int, center r2.Point, click int) Stick {
	return Stick{
		Center:  center,
		Thumb:   center.Add(r2.Point{X: s.Axis(xAxis), Y: s.Axis(yAxis)}.Mul(StickRange)),
		Pressed: s.Button(click),
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	colorActive    = mustHex("#00e676")
	colorActiveDim = color.NRGBA{R: 0, G: 230, B: 118, A: 115}
	colorBody      = mustHex("#2a2a3a")
	colorOutline   = mustHex("#3a4a5a")
	colorWell      = mustHex("#1a1a2a")
	colorThumb     = mustHex("#333345")
	colorThumbRim  = mustHex("#4a4a5a")
	colorIdle      = mustHex("#1e1e30")
	colorLabel     = mustHex("#555566")
	colorDark      = mustHex("#1a1a2a")
	colorWhite     = mustHex("#ffffff")
)

type shape int

const (
	circle shape = iota
	pill
	overlay // idle shape stays, highlight is drawn on top
)

type control struct {
	button     int
	shape      shape
	x, y, w, h float64 // circles: centre x,y and radius w
	radius     float64
	label      string
	labelY     float64
	on         color.Color
	labelOn    color.Color
}

var controls = []control{
	{button: input.ButtonY, shape: circle, x: 438, y: 174, w: 19, label: "Y", labelY: 180, on: mustHex("#ffd600"), labelOn: colorDark},
	{button: input.ButtonX, shape: circle, x: 399, y: 212, w: 19, label: "X", labelY: 218, on: mustHex("#2979ff"), labelOn: colorWhite},
	{button: input.ButtonB, shape: circle, x: 479, y: 212, w: 19, label: "B", labelY: 218, on: mustHex("#ff1744"), labelOn: colorWhite},
	{button: input.ButtonA, shape: circle, x: 438, y: 252, w: 19, label: "A", labelY: 258, on: colorActive, labelOn: colorDark},
	{button: input.ButtonBack, shape: circle, x: 249, y: 212, w: 10, on: colorActive},
	{button: input.ButtonStart, shape: circle, x: 332, y: 212, w: 10, on: colorActive},
	{button: input.ButtonGuide, shape: circle, x: 290, y: 148, w: 15, on: colorWhite},
	{button: input.ButtonLB, shape: pill, x: 95, y: 120, w: 80, h: 18, radius: 9, label: "LB", labelY: 133, on: colorActive, labelOn: colorDark},
	{button: input.ButtonRB, shape: pill, x: 400, y: 120, w: 80, h: 18, radius: 9, label: "RB", labelY: 133, on: colorActive, labelOn: colorDark},
	{button: input.ButtonLT, shape: overlay, x: 110, y: 98, w: 55, h: 16, radius: 5, label: "LT", labelY: 110, on: colorActiveDim, labelOn: colorActive},
	{button: input.ButtonRT, shape: overlay, x: 415, y: 98, w: 55, h: 16, radius: 5, label: "RT", labelY: 110, on: colorActiveDim, labelOn: colorActive},
}

// d-pad highlight cells, drawn over the cross
var dpad = []control{
	{button: input.ButtonDpadUp, x: 209, y: 270, w: 14, h: 22, radius: 2},
	{button: input.ButtonDpadDown, x: 209, y: 308, w: 14, h: 22, radius: 2},
	{button: input.ButtonDpadLeft, x: 187, y: 292, w: 22, h: 14, radius: 2},
	{button: input.ButtonDpadRight, x: 225, y: 292, w: 22, h: 14, radius: 2},
}

// Paint draws d centred in dc, scaled to fit.
func Paint(dc *gg.Context, d Diagram) {
	w, h := float64(dc.Width()), float64(dc.Height())
	if w <= 0 || h <= 0 {
		return
	}
	s := w / Width
	if h/Height < s {
		s = h / Height
	}

	dc.Push()
	defer dc.Pop()
	dc.Translate((w-Width*s)/2, (h-Height*s)/2)
	dc.Scale(s, s)
	dc.Translate(0, -originY)

	paintBody(dc)
	paintStick(dc, d.LeftStick)
	paintStick(dc, d.RightStick)

	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(207, 270, 18, 60, 3)
	dc.DrawRoundedRectangle(187, 290, 60, 18, 3)
	dc.SetColor(colorIdle)
	dc.FillPreserve()
	dc.SetColor(colorOutline)
	dc.Stroke()
	for _, c := range dpad {
		if d.Pressed(c.button) {
			dc.DrawRoundedRectangle(c.x, c.y, c.w, c.h, c.radius)
			dc.SetColor(colorActiveDim)
			dc.Fill()
		}
	}

	for _, c := range controls {
		paintControl(dc, c, d.Pressed(c.button))
	}
}

func paintBody(dc *gg.Context) {
	// grips, then the upper shell
	dc.DrawEllipse(110, 380, 85, 110)
	dc.DrawEllipse(470, 380, 85, 110)
	dc.DrawRoundedRectangle(30, 110, 520, 250, 90)
	dc.SetColor(colorBody)
	dc.Fill()
}

func paintStick(dc *gg.Context, st Stick) {
	dc.SetLineWidth(2)
	dc.DrawCircle(st.Center.X, st.Center.Y, 49)
	dc.SetColor(colorOutline)
	dc.Stroke()
	dc.DrawCircle(st.Center.X, st.Center.Y, 42)
	dc.SetColor(colorWell)
	dc.Fill()

	dc.SetLineWidth(1.5)
	dc.DrawCircle(st.Thumb.X, st.Thumb.Y, 22)
	if st.Pressed {
		dc.SetColor(colorActive)
	} else {
		dc.SetColor(colorThumb)
	}
	dc.FillPreserve()
	dc.SetColor(colorThumbRim)
	dc.Stroke()
}

func (c control) path(dc *gg.Context) {
	if c.shape == circle {
		dc.DrawCircle(c.x, c.y, c.w)
		return
	}
	dc.DrawRoundedRectangle(c.x, c.y, c.w, c.h, c.radius)
}

func paintControl(dc *gg.Context, c control, pressed bool) {
	var face color.Color = colorIdle
	if pressed && c.shape != overlay {
		face = c.on
	}
	c.path(dc)
	dc.SetColor(face)
	dc.SetLineWidth(1.5)
	dc.FillPreserve()
	dc.SetColor(colorOutline)
	dc.Stroke()

	if pressed && c.shape == overlay {
		c.path(dc)
		dc.SetColor(c.on)
		dc.Fill()
	}

	if c.label == "" {
		return
	}
	dc.SetColor(colorLabel)
	if pressed {
		dc.SetColor(c.labelOn)
	}
	cx := c.x
	if c.shape != circle {
		cx = c.x + c.w/2
	}
	dc.DrawStringAnchored(c.label, cx, c.labelY, 0.5, 0)
}
