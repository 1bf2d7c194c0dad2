package padview

import (
	"image/color"
	"testing"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/al1y3vk/go1dash/pkg/input"
)

func snapshot(axes []float64, pressed ...int) input.DeviceSnapshot {
	s := input.DeviceSnapshot{Axes: axes, Buttons: make([]bool, input.StandardButtons), Connected: true}
	for _, b := range pressed {
		s.Buttons[b] = true
	}
	return s
}

func TestMap_Disconnected(t *testing.T) {
	_, ok := Map(input.DeviceSnapshot{Axes: []float64{1, 1}, Buttons: []bool{true}})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestMap_Sticks(t *testing.T) {
	d, ok := Map(snapshot([]float64{0.5, -1, 0, 1}, input.ButtonRightStick))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, d.LeftStick.Thumb, test.ShouldResemble, r2.Point{X: 142 + 14, Y: 211 - 28})
	test.That(t, d.LeftStick.Pressed, test.ShouldBeFalse)
	test.That(t, d.RightStick.Thumb, test.ShouldResemble, r2.Point{X: 365, Y: 300 + 28})
	test.That(t, d.RightStick.Pressed, test.ShouldBeTrue)
}

func TestMap_ShortDevice(t *testing.T) {
	d, ok := Map(input.DeviceSnapshot{Axes: []float64{-1}, Connected: true})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, d.LeftStick.Thumb, test.ShouldResemble, r2.Point{X: 142 - 28, Y: 211})
	test.That(t, d.RightStick.Thumb, test.ShouldResemble, d.RightStick.Center)
	for i := 0; i < input.StandardButtons; i++ {
		test.That(t, d.Pressed(i), test.ShouldBeFalse)
	}
}

func TestMap_IndependentHighlights(t *testing.T) {
	pressed := []int{
		input.ButtonA, input.ButtonB, input.ButtonX, input.ButtonY,
		input.ButtonLB, input.ButtonRT, input.ButtonDpadUp, input.ButtonDpadLeft, input.ButtonGuide,
	}
	d, _ := Map(snapshot(nil, pressed...))

	want := map[int]bool{}
	for _, b := range pressed {
		want[b] = true
	}
	for i := 0; i < input.StandardButtons; i++ {
		test.That(t, d.Pressed(i), test.ShouldEqual, want[i])
	}

	// recomputed from scratch on every call
	d, _ = Map(snapshot(nil))
	test.That(t, d.Pressed(input.ButtonA), test.ShouldBeFalse)
}

func probe(dc *gg.Context, x, y float64) color.NRGBA {
	r, g, b, _ := dc.Image().At(int(x), int(y-originY)).RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
}

func TestPaint(t *testing.T) {
	green := color.NRGBA{R: 0x00, G: 0xe6, B: 0x76, A: 255}
	idle := color.NRGBA{R: 0x1e, G: 0x1e, B: 0x30, A: 255}

	dc := gg.NewContext(int(Width), int(Height))
	d, _ := Map(snapshot(nil, input.ButtonA, input.ButtonLB))
	Paint(dc, d)

	// inside each shape, clear of its label
	test.That(t, probe(dc, 450, 252), test.ShouldResemble, green)
	test.That(t, probe(dc, 100, 129), test.ShouldResemble, green)
	test.That(t, probe(dc, 450, 212+2), test.ShouldNotResemble, green)
	test.That(t, probe(dc, 405, 129), test.ShouldResemble, idle)
}

func TestPaint_EmptyContext(t *testing.T) {
	d, _ := Map(snapshot(nil))
	Paint(gg.NewContext(0, 0), d)
}
