package scan

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func rgbAt(img image.Image, x, y int) color.NRGBA {
	r, g, b, _ := img.At(x, y).RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
}

var (
	red        = color.NRGBA{R: 0xff, G: 0x52, B: 0x52, A: 255}
	green      = color.NRGBA{R: 0x00, G: 0xe6, B: 0x76, A: 255}
	background = color.NRGBA{R: 0x0a, G: 0x0a, B: 0x1a, A: 255}
)

func TestRenderer_UnsizedIsNoop(t *testing.T) {
	r := NewRenderer()
	test.That(t, r.Draw(&Reading{Ranges: []float64{1}, RangeMax: 5}, RenderState{ZoomMeters: 3}), test.ShouldBeNil)

	r.Resize(0, 100, 1)
	test.That(t, r.Draw(nil, RenderState{ZoomMeters: 3}), test.ShouldBeNil)
}

func TestRenderer_Placeholder(t *testing.T) {
	r := NewRenderer()
	r.Resize(200, 200, 1)

	img := r.Draw(nil, RenderState{ZoomMeters: 3, ShowPoints: true})
	test.That(t, img, test.ShouldNotBeNil)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 200, 200))
	test.That(t, rgbAt(img, 5, 5), test.ShouldResemble, background)
	// no robot marker without data
	test.That(t, rgbAt(img, 100, 100), test.ShouldNotResemble, red)
}

func TestRenderer_PointsAndRobot(t *testing.T) {
	r := NewRenderer()
	r.Resize(200, 200, 1)
	reading := &Reading{Ranges: []float64{1.0}, RangeMax: 5}

	img := r.Draw(reading, RenderState{ZoomMeters: 3, ShowPoints: true})
	test.That(t, rgbAt(img, 100, 100), test.ShouldResemble, red)
	// one meter ahead at 30 px/m
	test.That(t, rgbAt(img, 100, 70), test.ShouldResemble, green)

	img = r.Draw(reading, RenderState{ZoomMeters: 3})
	test.That(t, rgbAt(img, 100, 70), test.ShouldNotResemble, green)
}

func TestRenderer_Fill(t *testing.T) {
	r := NewRenderer()
	r.Resize(200, 200, 1)
	// a triangle around the robot, drawn without points
	reading := &Reading{AngleIncrement: 2.0943951, Ranges: []float64{2, 2, 2}, RangeMax: 5}

	filled := rgbAt(r.Draw(reading, RenderState{ZoomMeters: 3, ShowFill: true}), 110, 110)
	test.That(t, filled, test.ShouldNotResemble, background)
	test.That(t, filled.G, test.ShouldBeGreaterThan, background.G)

	empty := rgbAt(r.Draw(reading, RenderState{ZoomMeters: 3}), 110, 110)
	test.That(t, empty, test.ShouldResemble, background)
}

func TestRenderer_ResizeHonoursPixelRatio(t *testing.T) {
	r := NewRenderer()
	r.Resize(100, 50, 2)
	test.That(t, r.Viewport(), test.ShouldResemble, Viewport{Width: 200, Height: 100, PixelRatio: 2})

	img := r.Draw(nil, RenderState{ZoomMeters: 1})
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 200)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 100)
}

func TestRenderer_SavePNG(t *testing.T) {
	r := NewRenderer()
	path := filepath.Join(t.TempDir(), "scan.png")
	test.That(t, r.SavePNG(path), test.ShouldNotBeNil)

	r.Resize(64, 48, 1)
	r.Draw(&Reading{Ranges: []float64{1}, RangeMax: 5}, RenderState{ZoomMeters: 2, ShowPoints: true})
	test.That(t, r.SavePNG(path), test.ShouldBeNil)

	f, err := os.Open(path)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()
	img, err := png.Decode(f)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 64, 48))
}
