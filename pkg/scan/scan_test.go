package scan

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

var square = Viewport{Width: 200, Height: 200, PixelRatio: 1}

func TestProject_Ahead(t *testing.T) {
	r := &Reading{Ranges: []float64{1.0}, RangeMax: 5}
	points := Project(r, square, 3)
	scale := square.Scale(3)

	test.That(t, scale, test.ShouldAlmostEqual, 30.0)
	test.That(t, points, test.ShouldHaveLength, 1)
	test.That(t, points[0].X, test.ShouldAlmostEqual, 100.0)
	test.That(t, points[0].Y, test.ShouldAlmostEqual, 100.0-1.0*scale)
}

func TestProject_Clockwise(t *testing.T) {
	r := &Reading{AngleMin: math.Pi / 2, AngleIncrement: math.Pi / 2, Ranges: []float64{2, 2}, RangeMax: 5}
	points := Project(r, square, 2)
	scale := square.Scale(2)

	// +90 degrees is to the right on screen, +180 is behind
	test.That(t, points[0].X, test.ShouldAlmostEqual, 100+2*scale)
	test.That(t, points[0].Y, test.ShouldAlmostEqual, 100.0)
	test.That(t, points[1].X, test.ShouldAlmostEqual, 100.0)
	test.That(t, points[1].Y, test.ShouldAlmostEqual, 100+2*scale)
}

func TestProject_Filtering(t *testing.T) {
	r := &Reading{
		RangeMin: 0.2,
		RangeMax: 5,
		Ranges:   []float64{math.NaN(), 5.01, 0.2, math.Inf(1), 0.1, 5, math.Inf(-1)},
	}
	points := Project(r, square, 5)
	test.That(t, points, test.ShouldHaveLength, 2)

	scale := square.Scale(5)
	test.That(t, points[0].Y, test.ShouldAlmostEqual, 100-0.2*scale)
	test.That(t, points[1].Y, test.ShouldAlmostEqual, 100-5*scale)
}

func TestProject_EmptyViewport(t *testing.T) {
	r := &Reading{Ranges: []float64{1}, RangeMax: 5}
	test.That(t, Project(r, Viewport{}, 3), test.ShouldBeNil)
	test.That(t, Project(r, Viewport{Width: 100}, 3), test.ShouldBeNil)
	test.That(t, Project(nil, square, 3), test.ShouldBeNil)
	test.That(t, Viewport{}.Scale(3), test.ShouldEqual, 0.0)
}

func TestNewViewport(t *testing.T) {
	vp := NewViewport(320, 200, 2)
	test.That(t, vp, test.ShouldResemble, Viewport{Width: 640, Height: 400, PixelRatio: 2})
	test.That(t, vp.Center(), test.ShouldResemble, r2.Point{X: 320, Y: 200})
	test.That(t, vp.Scale(4), test.ShouldAlmostEqual, 200*0.9/4)

	test.That(t, NewViewport(10, 10, 0).PixelRatio, test.ShouldEqual, 1.0)
}

func TestReading_JSON(t *testing.T) {
	data := []byte(`{"angle_min": -3.14, "angle_increment": 0.0174, "range_min": 0.15,
		"range_max": 12, "ranges": [1.5, null, 2.25]}`)

	var r Reading
	test.That(t, json.Unmarshal(data, &r), test.ShouldBeNil)
	test.That(t, r.AngleMin, test.ShouldEqual, -3.14)
	test.That(t, r.RangeMax, test.ShouldEqual, 12.0)
	test.That(t, r.Ranges, test.ShouldHaveLength, 3)
	test.That(t, math.IsNaN(r.Ranges[1]), test.ShouldBeTrue)
	test.That(t, r.InRange(r.Ranges[1]), test.ShouldBeFalse)
	test.That(t, r.Angle(2), test.ShouldAlmostEqual, -3.14+2*0.0174)

	out, err := json.Marshal(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldContainSubstring, `"ranges":[1.5,null,2.25]`)
}

func TestLoadReading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	test.That(t, os.WriteFile(path, []byte(`{"range_max": 5, "ranges": [1, 2]}`), 0644), test.ShouldBeNil)

	r, err := LoadReading(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Ranges, test.ShouldResemble, []float64{1, 2})

	test.That(t, os.WriteFile(path, []byte(`[`), 0644), test.ShouldBeNil)
	_, err = LoadReading(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "parse scan")
}

func TestBuffer_Rate(t *testing.T) {
	clk := clock.NewMock()
	b := NewBuffer(clk)
	test.That(t, b.Latest(), test.ShouldBeNil)

	for i := 0; i < 10; i++ {
		clk.Add(100 * time.Millisecond)
		b.Update(&Reading{Ranges: make([]float64, i+1)})
	}
	test.That(t, b.Rate(), test.ShouldAlmostEqual, 10.0, 0.01)
	test.That(t, b.Latest().Ranges, test.ShouldHaveLength, 10)

	points, hz := b.Stats()
	test.That(t, points, test.ShouldEqual, 10)
	test.That(t, hz, test.ShouldAlmostEqual, 10.0, 0.01)

	// a silent second decays the rate to zero
	clk.Add(time.Second)
	test.That(t, b.Rate(), test.ShouldEqual, 0.0)
}

func TestBuffer_Bursty(t *testing.T) {
	clk := clock.NewMock()
	b := NewBuffer(clk)

	for i := 0; i < 4; i++ {
		b.Update(&Reading{})
	}
	test.That(t, b.Rate(), test.ShouldEqual, 0.0)

	clk.Add(2 * time.Second)
	b.Update(&Reading{})
	test.That(t, b.Rate(), test.ShouldAlmostEqual, 2.5)
}

func TestRenderState_Zoom(t *testing.T) {
	st := RenderState{ZoomMeters: 1}
	st.ZoomIn()
	test.That(t, st.ZoomMeters, test.ShouldEqual, 0.5)
	st.ZoomIn()
	test.That(t, st.ZoomMeters, test.ShouldEqual, 0.5)

	st = RenderState{ZoomMeters: 9.5}
	st.ZoomOut()
	st.ZoomOut()
	test.That(t, st.ZoomMeters, test.ShouldEqual, 10.0)

	st.TogglePoints()
	st.ToggleFill()
	test.That(t, st.ShowPoints, test.ShouldBeTrue)
	test.That(t, st.ShowFill, test.ShouldBeTrue)
	test.That(t, NewRenderState(st.Config()), test.ShouldResemble, st)
}
