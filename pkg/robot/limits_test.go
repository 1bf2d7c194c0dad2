package robot

import (
	"testing"

	"go.viam.com/test"
)

func TestAxisLimit_Scale(t *testing.T) {
	tests := []struct {
		limit AxisLimit
		turbo bool
		want  float64
	}{
		{AxisLimit{Base: 0.5, Turbo: 1.0}, false, 0.5},
		{AxisLimit{Base: 0.5, Turbo: 1.0}, true, 1.0},
		{AxisLimit{Base: 0.4, Turbo: 0.8}, true, 0.8},
	}

	for _, tt := range tests {
		test.That(t, tt.limit.Scale(tt.turbo), test.ShouldEqual, tt.want)
	}
}

func TestDefaultLimits_TurboDoubles(t *testing.T) {
	l := DefaultLimits()
	for _, a := range []AxisLimit{l.Forward, l.Strafe, l.Yaw} {
		test.That(t, a.Turbo, test.ShouldEqual, 2*a.Base)
	}
	test.That(t, l.Validate(), test.ShouldBeNil)
}

func TestLimits_Validate(t *testing.T) {
	l := DefaultLimits()
	l.Strafe.Turbo = 0
	err := l.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "strafe")

	l = DefaultLimits()
	l.Yaw.Base = -1
	test.That(t, l.Validate(), test.ShouldNotBeNil)
}

func TestVelocityCommand(t *testing.T) {
	c := NewVelocityCommand(0.5, -0.4, 0)
	test.That(t, c.Forward(), test.ShouldEqual, 0.5)
	test.That(t, c.Strafe(), test.ShouldEqual, -0.4)
	test.That(t, c.Yaw(), test.ShouldEqual, 0.0)
	test.That(t, c.IsZero(), test.ShouldBeFalse)
	test.That(t, c.String(), test.ShouldEqual, "fwd=0.50 strafe=-0.40 yaw=0.00")

	test.That(t, NewVelocityCommand(0, 0, 0).IsZero(), test.ShouldBeTrue)
	test.That(t, NewVelocityCommand(0, 0, 1e-9).IsZero(), test.ShouldBeFalse)
}
