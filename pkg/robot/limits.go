package robot

import (
	"github.com/pkg/errors"
)

// AxisLimit holds the two fixed magnitudes of a velocity component.
type AxisLimit struct {
	Base  float64 `json:"base"`
	Turbo float64 `json:"turbo"`
}

// Limits holds the velocity magnitudes for each commanded component.
type Limits struct {
	Forward AxisLimit `json:"forward"` // m/s
	Strafe  AxisLimit `json:"strafe"`  // m/s
	Yaw     AxisLimit `json:"yaw"`     // rad/s
}

// DefaultLimits returns the stock limits of the robot. Turbo is twice the base magnitude.
func DefaultLimits() Limits {
	return Limits{
		Forward: AxisLimit{Base: 0.5, Turbo: 1.0},
		Strafe:  AxisLimit{Base: 0.4, Turbo: 0.8},
		Yaw:     AxisLimit{Base: 1.0, Turbo: 2.0},
	}
}

// Scale returns the magnitude to use for this tick.
func (a AxisLimit) Scale(turbo bool) float64 {
	if turbo {
		return a.Turbo
	}
	return a.Base
}

func (a AxisLimit) validate(name string) error {
	if a.Base <= 0 || a.Turbo <= 0 {
		return errors.Errorf("%s limits must be positive, got base=%v turbo=%v", name, a.Base, a.Turbo)
	}
	return nil
}

// Validate ensures every magnitude is usable.
func (l Limits) Validate() error {
	if err := l.Forward.validate("forward"); err != nil {
		return err
	}
	if err := l.Strafe.validate("strafe"); err != nil {
		return err
	}
	return l.Yaw.validate("yaw")
}
