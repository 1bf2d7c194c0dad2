package teleop

import (
	"fmt"
	"math"

	"github.com/al1y3vk/go1dash/pkg/input"
	"github.com/al1y3vk/go1dash/pkg/robot"
)

// Command sources.
const (
	SourceGamepad      = "Gamepad"
	SourceGamepadTurbo = "Gamepad (turbo)"
	SourceKeyboard     = "Keyboard"
)

// StatusIdle is reported while the robot is not being driven.
const StatusIdle = "Idle"

// KeyReader is the read side of a held-key set.
type KeyReader interface {
	Has(key string) bool
	Len() int
}

// Decision is the outcome of one arbitration tick.
type Decision struct {
	Command  robot.VelocityCommand
	Source   string // empty when no device governs
	Transmit bool
	Status   string
}

// Arbiter turns device snapshots into velocity commands. It carries only
// the zero classification of the previous transmitted tick and is not safe
// for concurrent use.
type Arbiter struct {
	limits   robot.Limits
	deadband float64

	lastWasZero bool
	status      string
}

// NewArbiter returns an arbiter at rest.
func NewArbiter(limits robot.Limits, deadband float64) *Arbiter {
	return &Arbiter{
		limits:      limits,
		deadband:    deadband,
		lastWasZero: true,
		status:      StatusIdle,
	}
}

// Moving reports whether the last transmitted command was non-zero.
func (a *Arbiter) Moving() bool {
	return !a.lastWasZero
}

// Stopped records that an explicit stop was sent outside Step.
func (a *Arbiter) Stopped() {
	a.lastWasZero = true
	a.status = StatusIdle
}

// Deadband returns v, or exactly 0 when |v| is below threshold.
func Deadband(v, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

// Step runs one tick against the current device state.
func (a *Arbiter) Step(gp input.DeviceSnapshot, keys KeyReader) Decision {
	var (
		cmd    robot.VelocityCommand
		source string
	)
	switch {
	case gp.Connected && gp.Button(input.ButtonLB):
		cmd, source = a.gamepad(gp)
	case keys != nil && keys.Len() > 0:
		cmd, source = a.keyboard(keys), SourceKeyboard
	}

	d := Decision{Command: cmd, Source: source}
	isZero := cmd.IsZero()
	if !(isZero && a.lastWasZero) {
		a.lastWasZero = isZero
		d.Transmit = true
		if isZero {
			a.status = StatusIdle
		} else {
			a.status = fmt.Sprintf("%s  %s", source, cmd)
		}
	}
	d.Status = a.status
	return d
}

func (a *Arbiter) gamepad(gp input.DeviceSnapshot) (robot.VelocityCommand, string) {
	turbo := gp.Button(input.ButtonRB)
	cmd := robot.NewVelocityCommand(
		a.inverted(gp.Axis(input.AxisLeftY), a.limits.Forward.Scale(turbo)),
		a.inverted(gp.Axis(input.AxisLeftX), a.limits.Strafe.Scale(turbo)),
		a.inverted(gp.Axis(input.AxisRightX), a.limits.Yaw.Scale(turbo)),
	)
	if turbo {
		return cmd, SourceGamepadTurbo
	}
	return cmd, SourceGamepad
}

// inverted maps a stick axis to a velocity of opposite sign.
func (a *Arbiter) inverted(v, scale float64) float64 {
	v = Deadband(v, a.deadband)
	if v == 0 {
		// no negative zero in status text
		return 0
	}
	return -v * scale
}

// keyboard applies keys in a fixed order; a later key on the same axis wins.
func (a *Arbiter) keyboard(keys KeyReader) robot.VelocityCommand {
	if keys.Has(input.KeySpace) {
		return robot.VelocityCommand{}
	}
	var fwd, strafe, yaw float64
	if keys.Has(input.KeyW) || keys.Has(input.KeyArrowUp) {
		fwd = a.limits.Forward.Base
	}
	if keys.Has(input.KeyS) || keys.Has(input.KeyArrowDown) {
		fwd = -a.limits.Forward.Base
	}
	if keys.Has(input.KeyA) {
		strafe = a.limits.Strafe.Base
	}
	if keys.Has(input.KeyD) {
		strafe = -a.limits.Strafe.Base
	}
	if keys.Has(input.KeyJ) || keys.Has(input.KeyArrowLeft) {
		yaw = a.limits.Yaw.Base
	}
	if keys.Has(input.KeyL) || keys.Has(input.KeyArrowRight) {
		yaw = -a.limits.Yaw.Base
	}
	return robot.NewVelocityCommand(fwd, strafe, yaw)
}
