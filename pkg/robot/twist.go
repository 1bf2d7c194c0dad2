// Package robot describes the ground robot as seen from the operator console:
// the velocity command it accepts, its speed limits and the console
// configuration.
package robot

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// VelocityCommand is a body-frame velocity request.
// Linear.X is forward/back and Linear.Y is strafe (m/s), Angular.Z is yaw rate (rad/s).
// The remaining components are always zero for a ground robot.
type VelocityCommand struct {
	Linear  r3.Vector `json:"linear"`
	Angular r3.Vector `json:"angular"`
}

// NewVelocityCommand builds a command from its three planar components.
func NewVelocityCommand(forward, strafe, yaw float64) VelocityCommand {
	return VelocityCommand{
		Linear:  r3.Vector{X: forward, Y: strafe},
		Angular: r3.Vector{Z: yaw},
	}
}

// Forward returns the forward/back speed in m/s.
func (c VelocityCommand) Forward() float64 { return c.Linear.X }

// Strafe returns the sideways speed in m/s, positive to the left.
func (c VelocityCommand) Strafe() float64 { return c.Linear.Y }

// Yaw returns the yaw rate in rad/s, positive counter-clockwise.
func (c VelocityCommand) Yaw() float64 { return c.Angular.Z }

// IsZero reports whether all three planar components are exactly zero.
func (c VelocityCommand) IsZero() bool {
	return c.Linear.X == 0 && c.Linear.Y == 0 && c.Angular.Z == 0
}

func (c VelocityCommand) String() string {
	return fmt.Sprintf("fwd=%.2f strafe=%.2f yaw=%.2f", c.Forward(), c.Strafe(), c.Yaw())
}
