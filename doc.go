// Package go1dash is an operator console for a teleoperated ground robot.
//
// It samples a gamepad and the keyboard, arbitrates them into a velocity
// command published at a fixed rate, and draws the robot's lidar scan and
// the live gamepad state in the terminal.
//
// # Installation
//
//	go install github.com/al1y3vk/go1dash/cmd/go1dash@latest
//
// # Usage
//
// Check the gamepad and write go1dash.json:
//
//	go1dash setup
//
// Then drive:
//
//	go1dash teleoperate
//
// Render a saved scan without a robot:
//
//	go1dash snapshot scan.json -o scan.png
//
// # Packages
//
//   - cmd/go1dash: CLI with setup, teleoperate and snapshot commands
//   - cmd/gamepad-info: live readout of the first gamepad
//   - pkg/input: keyboard and gamepad sampling
//   - pkg/teleop: command arbitration and the publish loop
//   - pkg/scan: lidar scan buffering, projection and rendering
//   - pkg/padview: gamepad diagram
//   - pkg/session: robot session interface and the simulated robot
//   - pkg/robot: velocity commands, speed limits and configuration
package go1dash
