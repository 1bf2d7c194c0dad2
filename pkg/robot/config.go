package robot

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
)

const DefaultConfigFile = "go1dash.json"

// Zoom bounds of the lidar view, in meters.
const (
	MinZoom  = 0.5
	MaxZoom  = 10.0
	ZoomStep = 0.5
)

// Config holds the console configuration
type Config struct {
	Teleop  TeleopConfig  `json:"teleop"`
	Gamepad GamepadConfig `json:"gamepad"`
	Lidar   LidarConfig   `json:"lidar"`
	Display DisplayConfig `json:"display"`
	Session SessionConfig `json:"session"`
}

// TeleopConfig configures command arbitration
type TeleopConfig struct {
	PeriodMs  int     `json:"period_ms"`
	Deadband  float64 `json:"deadband"`
	KeyHoldMs int     `json:"key_hold_ms"`
	Limits    Limits  `json:"limits"`
}

// GamepadConfig selects the input device
type GamepadConfig struct {
	DeviceDir string `json:"device_dir"`
	Mapping   string `json:"mapping"`
}

// LidarConfig holds the persisted view settings of the scan panel
type LidarConfig struct {
	ZoomMeters float64 `json:"zoom_m"`
	ShowPoints bool    `json:"show_points"`
	ShowFill   bool    `json:"show_fill"`
}

// DisplayConfig describes the refresh signal and pixel density of the display
type DisplayConfig struct {
	FPS        int     `json:"fps"`
	PixelRatio float64 `json:"pixel_ratio"`
}

// SessionConfig selects the robot session
type SessionConfig struct {
	Kind   string  `json:"kind"`
	ScanHz float64 `json:"scan_hz"`
}

// Gamepad mappings understood by the joystick source.
const (
	MappingXpad     = "xpad"
	MappingStandard = "standard"
)

// SessionSim is the only built-in session: a simulated robot.
const SessionSim = "sim"

// Defaults returns the stock configuration
func Defaults() *Config {
	return &Config{
		Teleop: TeleopConfig{
			PeriodMs:  100,
			Deadband:  0.08,
			KeyHoldMs: 600,
			Limits:    DefaultLimits(),
		},
		Gamepad: GamepadConfig{
			DeviceDir: "/dev/input",
			Mapping:   MappingXpad,
		},
		Lidar: LidarConfig{
			ZoomMeters: 3,
			ShowPoints: true,
		},
		Display: DisplayConfig{
			FPS:        30,
			PixelRatio: 1,
		},
		Session: SessionConfig{
			Kind:   SessionSim,
			ScanHz: 10,
		},
	}
}

// Period returns the arbitration period
func (t TeleopConfig) Period() time.Duration {
	return time.Duration(t.PeriodMs) * time.Millisecond
}

// KeyHold returns how long a terminal key stays held without a repeat
func (t TeleopConfig) KeyHold() time.Duration {
	return time.Duration(t.KeyHoldMs) * time.Millisecond
}

// FrameInterval returns the time between two display frames
func (d DisplayConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(d.FPS)
}

// Validate checks the configuration for values the console cannot run with
func (c *Config) Validate() error {
	if c.Display.FPS <= 0 {
		return errors.Errorf("display.fps must be positive, got %d", c.Display.FPS)
	}
	if c.Display.PixelRatio < 1 || c.Display.PixelRatio > 4 {
		return errors.Errorf("display.pixel_ratio must be within [1, 4], got %v", c.Display.PixelRatio)
	}
	if c.Teleop.Period() < c.Display.FrameInterval() {
		return errors.Errorf("teleop.period_ms (%d) must not be shorter than one frame (%v)",
			c.Teleop.PeriodMs, c.Display.FrameInterval())
	}
	if c.Teleop.Deadband < 0 || c.Teleop.Deadband >= 1 {
		return errors.Errorf("teleop.deadband must be within [0, 1), got %v", c.Teleop.Deadband)
	}
	if c.Teleop.KeyHoldMs <= 0 {
		return errors.Errorf("teleop.key_hold_ms must be positive, got %d", c.Teleop.KeyHoldMs)
	}
	if err := c.Teleop.Limits.Validate(); err != nil {
		return errors.Wrap(err, "teleop.limits")
	}
	switch c.Gamepad.Mapping {
	case MappingXpad, MappingStandard:
	default:
		return errors.Errorf("gamepad.mapping %q is not one of %q, %q", c.Gamepad.Mapping, MappingXpad, MappingStandard)
	}
	if z := c.Lidar.ZoomMeters; z < MinZoom || z > MaxZoom || math.Mod(z, ZoomStep) != 0 {
		return errors.Errorf("lidar.zoom_m must be a multiple of %v within [%v, %v], got %v", ZoomStep, MinZoom, MaxZoom, z)
	}
	if c.Session.Kind != SessionSim {
		return errors.Errorf("session.kind %q is not supported", c.Session.Kind)
	}
	if c.Session.ScanHz <= 0 {
		return errors.Errorf("session.scan_hz must be positive, got %v", c.Session.ScanHz)
	}
	return nil
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file.
// Fields absent from the file keep their default value.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
