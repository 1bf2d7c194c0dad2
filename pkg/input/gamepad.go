package input

import (
	"fmt"
	"sync"
)

// Standard gamepad layout indices.
const (
	AxisLeftX  = 0
	AxisLeftY  = 1
	AxisRightX = 2
	AxisRightY = 3

	ButtonA          = 0
	ButtonB          = 1
	ButtonX          = 2
	ButtonY          = 3
	ButtonLB         = 4
	ButtonRB         = 5
	ButtonLT         = 6
	ButtonRT         = 7
	ButtonBack       = 8
	ButtonStart      = 9
	ButtonLeftStick  = 10
	ButtonRightStick = 11
	ButtonDpadUp     = 12
	ButtonDpadDown   = 13
	ButtonDpadLeft   = 14
	ButtonDpadRight  = 15
	ButtonGuide      = 16

	StandardAxes    = 4
	StandardButtons = 17
)

// DeviceSnapshot is the state of the gamepad in slot 0 at one sampling instant.
type DeviceSnapshot struct {
	Axes      []float64
	Buttons   []bool
	Connected bool
}

// Axis returns axis i, or 0 when the device does not report it.
func (s DeviceSnapshot) Axis(i int) float64 {
	if i < 0 || i >= len(s.Axes) {
		return 0
	}
	return s.Axes[i]
}

// Button returns whether button i is pressed, false when the device does not report it.
func (s DeviceSnapshot) Button(i int) bool {
	if i < 0 || i >= len(s.Buttons) {
		return false
	}
	return s.Buttons[i]
}

// Clone returns a deep copy.
func (s DeviceSnapshot) Clone() DeviceSnapshot {
	return DeviceSnapshot{
		Axes:      append([]float64(nil), s.Axes...),
		Buttons:   append([]bool(nil), s.Buttons...),
		Connected: s.Connected,
	}
}

// RawButton is a button as reported by the platform.
type RawButton struct {
	Pressed bool
	Value   float64
}

// RawGamepad is a connected device as reported by the platform.
type RawGamepad struct {
	Axes    []float64
	Buttons []RawButton
}

// A Source enumerates the platform's gamepads. Slot order is the platform's;
// empty slots are nil.
type Source interface {
	Gamepads() []*RawGamepad
}

// Sampler keeps the latest snapshot of the gamepad in slot 0.
// Poll is driven by the display's frame loop; Latest may be read from any goroutine.
type Sampler struct {
	src Source

	mu     sync.Mutex
	latest DeviceSnapshot
}

// NewSampler returns a sampler reading src.
func NewSampler(src Source) *Sampler {
	return &Sampler{src: src}
}

// Poll reads all devices once and publishes slot 0.
func (s *Sampler) Poll() {
	var snap DeviceSnapshot
	pads := s.src.Gamepads()
	if len(pads) > 0 && pads[0] != nil {
		gp := pads[0]
		snap = DeviceSnapshot{
			Axes:      append([]float64(nil), gp.Axes...),
			Buttons:   make([]bool, len(gp.Buttons)),
			Connected: true,
		}
		for i, b := range gp.Buttons {
			snap.Buttons[i] = b.Pressed
		}
	} else {
		snap = DeviceSnapshot{Axes: []float64{}, Buttons: []bool{}}
	}

	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
}

// Latest returns a copy of the most recent snapshot.
func (s *Sampler) Latest() DeviceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest.Clone()
}

var buttonNames = [StandardButtons]string{
	"A", "B", "X", "Y", "LB", "RB", "LT", "RT", "Back", "Start",
	"LS", "RS", "Up", "Down", "Left", "Right", "Guide",
}

var axisNames = [StandardAxes]string{"Left X", "Left Y", "Right X", "Right Y"}

// ButtonName returns the standard name of button i.
func ButtonName(i int) string {
	if i < 0 || i >= len(buttonNames) {
		return fmt.Sprintf("Button %d", i)
	}
	return buttonNames[i]
}

// AxisName returns the standard name of axis i.
func AxisName(i int) string {
	if i < 0 || i >= len(axisNames) {
		return fmt.Sprintf("Axis %d", i)
	}
	return axisNames[i]
}

// PressedNames lists the names of the pressed buttons in index order.
func (s DeviceSnapshot) PressedNames() []string {
	var names []string
	for i, pressed := range s.Buttons {
		if pressed {
			names = append(names, ButtonName(i))
		}
	}
	return names
}
