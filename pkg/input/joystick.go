package input

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
)

// Linux joystick API event (see linux/joystick.h).
const (
	jsEventSize   = 8
	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80

	// MaxSlots is the number of /dev/input/jsN devices watched.
	MaxSlots = 4

	reopenInterval = time.Second
	triggerPressed = 0.12
)

type jsEvent struct {
	Time   uint32 // ms
	Value  int16
	Type   uint8
	Number uint8
}

func decodeEvent(b []byte) jsEvent {
	return jsEvent{
		Time:   binary.LittleEndian.Uint32(b[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(b[4:6])),
		Type:   b[6],
		Number: b[7],
	}
}

// normalizeAxis converts a raw axis value to -1.0..1.0.
func normalizeAxis(raw int16) float64 {
	return math.Max(-1, float64(raw)/math.MaxInt16)
}

// joystickState is the raw kernel view of one device.
type joystickState struct {
	axes    []float64
	buttons []float64
}

func (s *joystickState) apply(ev jsEvent) {
	n := int(ev.Number)
	switch ev.Type &^ jsEventInit {
	case jsEventAxis:
		for len(s.axes) <= n {
			s.axes = append(s.axes, 0)
		}
		s.axes[n] = normalizeAxis(ev.Value)
	case jsEventButton:
		for len(s.buttons) <= n {
			s.buttons = append(s.buttons, 0)
		}
		s.buttons[n] = float64(ev.Value)
	}
}

// A Mapping converts a device's raw kernel axes and buttons into the standard layout.
type Mapping func(axes, buttons []float64) *RawGamepad

// MappingByName returns a mapping by its config name.
func MappingByName(name string) (Mapping, error) {
	switch name {
	case "xpad":
		return XpadMapping, nil
	case "standard":
		return StandardMapping, nil
	}
	return nil, errors.Errorf("unknown gamepad mapping %q", name)
}

// StandardMapping passes indices through for devices already in the standard layout.
func StandardMapping(axes, buttons []float64) *RawGamepad {
	gp := &RawGamepad{
		Axes:    append([]float64(nil), axes...),
		Buttons: make([]RawButton, len(buttons)),
	}
	for i, v := range buttons {
		gp.Buttons[i] = RawButton{Pressed: v > 0.5, Value: v}
	}
	return gp
}

// xpad kernel layout.
var xpadButtons = map[int]int{
	0:  ButtonA,
	1:  ButtonB,
	2:  ButtonX,
	3:  ButtonY,
	4:  ButtonLB,
	5:  ButtonRB,
	6:  ButtonBack,
	7:  ButtonStart,
	8:  ButtonGuide,
	9:  ButtonLeftStick,
	10: ButtonRightStick,
}

// XpadMapping converts the Linux xpad driver layout: axes LX LY LT RX RY RT HatX HatY.
func XpadMapping(axes, buttons []float64) *RawGamepad {
	at := func(i int) (float64, bool) {
		if i < len(axes) {
			return axes[i], true
		}
		return 0, false
	}
	gp := &RawGamepad{
		Axes:    make([]float64, StandardAxes),
		Buttons: make([]RawButton, StandardButtons),
	}
	gp.Axes[AxisLeftX], _ = at(0)
	gp.Axes[AxisLeftY], _ = at(1)
	gp.Axes[AxisRightX], _ = at(3)
	gp.Axes[AxisRightY], _ = at(4)

	for raw, std := range xpadButtons {
		if raw < len(buttons) {
			gp.Buttons[std] = RawButton{Pressed: buttons[raw] > 0.5, Value: buttons[raw]}
		}
	}

	// triggers rest at -1
	for raw, std := range map[int]int{2: ButtonLT, 5: ButtonRT} {
		if v, ok := at(raw); ok {
			value := (v + 1) / 2
			gp.Buttons[std] = RawButton{Pressed: value > triggerPressed, Value: value}
		}
	}

	hatX, _ := at(6)
	hatY, _ := at(7)
	gp.Buttons[ButtonDpadUp] = hatButton(hatY < -0.5)
	gp.Buttons[ButtonDpadDown] = hatButton(hatY > 0.5)
	gp.Buttons[ButtonDpadLeft] = hatButton(hatX < -0.5)
	gp.Buttons[ButtonDpadRight] = hatButton(hatX > 0.5)
	return gp
}

func hatButton(pressed bool) RawButton {
	if pressed {
		return RawButton{Pressed: true, Value: 1}
	}
	return RawButton{}
}

// JoystickSource reads /dev/input/js0../dev/input/js3 with the Linux joystick
// API. Devices may be plugged and unplugged at any time.
type JoystickSource struct {
	dir     string
	mapping Mapping
	logger  golog.Logger

	mu    sync.Mutex
	slots [MaxSlots]*RawGamepad

	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

// NewJoystickSource returns a source watching dir.
func NewJoystickSource(dir string, mapping Mapping, logger golog.Logger) *JoystickSource {
	return &JoystickSource{dir: dir, mapping: mapping, logger: logger}
}

// DevicePaths lists the joystick device nodes currently present in dir.
func DevicePaths(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "js[0-9]*"))
	if err != nil {
		return nil
	}
	return matches
}

// Start begins watching every slot in the background.
func (s *JoystickSource) Start(ctx context.Context) {
	cancelCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for slot := 0; slot < MaxSlots; slot++ {
		slot := slot
		s.activeBackgroundWorkers.Add(1)
		goutils.ManagedGo(func() {
			s.watch(cancelCtx, slot)
		}, s.activeBackgroundWorkers.Done)
	}
}

// Close stops all readers and waits for them to exit.
func (s *JoystickSource) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.activeBackgroundWorkers.Wait()
	return nil
}

// Gamepads returns the connected devices by slot.
func (s *JoystickSource) Gamepads() []*RawGamepad {
	s.mu.Lock()
	defer s.mu.Unlock()
	pads := make([]*RawGamepad, MaxSlots)
	copy(pads, s.slots[:])
	return pads
}

func (s *JoystickSource) setSlot(slot int, gp *RawGamepad) {
	s.mu.Lock()
	s.slots[slot] = gp
	s.mu.Unlock()
}

func (s *JoystickSource) watch(ctx context.Context, slot int) {
	path := filepath.Join(s.dir, fmt.Sprintf("js%d", slot))
	for ctx.Err() == nil {
		f, err := os.Open(path)
		if err == nil {
			s.logger.Infow("gamepad connected", "slot", slot, "path", path)
			err = s.read(ctx, slot, f)
			s.setSlot(slot, nil)
			if ctx.Err() != nil {
				return
			}
			s.logger.Infow("gamepad disconnected", "slot", slot, "error", err)
		}
		if !goutils.SelectContextOrWait(ctx, reopenInterval) {
			return
		}
	}
}

// read blocks until the device goes away or ctx is done.
func (s *JoystickSource) read(ctx context.Context, slot int, f *os.File) error {
	done := make(chan struct{})
	defer close(done)
	goutils.PanicCapturingGo(func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		// unblocks the read below
		f.Close()
	})

	var state joystickState
	r := bufio.NewReader(f)
	buf := make([]byte, jsEventSize)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return multierr.Combine(errors.Wrapf(err, "read %s", f.Name()), f.Close())
		}
		state.apply(decodeEvent(buf))
		s.setSlot(slot, s.mapping(state.axes, state.buttons))
	}
}
