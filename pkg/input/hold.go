package input

import (
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// HoldKeys feeds a KeyState from a terminal. Terminals report key-down and
// auto-repeat but never key-up, so a key counts as released once hold has
// passed without another press of it.
type HoldKeys struct {
	keys *KeyState
	clk  clock.Clock
	hold time.Duration

	mu     sync.Mutex
	gen    uint64
	timers map[string]holdTimer
	closed bool
}

type holdTimer struct {
	timer *clock.Timer
	gen   uint64
}

// NewHoldKeys wraps keys. hold should exceed the terminal's initial auto-repeat delay.
func NewHoldKeys(keys *KeyState, clk clock.Clock, hold time.Duration) *HoldKeys {
	return &HoldKeys{
		keys:   keys,
		clk:    clk,
		hold:   hold,
		timers: map[string]holdTimer{},
	}
}

// Press records a key-down or repeat. It returns false for keys that do not drive the robot.
func (h *HoldKeys) Press(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return IsTeleopKey(key)
	}
	if !h.keys.Press(key) {
		return false
	}
	key = strings.ToLower(key)
	if t, ok := h.timers[key]; ok {
		t.timer.Stop()
	}
	h.gen++
	gen := h.gen
	h.timers[key] = holdTimer{
		timer: h.clk.AfterFunc(h.hold, func() { h.expire(key, gen) }),
		gen:   gen,
	}
	return true
}

func (h *HoldKeys) expire(key string, gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.timers[key]; !ok || t.gen != gen {
		return
	}
	delete(h.timers, key)
	h.keys.Release(key)
}

// Close stops all pending releases and releases every held key.
func (h *HoldKeys) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for key, t := range h.timers {
		t.timer.Stop()
		h.keys.Release(key)
	}
	h.timers = map[string]holdTimer{}
}
