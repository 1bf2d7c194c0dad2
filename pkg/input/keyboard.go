// Package input samples the operator's input devices: the keyboard and the
// first connected gamepad. Samplers only keep the latest state; they never
// queue events.
package input

import (
	"sort"
	"strings"
	"sync"
)

// Logical teleop key identifiers, lower-cased.
const (
	KeyW          = "w"
	KeyA          = "a"
	KeyS          = "s"
	KeyD          = "d"
	KeyJ          = "j"
	KeyL          = "l"
	KeyArrowUp    = "arrowup"
	KeyArrowDown  = "arrowdown"
	KeyArrowLeft  = "arrowleft"
	KeyArrowRight = "arrowright"
	KeySpace      = " "
)

var teleopKeys = map[string]struct{}{
	KeyW: {}, KeyA: {}, KeyS: {}, KeyD: {}, KeyJ: {}, KeyL: {},
	KeyArrowUp: {}, KeyArrowDown: {}, KeyArrowLeft: {}, KeyArrowRight: {},
	KeySpace: {},
}

// IsTeleopKey reports whether key drives the robot. Letter keys match case-insensitively.
func IsTeleopKey(key string) bool {
	_, ok := teleopKeys[strings.ToLower(key)]
	return ok
}

// KeyState is the set of currently held teleop keys.
// Reads never consume: the set reflects what is held at the instant it is read.
type KeyState struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewKeyState returns an empty key set.
func NewKeyState() *KeyState {
	return &KeyState{held: map[string]struct{}{}}
}

// Press records a key-down. It returns false for keys that do not drive the
// robot; those are left to the caller's own handling and the set is untouched.
func (k *KeyState) Press(key string) bool {
	if !IsTeleopKey(key) {
		return false
	}
	k.mu.Lock()
	k.held[strings.ToLower(key)] = struct{}{}
	k.mu.Unlock()
	return true
}

// Release records a key-up. Releasing a key that is not held is a no-op.
func (k *KeyState) Release(key string) {
	k.mu.Lock()
	delete(k.held, strings.ToLower(key))
	k.mu.Unlock()
}

// Has reports whether key is currently held.
func (k *KeyState) Has(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.held[key]
	return ok
}

// Len returns the number of held keys.
func (k *KeyState) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.held)
}

// Keys returns the held keys in sorted order.
func (k *KeyState) Keys() []string {
	k.mu.Lock()
	keys := make([]string, 0, len(k.held))
	for key := range k.held {
		keys = append(keys, key)
	}
	k.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// TerminalKey translates a bubbletea key string into a logical key name.
// Keys without a teleop meaning are returned unchanged.
func TerminalKey(s string) string {
	switch s {
	case "up":
		return KeyArrowUp
	case "down":
		return KeyArrowDown
	case "left":
		return KeyArrowLeft
	case "right":
		return KeyArrowRight
	case "space":
		return KeySpace
	}
	return s
}
