package input

import (
	"testing"

	"go.viam.com/test"
)

func TestIsTeleopKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"w", true},
		{"W", true},
		{"j", true},
		{"L", true},
		{"arrowup", true},
		{"ArrowLeft", true},
		{" ", true},
		{"q", false},
		{"x", false},
		{"enter", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			test.That(t, IsTeleopKey(tt.key), test.ShouldEqual, tt.want)
		})
	}
}

func TestKeyState(t *testing.T) {
	keys := NewKeyState()

	test.That(t, keys.Press("W"), test.ShouldBeTrue)
	test.That(t, keys.Press("d"), test.ShouldBeTrue)
	test.That(t, keys.Has(KeyW), test.ShouldBeTrue)
	test.That(t, keys.Keys(), test.ShouldResemble, []string{"d", "w"})

	// unrecognized keys leave the set alone
	test.That(t, keys.Press("q"), test.ShouldBeFalse)
	test.That(t, keys.Len(), test.ShouldEqual, 2)

	// reads do not consume
	test.That(t, keys.Len(), test.ShouldEqual, 2)

	keys.Release("w")
	test.That(t, keys.Has(KeyW), test.ShouldBeFalse)
	keys.Release("j")
	keys.Release("q")
	test.That(t, keys.Keys(), test.ShouldResemble, []string{"d"})

	keys.Release("D")
	test.That(t, keys.Len(), test.ShouldEqual, 0)
	test.That(t, keys.Keys(), test.ShouldBeEmpty)
}

func TestTerminalKey(t *testing.T) {
	test.That(t, TerminalKey("up"), test.ShouldEqual, KeyArrowUp)
	test.That(t, TerminalKey("down"), test.ShouldEqual, KeyArrowDown)
	test.That(t, TerminalKey("left"), test.ShouldEqual, KeyArrowLeft)
	test.That(t, TerminalKey("right"), test.ShouldEqual, KeyArrowRight)
	test.That(t, TerminalKey(" "), test.ShouldEqual, KeySpace)
	test.That(t, TerminalKey("w"), test.ShouldEqual, "w")
	test.That(t, TerminalKey("ctrl+c"), test.ShouldEqual, "ctrl+c")
}
