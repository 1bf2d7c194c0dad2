package session

import (
	"testing"

	"go.viam.com/test"

	"github.com/al1y3vk/go1dash/pkg/scan"
)

func TestSubscribers(t *testing.T) {
	var subs Subscribers
	var a, b int
	cancelA := subs.Add(func(*scan.Reading) { a++ })
	subs.Add(func(*scan.Reading) { b++ })
	test.That(t, subs.Len(), test.ShouldEqual, 2)

	subs.Deliver(&scan.Reading{})
	cancelA()
	subs.Deliver(&scan.Reading{})

	test.That(t, a, test.ShouldEqual, 1)
	test.That(t, b, test.ShouldEqual, 2)
	test.That(t, subs.Len(), test.ShouldEqual, 1)

	// cancelling twice is harmless
	cancelA()
	test.That(t, subs.Len(), test.ShouldEqual, 1)
}
