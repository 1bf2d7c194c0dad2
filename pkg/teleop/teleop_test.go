package teleop

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/al1y3vk/go1dash/pkg/input"
	"github.com/al1y3vk/go1dash/pkg/robot"
)

type recordingPublisher struct {
	mu   sync.Mutex
	sent []robot.VelocityCommand
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, cmd robot.VelocityCommand) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, cmd)
	return p.err
}

func (p *recordingPublisher) commands() []robot.VelocityCommand {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]robot.VelocityCommand(nil), p.sent...)
}

type toggleLink struct{ up atomic.Bool }

func (l *toggleLink) Connected() bool { return l.up.Load() }

type staticPad struct{ snap input.DeviceSnapshot }

func (s staticPad) Latest() input.DeviceSnapshot { return s.snap }

type harness struct {
	clk    *clock.Mock
	keys   *input.KeyState
	pub    *recordingPublisher
	link   *toggleLink
	ctrl   *Controller
	cancel func()
	done   chan error
}

func startController(t *testing.T, pub Publisher) *harness {
	t.Helper()
	h := &harness{
		clk:  clock.NewMock(),
		keys: input.NewKeyState(),
		link: &toggleLink{},
		done: make(chan error, 1),
	}
	h.link.up.Store(true)
	if rp, ok := pub.(*recordingPublisher); ok {
		h.pub = rp
	}

	ctrl, err := NewController(Config{
		Gamepad:   staticPad{},
		Keys:      h.keys,
		Publisher: pub,
		Link:      h.link,
		Limits:    robot.DefaultLimits(),
		Deadband:  0.08,
		Period:    100 * time.Millisecond,
		Clock:     h.clk,
		Logger:    golog.NewTestLogger(t),
	})
	test.That(t, err, test.ShouldBeNil)
	h.ctrl = ctrl

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- ctrl.Run(ctx) }()

	// the ticker exists once the start line is logged
	waitLog(t, ctrl, "Teleoperation started")
	return h
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	h.cancel()
	select {
	case err := <-h.done:
		test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not stop")
	}
}

func (h *harness) tick(t *testing.T) State {
	t.Helper()
	h.clk.Add(h.ctrl.Period())
	select {
	case s := <-h.ctrl.States():
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no state after tick")
		return State{}
	}
}

func waitLog(t *testing.T, c *Controller, substr string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case line := <-c.Logs():
			if strings.Contains(line, substr) {
				return
			}
		case <-timeout:
			t.Fatalf("no log line containing %q", substr)
		}
	}
}

func TestNewController_Validation(t *testing.T) {
	_, err := NewController(Config{Keys: input.NewKeyState(), Period: time.Second})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewController(Config{Gamepad: staticPad{}, Keys: input.NewKeyState()})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestController_PublishesAndGates(t *testing.T) {
	h := startController(t, &recordingPublisher{})
	defer h.stop(t)

	s := h.tick(t)
	test.That(t, s.Connected, test.ShouldBeTrue)
	test.That(t, s.Transmitted, test.ShouldBeFalse)
	test.That(t, s.Status, test.ShouldEqual, StatusIdle)

	h.keys.Press("w")
	s = h.tick(t)
	test.That(t, s.Transmitted, test.ShouldBeTrue)
	test.That(t, s.Source, test.ShouldEqual, SourceKeyboard)
	test.That(t, s.Status, test.ShouldEqual, "Keyboard  fwd=0.50 strafe=0.00 yaw=0.00")

	h.keys.Release("w")
	for i := 0; i < 5; i++ {
		h.tick(t)
	}

	cmds := h.pub.commands()
	test.That(t, cmds, test.ShouldHaveLength, 2)
	test.That(t, cmds[0].Forward(), test.ShouldEqual, 0.5)
	test.That(t, cmds[1].IsZero(), test.ShouldBeTrue)
}

func TestController_DisconnectedTickIsNoop(t *testing.T) {
	h := startController(t, &recordingPublisher{})
	defer h.stop(t)

	h.link.up.Store(false)
	h.keys.Press("w")
	s := h.tick(t)
	test.That(t, s.Connected, test.ShouldBeFalse)
	test.That(t, s.Transmitted, test.ShouldBeFalse)
	test.That(t, h.pub.commands(), test.ShouldBeEmpty)

	// nothing queued: the first connected tick sends the current state only
	h.link.up.Store(true)
	s = h.tick(t)
	test.That(t, s.Transmitted, test.ShouldBeTrue)
	test.That(t, h.pub.commands(), test.ShouldHaveLength, 1)
}

func TestController_NilPublisher(t *testing.T) {
	h := startController(t, nil)
	defer h.stop(t)

	h.keys.Press("w")
	s := h.tick(t)
	test.That(t, s.Connected, test.ShouldBeFalse)
	test.That(t, s.Transmitted, test.ShouldBeFalse)
}

func TestController_PublishErrorDoesNotStopLoop(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	h := startController(t, pub)
	defer h.stop(t)

	h.keys.Press("w")
	h.tick(t)
	waitLog(t, h.ctrl, "Publish error")

	s := h.tick(t)
	test.That(t, s.Transmitted, test.ShouldBeTrue)
	test.That(t, pub.commands(), test.ShouldHaveLength, 2)
}

func TestController_StopsRobotOnShutdown(t *testing.T) {
	h := startController(t, &recordingPublisher{})

	h.keys.Press("a")
	h.tick(t)
	h.stop(t)

	cmds := h.pub.commands()
	test.That(t, cmds, test.ShouldHaveLength, 2)
	test.That(t, cmds[0].Strafe(), test.ShouldEqual, 0.4)
	test.That(t, cmds[1].IsZero(), test.ShouldBeTrue)

	// no tick after Run returned
	h.clk.Add(time.Second)
	test.That(t, h.pub.commands(), test.ShouldHaveLength, 2)
}

func TestController_AlreadyRunning(t *testing.T) {
	h := startController(t, &recordingPublisher{})
	defer h.stop(t)

	err := h.ctrl.Run(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "already running")
}
