// Package teleop drives the robot from the operator's input devices: on a
// fixed period it arbitrates between gamepad and keyboard and publishes the
// resulting velocity command.
package teleop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/al1y3vk/go1dash/pkg/input"
	"github.com/al1y3vk/go1dash/pkg/robot"
)

// State represents the controller's view after one tick.
type State struct {
	Status      string
	Gamepad     input.DeviceSnapshot
	Command     robot.VelocityCommand
	Source      string
	Connected   bool
	Transmitted bool
	Timestamp   time.Time
}

// Publisher sends velocity commands to the robot.
type Publisher interface {
	Publish(ctx context.Context, cmd robot.VelocityCommand) error
}

// Link reports whether the outbound channel is usable.
type Link interface {
	Connected() bool
}

// GamepadReader returns the latest gamepad snapshot.
type GamepadReader interface {
	Latest() input.DeviceSnapshot
}

// Config holds configuration for the controller.
type Config struct {
	Gamepad   GamepadReader
	Keys      KeyReader
	Publisher Publisher // nil until a channel is available
	Link      Link
	Limits    robot.Limits
	Deadband  float64
	Period    time.Duration
	Clock     clock.Clock
	Logger    golog.Logger
}

// Controller manages the teleoperation control loop.
type Controller struct {
	gamepad   GamepadReader
	keys      KeyReader
	publisher Publisher
	link      Link
	period    time.Duration
	clk       clock.Clock
	logger    golog.Logger
	arbiter   *Arbiter

	mu         sync.Mutex
	running    bool
	lastSource string

	stateCh chan State
	logCh   chan string
}

// NewController creates a new teleoperation controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Gamepad == nil || cfg.Keys == nil {
		return nil, errors.New("teleop controller needs a gamepad and a key reader")
	}
	if cfg.Period <= 0 {
		return nil, errors.Errorf("invalid period %v", cfg.Period)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = golog.Global()
	}

	return &Controller{
		gamepad:   cfg.Gamepad,
		keys:      cfg.Keys,
		publisher: cfg.Publisher,
		link:      cfg.Link,
		period:    cfg.Period,
		clk:       cfg.Clock,
		logger:    cfg.Logger,
		arbiter:   NewArbiter(cfg.Limits, cfg.Deadband),
		stateCh:   make(chan State, 1),
		logCh:     make(chan string, 10),
	}, nil
}

// States returns a channel that receives state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Period returns the arbitration period.
func (c *Controller) Period() time.Duration {
	return c.period
}

func (c *Controller) log(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	c.logger.Info(line)
	msg := fmt.Sprintf("[%s] %s", c.clk.Now().Format("15:04:05"), line)
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Run ticks until ctx is done. No tick fires after Run returns.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("already running")
	}
	c.running = true
	c.mu.Unlock()

	ticker := c.clk.Ticker(c.period)
	defer ticker.Stop()
	c.log("Teleoperation started, period %v", c.period)

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case <-ticker.C:
			c.step(ctx)
		}
	}
}

func (c *Controller) usable() bool {
	return c.publisher != nil && c.link != nil && c.link.Connected()
}

func (c *Controller) step(ctx context.Context) {
	gp := c.gamepad.Latest()
	if !c.usable() {
		c.sendState(State{
			Status:    c.arbiter.status,
			Gamepad:   gp,
			Timestamp: c.clk.Now(),
		})
		return
	}

	d := c.arbiter.Step(gp, c.keys)
	if d.Source != c.lastSource {
		if d.Source == "" {
			c.log("Released control")
		} else {
			c.log("Control: %s", d.Source)
		}
		c.lastSource = d.Source
	}
	if d.Transmit {
		if err := c.publisher.Publish(ctx, d.Command); err != nil {
			c.log("Publish error: %v", err)
		}
	}

	c.sendState(State{
		Status:      d.Status,
		Gamepad:     gp,
		Command:     d.Command,
		Source:      d.Source,
		Connected:   true,
		Transmitted: d.Transmit,
		Timestamp:   c.clk.Now(),
	})
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

// shutdown sends an explicit stop if the robot was left moving.
func (c *Controller) shutdown() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	if c.arbiter.Moving() && c.usable() {
		ctx, cancel := context.WithTimeout(context.Background(), c.period)
		defer cancel()
		if err := c.publisher.Publish(ctx, robot.VelocityCommand{}); err != nil {
			c.log("Warning: failed to stop robot: %v", err)
		} else {
			c.arbiter.Stopped()
			c.log("Robot stopped")
		}
	}
	c.log("Teleoperation stopped")
}
