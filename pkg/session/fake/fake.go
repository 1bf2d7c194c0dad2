// Package fake implements a simulated robot session: a holonomic base
// driving around a walled room with pillars, carrying a 360 degree lidar.
package fake

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/al1y3vk/go1dash/pkg/robot"
	"github.com/al1y3vk/go1dash/pkg/scan"
	"github.com/al1y3vk/go1dash/pkg/session"
)

const (
	defaultBeams    = 360
	defaultRangeMin = 0.15
	defaultRangeMax = 12.0
	defaultDropout  = 0.02
	defaultNoise    = 0.01
	robotRadius     = 0.3
)

// Pillar is a round obstacle.
type Pillar struct {
	Center r2.Point
	Radius float64
}

// Room is an axis-aligned rectangle centred on the origin.
type Room struct {
	Width, Height float64
	Pillars       []Pillar
}

// DefaultRoom returns an 8 x 6 m room with three pillars.
func DefaultRoom() Room {
	return Room{
		Width:  8,
		Height: 6,
		Pillars: []Pillar{
			{Center: r2.Point{X: 2, Y: 1}, Radius: 0.3},
			{Center: r2.Point{X: -1.5, Y: -1.5}, Radius: 0.4},
			{Center: r2.Point{X: -2.5, Y: 1.8}, Radius: 0.25},
		},
	}
}

// Pose is the base position in the room. Theta is counter-clockwise from +X.
type Pose struct {
	X, Y, Theta float64
}

// Config configures a simulated session. Zero values take defaults.
type Config struct {
	ScanHz  float64
	Room    *Room
	Beams   int
	Dropout float64 // probability that a beam returns nothing
	Noise   float64 // standard deviation of range noise, meters
	Seed    int64
	Clock   clock.Clock
}

// Session is a simulated robot.
type Session struct {
	clk     clock.Clock
	logger  golog.Logger
	room    Room
	period  time.Duration
	beams   int
	dropout float64
	noise   float64

	mu         sync.Mutex
	rnd        *rand.Rand
	started    bool
	connected  bool
	pose       Pose
	velocity   robot.VelocityCommand
	lastUpdate time.Time

	subs session.Subscribers

	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

var _ session.Session = (*Session)(nil)

// New returns a simulated session at the room's origin, facing +X.
func New(cfg Config, logger golog.Logger) (*Session, error) {
	if cfg.ScanHz <= 0 {
		return nil, errors.Errorf("scan rate must be positive, got %v", cfg.ScanHz)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	room := DefaultRoom()
	if cfg.Room != nil {
		room = *cfg.Room
	}
	if cfg.Beams <= 0 {
		cfg.Beams = defaultBeams
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Session{
		clk:     cfg.Clock,
		logger:  logger,
		room:    room,
		period:  time.Duration(float64(time.Second) / cfg.ScanHz),
		beams:   cfg.Beams,
		dropout: cfg.Dropout,
		noise:   cfg.Noise,
		rnd:     rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// NewDefault returns a session with realistic sensor noise.
func NewDefault(scanHz float64, logger golog.Logger) (*Session, error) {
	return New(Config{ScanHz: scanHz, Dropout: defaultDropout, Noise: defaultNoise}, logger)
}

// Start connects and begins producing scans.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("simulated session already started")
	}
	s.started = true
	s.connected = true
	s.lastUpdate = s.clk.Now()

	cancelCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	ticker := s.clk.Ticker(s.period)
	s.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		defer ticker.Stop()
		for {
			select {
			case <-cancelCtx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}, s.activeBackgroundWorkers.Done)

	s.logger.Infow("simulated robot started", "scan_period", s.period, "beams", s.beams)
	return nil
}

// Close stops the simulation.
func (s *Session) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.connected = false
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.activeBackgroundWorkers.Wait()
	return nil
}

// Connected reports whether the simulated link is up.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// SetConnected simulates link loss and recovery. Scans are not delivered while down.
func (s *Session) SetConnected(up bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.connected == up {
		return
	}
	s.connected = up
	s.logger.Infow("simulated link changed", "connected", up)
}

// Publish sets the base velocity. The base keeps it until the next command.
func (s *Session) Publish(ctx context.Context, cmd robot.VelocityCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return session.ErrNotConnected
	}
	s.integrate(s.clk.Now())
	s.velocity = cmd
	s.logger.Debugw("velocity", "cmd", cmd.String())
	return nil
}

// SubscribeScan registers fn for every simulated reading.
func (s *Session) SubscribeScan(fn func(*scan.Reading)) func() {
	return s.subs.Add(fn)
}

// Pose returns the current base pose.
func (s *Session) Pose() Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.integrate(s.clk.Now())
	return s.pose
}

// Velocity returns the command the base is executing.
func (s *Session) Velocity() robot.VelocityCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.velocity
}

func (s *Session) tick() {
	s.mu.Lock()
	s.integrate(s.clk.Now())
	connected := s.connected
	var reading *scan.Reading
	if connected {
		reading = s.scanLocked()
	}
	s.mu.Unlock()

	if reading != nil {
		s.subs.Deliver(reading)
	}
}

// integrate advances the pose to now under the current velocity.
func (s *Session) integrate(now time.Time) {
	dt := now.Sub(s.lastUpdate).Seconds()
	s.lastUpdate = now
	if dt <= 0 || s.velocity.IsZero() {
		return
	}

	sin, cos := math.Sincos(s.pose.Theta)
	fwd, strafe := s.velocity.Forward(), s.velocity.Strafe()
	next := r2.Point{
		X: s.pose.X + (fwd*cos-strafe*sin)*dt,
		Y: s.pose.Y + (fwd*sin+strafe*cos)*dt,
	}
	if s.free(next) {
		s.pose.X, s.pose.Y = next.X, next.Y
	}
	s.pose.Theta = normalizeAngle(s.pose.Theta + s.velocity.Yaw()*dt)
}

// free reports whether the base fits at p.
func (s *Session) free(p r2.Point) bool {
	if math.Abs(p.X) > s.room.Width/2-robotRadius || math.Abs(p.Y) > s.room.Height/2-robotRadius {
		return false
	}
	for _, pl := range s.room.Pillars {
		if p.Sub(pl.Center).Norm() < pl.Radius+robotRadius {
			return false
		}
	}
	return true
}

func (s *Session) scanLocked() *scan.Reading {
	r := &scan.Reading{
		AngleMin:       -math.Pi,
		AngleIncrement: 2 * math.Pi / float64(s.beams),
		RangeMin:       defaultRangeMin,
		RangeMax:       defaultRangeMax,
		Ranges:         make([]float64, s.beams),
	}
	origin := r2.Point{X: s.pose.X, Y: s.pose.Y}
	for i := range r.Ranges {
		if s.dropout > 0 && s.rnd.Float64() < s.dropout {
			r.Ranges[i] = math.NaN()
			continue
		}
		// beam angles sweep clockwise from the heading
		d := s.room.Cast(origin, s.pose.Theta-r.Angle(i))
		if s.noise > 0 {
			d += s.rnd.NormFloat64() * s.noise
		}
		if d > r.RangeMax {
			d = math.Inf(1)
		}
		r.Ranges[i] = d
	}
	return r
}

// Cast returns the distance from origin to the first wall or pillar along
// the world angle phi.
func (room Room) Cast(origin r2.Point, phi float64) float64 {
	sin, cos := math.Sincos(phi)
	dir := r2.Point{X: cos, Y: sin}

	best := math.Inf(1)
	hw, hh := room.Width/2, room.Height/2
	if dir.X > 0 {
		best = math.Min(best, (hw-origin.X)/dir.X)
	} else if dir.X < 0 {
		best = math.Min(best, (-hw-origin.X)/dir.X)
	}
	if dir.Y > 0 {
		best = math.Min(best, (hh-origin.Y)/dir.Y)
	} else if dir.Y < 0 {
		best = math.Min(best, (-hh-origin.Y)/dir.Y)
	}

	for _, pl := range room.Pillars {
		oc := origin.Sub(pl.Center)
		b := oc.Dot(dir)
		c := oc.Dot(oc) - pl.Radius*pl.Radius
		disc := b*b - c
		if disc < 0 {
			continue
		}
		if t := -b - math.Sqrt(disc); t > 0 && t < best {
			best = t
		}
	}
	return best
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
