// Package session is the boundary between the console and the robot: the
// outbound velocity channel, the inbound scan subscription and the link
// state. A Session is constructed explicitly and handed to its users.
package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/al1y3vk/go1dash/pkg/robot"
	"github.com/al1y3vk/go1dash/pkg/scan"
)

// ErrNotConnected is returned when publishing on a link that is down.
var ErrNotConnected = errors.New("robot not connected")

// A Session connects the console to one robot.
type Session interface {
	// Start brings the link up. Background work stops when ctx is done or on Close.
	Start(ctx context.Context) error
	Close() error

	// Connected reports whether the outbound channel is usable right now.
	Connected() bool

	// Publish sends one velocity command. It does not queue.
	Publish(ctx context.Context, cmd robot.VelocityCommand) error

	// SubscribeScan calls fn with every received reading until cancel is called.
	SubscribeScan(fn func(*scan.Reading)) (cancel func())
}

// Subscribers fans readings out to scan subscribers.
type Subscribers struct {
	mu   sync.Mutex
	next int
	subs map[int]func(*scan.Reading)
}

// Add registers fn and returns a func that removes it.
func (s *Subscribers) Add(fn func(*scan.Reading)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = map[int]func(*scan.Reading){}
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Deliver calls every subscriber with r.
func (s *Subscribers) Deliver(r *scan.Reading) {
	s.mu.Lock()
	fns := make([]func(*scan.Reading), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(r)
	}
}

// Len returns the number of subscribers.
func (s *Subscribers) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
