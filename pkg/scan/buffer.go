package scan

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const rateWindow = time.Second

// Buffer keeps the most recent Reading and estimates how often readings
// arrive. Update is called from the subscription, Latest and Rate from the
// frame loop.
type Buffer struct {
	clk clock.Clock

	mu          sync.Mutex
	latest      *Reading
	count       int
	windowStart time.Time
	rate        float64
}

// NewBuffer returns an empty buffer.
func NewBuffer(clk clock.Clock) *Buffer {
	return &Buffer{clk: clk, windowStart: clk.Now()}
}

// Update replaces the latest reading.
func (b *Buffer) Update(r *Reading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = r
	b.count++
	b.roll()
}

// Latest returns the most recent reading, nil before the first one.
func (b *Buffer) Latest() *Reading {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest
}

// Rate returns readings per second over the last completed window.
func (b *Buffer) Rate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	return b.rate
}

// Stats returns the beam count of the latest reading and the current rate.
func (b *Buffer) Stats() (int, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	if b.latest == nil {
		return 0, b.rate
	}
	return len(b.latest.Ranges), b.rate
}

// roll closes the window once it spans at least rateWindow.
func (b *Buffer) roll() {
	now := b.clk.Now()
	elapsed := now.Sub(b.windowStart)
	if elapsed < rateWindow {
		return
	}
	b.rate = float64(b.count) / elapsed.Seconds()
	b.count = 0
	b.windowStart = now
}
