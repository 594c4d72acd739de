package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/trackmyhand/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Tickers it
// hands out only fire when Tick is called.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
}

// NewTicker returns a manually driven ticker
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

// Tick advances the clock by one second and delivers a tick to every
// running ticker. It blocks until each ticker's reader has received it.
func (c *MockClock) Tick() {
	c.mu.Lock()
	c.CurrentTime = c.CurrentTime.Add(time.Second)
	now := c.CurrentTime
	tickers := make([]*MockTicker, len(c.tickers))
	copy(tickers, c.tickers)
	c.mu.Unlock()

	for _, t := range tickers {
		t.fire(now)
	}
}

// RunningTickers counts tickers that have not been stopped
func (c *MockClock) RunningTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.Stopped() {
			n++
		}
	}
	return n
}

// MockTicker is a ticker that fires on demand
type MockTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
}

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop prevents further ticks
func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Stopped reports whether Stop has been called
func (t *MockTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *MockTicker) fire(now time.Time) {
	if t.Stopped() {
		return
	}
	select {
	case t.ch <- now:
	case <-time.After(time.Second):
	}
}
