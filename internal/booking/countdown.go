package booking

import (
	"sync"
	"time"
)

// Countdown is a cancellable one-second countdown owned by the
// wizard.  It runs a single goroutine while started and guarantees
// that after Stop returns no further onTick or onExpire callback
// will fire; a stopped countdown never leaks its ticker.  Callbacks
// are invoked without the countdown's own lock held so they are free
// to call back into Stop or Remaining.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	interval  time.Duration
	onTick    func(remaining int)
	onExpire  func()
	stop      chan struct{}
	running   bool
}

// NewCountdown builds a countdown of the given whole seconds.  Both
// callbacks are optional.  The countdown does not start ticking
// until Start is called.
func NewCountdown(seconds int, onTick func(int), onExpire func()) *Countdown {
	return &Countdown{
		remaining: seconds,
		interval:  time.Second,
		onTick:    onTick,
		onExpire:  onExpire,
	}
}

// Start begins ticking.  Starting an already running or expired
// countdown is a no-op.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running || c.remaining <= 0 {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	go c.run(c.stop)
}

// Stop halts ticking.  Safe to call multiple times and from callback
// context.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stop)
}

// Reset stops the countdown and rearms it with a fresh duration.
func (c *Countdown) Reset(seconds int) {
	c.Stop()
	c.mu.Lock()
	c.remaining = seconds
	c.mu.Unlock()
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// run is the ticking loop.  It owns the ticker and exits when the
// stop channel closes or the countdown reaches zero.
func (c *Countdown) run(stop chan struct{}) {
	c.mu.Lock()
	ticker := time.NewTicker(c.interval)
	c.mu.Unlock()
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if !c.running {
				c.mu.Unlock()
				return
			}
			c.remaining--
			left := c.remaining
			expired := left <= 0
			if expired {
				c.running = false
			}
			tick, expire := c.onTick, c.onExpire
			c.mu.Unlock()
			if tick != nil {
				tick(left)
			}
			if expired {
				if expire != nil {
					expire()
				}
				return
			}
		}
	}
}
