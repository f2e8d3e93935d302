package urgency

import (
	"context"
	"sync"
	"time"
)

// DefaultOfferDays is how far ahead the offer deadline sits
const DefaultOfferDays = 7

// Tick is the remaining time until the deadline, split for display
type Tick struct {
	Remaining time.Duration `json:"-"`
	Days      int           `json:"days"`
	Hours     int           `json:"hours"`
	Minutes   int           `json:"minutes"`
	Seconds   int           `json:"seconds"`
	Expired   bool          `json:"expired"`
}

// Deadline returns the offer deadline counted from now
func Deadline(now time.Time, days int) time.Time {
	if days <= 0 {
		days = DefaultOfferDays
	}
	return now.Add(time.Duration(days) * 24 * time.Hour)
}

// Remaining computes the tick for a deadline at a given instant
func Remaining(deadline, now time.Time) Tick {
	d := deadline.Sub(now)
	if d <= 0 {
		return Tick{Expired: true}
	}
	secs := int(d / time.Second)
	return Tick{
		Remaining: d,
		Days:      secs / 86400,
		Hours:     secs % 86400 / 3600,
		Minutes:   secs % 3600 / 60,
		Seconds:   secs % 60,
	}
}

// Countdown publishes a Tick every interval until the deadline passes,
// the context ends or Stop is called. C is closed when it finishes.
type Countdown struct {
	C <-chan Tick

	deadline time.Time
	clock    func() time.Time
	stop     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// Start launches a countdown. The first tick is published immediately.
func Start(ctx context.Context, deadline time.Time, interval time.Duration, clock func() time.Time) *Countdown {
	if clock == nil {
		clock = time.Now
	}
	if interval <= 0 {
		interval = time.Second
	}
	ch := make(chan Tick, 1)
	c := &Countdown{
		C:        ch,
		deadline: deadline,
		clock:    clock,
		stop:     make(chan struct{}),
	}
	c.wg.Add(1)
	go c.run(ctx, ch, interval)
	return c
}

func (c *Countdown) run(ctx context.Context, ch chan Tick, interval time.Duration) {
	defer c.wg.Done()
	defer close(ch)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		tick := Remaining(c.deadline, c.clock())
		select {
		case ch <- tick:
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		}
		if tick.Expired {
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		}
	}
}

// Stop halts the countdown and waits for its goroutine. Safe to call twice.
func (c *Countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
	c.wg.Wait()
}
