// internal/sched/tickclock.go

package sched

// TickClock counts simulated ticks. It never waits on wall-clock time.
type TickClock struct {
	count int64
}

func NewTickClock() *TickClock {
	return &TickClock{}
}

// Advance moves the clock forward by one tick and returns the new count.
func (c *TickClock) Advance() int64 {
	c.count++

	return c.count
}

// Count returns the number of elapsed ticks.
func (c *TickClock) Count() int64 {
	return c.count
}

// Now returns the current simulated time.
func (c *TickClock) Now() float64 {
	return float64(c.count)
}
