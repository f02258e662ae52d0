package sim

import "tinytemplate/core"

// Clock counts CPU cycles
type Clock struct {
	now   uint64
	model core.CycleModel
}

// NewClock creates a clock charging delay loops at the model's cycle cost
func NewClock(model core.CycleModel) *Clock {
	return &Clock{model: model}
}

// Now returns the current cycle count
func (c *Clock) Now() uint64 {
	return c.now
}

// Advance moves the clock forward
func (c *Clock) Advance(cycles uint64) {
	c.now += cycles
}

// AdvanceTo moves the clock forward to t. Moving backwards is ignored.
func (c *Clock) AdvanceTo(t uint64) {
	if t > c.now {
		c.now = t
	}
}

// Spin implements core.Delayer
func (c *Clock) Spin(loops uint8) {
	c.now += uint64(loops) * uint64(c.model.LoopCycles)
}

// Overhead implements core.Delayer
func (c *Clock) Overhead(cycles uint8) {
	c.now += uint64(cycles)
}
