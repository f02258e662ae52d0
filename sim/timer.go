//go:build !tinygo

package sim

import "tinytemplate/core"

// Timer simulates the shared 8-bit timer. It implements core.TimerDriver.
type Timer struct {
	clock   *Clock
	cfg     core.TickConfig
	started int
}

var _ core.TimerDriver = (*Timer)(nil)

// NewTimer creates a timer; clock may be nil if elapsed cycles do not matter
func NewTimer(clock *Clock) *Timer {
	return &Timer{clock: clock}
}

// StartOverflowTimer implements core.TimerDriver
func (t *Timer) StartOverflowTimer(cfg core.TickConfig) error {
	t.cfg = cfg
	t.started++
	return nil
}

// Started returns how many times the timer was programmed
func (t *Timer) Started() int {
	return t.started
}

// Config returns the last programmed configuration
func (t *Timer) Config() core.TickConfig {
	return t.cfg
}

// OverflowCycles returns the CPU cycles between two overflows
func (t *Timer) OverflowCycles() uint64 {
	return uint64(t.cfg.Prescaler) * 256
}

// Fire runs n overflow interrupts, advancing the clock by one overflow period
// before each
func (t *Timer) Fire(n int) {
	for i := 0; i < n; i++ {
		if t.clock != nil {
			t.clock.Advance(t.OverflowCycles())
		}
		core.SimulateInterrupt(core.TimerOverflow)
	}
}
