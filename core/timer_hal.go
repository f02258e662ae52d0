package core

// TimerDriver owns the chip's general purpose timer. The tick multiplexer is its
// only user; the overflow interrupt must end up calling TimerOverflow.
type TimerDriver interface {
	// StartOverflowTimer programs the prescaler and enables the overflow interrupt
	StartOverflowTimer(cfg TickConfig) error
}

// Global singleton used by core code.
var timerDriver TimerDriver

// SetTimerDriver is called by target-specific code to register its driver.
func SetTimerDriver(d TimerDriver) {
	timerDriver = d
}

// MustTimer returns the configured driver or panics if missing.
func MustTimer() TimerDriver {
	if timerDriver == nil {
		panic("timer driver not configured")
	}
	return timerDriver
}
