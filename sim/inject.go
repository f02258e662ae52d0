//go:build !tinygo

package sim

import (
	"math"

	"tinytemplate/core"
)

// Inject delivers bytes to a serial port using the interrupt receive strategy.
// Each frame is scheduled on the rx pin, the clock is moved past its start edge by
// the model's interrupt entry latency and the pin-change handler runs as an
// interrupt, sampling the frame inline.
func Inject(s *core.SoftSerial, line *Line, clock *Clock, rx core.GPIOPin, bitCycles float64, data ...byte) {
	for _, b := range data {
		at := clock.Now() + uint64(math.Round(2*bitCycles))
		line.Drive(rx, Frame(b, bitCycles, at))
		clock.AdvanceTo(at + uint64(clock.model.IRQLatency))
		core.SimulateInterrupt(s.PinChange)
	}
}
