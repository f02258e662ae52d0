package core

// FrameIO moves one complete 8N1 frame on the serial line.
//
// The default implementation is the engine's own bit loop on GPIODriver and
// Delayer, whose per-bit cost is what CycleModel describes. Targets where a
// compiled loop cannot hold that cost (interface calls, variable shifts) supply
// their own, typically a single assembly block with counted cycles, through
// NewSoftSerialFrameIO.
type FrameIO interface {
	// SendFrame transmits b: start bit, 8 data bits LSB first, then the line is
	// held high for the stop bit and one more bit period and released as an input.
	SendFrame(b byte)

	// RecvFrame samples the 8 data bits of one frame and waits out the stop bit.
	// With wait set it first polls the rx pin for the start edge. Otherwise the
	// edge has already been taken by the pin-change interrupt and the sampler
	// starts IRQLatency cycles late, so it uses Timing.RxIRQStartDelay.
	RecvFrame(wait bool) byte
}
