package core

// CycleModel describes the cycle cost of the serial engine's busy-wait loops on a
// particular core. The delay constants are only meaningful together with the model
// they were derived for.
type CycleModel struct {
	LoopCycles  uint32 // cycles per delay loop iteration
	TxBitCycles uint32 // fixed cycles per transmitted bit outside the delay loop
	RxBitCycles uint32 // fixed cycles per sampled bit outside the delay loop
	PollCycles  uint32 // cycles per start edge poll
	MaxRxDelay  uint32 // largest receive delay the loop counter supports

	// IRQLatency is the cycle count from a start edge to the first instruction
	// of the frame sampler when the pin-change interrupt receives
	IRQLatency uint32
}

// AVRCycleModel is the cost model of the attiny85 frame loops (targets/attiny85
// frame.go): dec/brne is 3 cycles per iteration, the transmit bit loop adds 7
// cycles and the receive bit loop 5, and the start edge poll is 3. Interrupt
// entry latency depends on the handler and is left to the target.
var AVRCycleModel = CycleModel{
	LoopCycles:  3,
	TxBitCycles: 7,
	RxBitCycles: 5,
	PollCycles:  3,
	MaxRxDelay:  127,
}

// Timing holds the delay loop counts for one clock/baud pair
type Timing struct {
	TxDelay      uint8 // loop count per transmitted bit
	RxDelay      uint8 // loop count per received bit
	RxStartDelay uint8 // loop count from start edge to the first bit centre

	// RxIRQStartDelay is RxStartDelay shortened by the interrupt entry latency.
	// Zero when the latency leaves no room, i.e. it reaches the first bit centre
	// or a full bit period.
	RxIRQStartDelay uint8
}

// DeriveTiming computes the delay loop counts for a clock/baud pair.
//
// With q = clockHz/baud (integer division):
//
//	TxDelay      = trunc((q - TxBitCycles + 1.5) / LoopCycles)
//	RxDelay      = trunc((q - RxBitCycles + 1.5) / LoopCycles)
//	RxStartDelay = trunc(RxDelay*1.5 - 2.5)
//	RxIRQStartDelay = RxStartDelay - ceil(IRQLatency / LoopCycles)
//
// The 1.5 compensates for integer truncation. The arithmetic is done on doubled
// integers so the result matches the floating point formula exactly.
func DeriveTiming(clockHz, baud uint32, m CycleModel) (Timing, error) {
	if clockHz == 0 || baud == 0 || m.LoopCycles == 0 {
		return Timing{}, ErrBadClock
	}
	q := int64(clockHz / baud)
	loop := int64(m.LoopCycles)

	rounded := (q - int64(m.RxBitCycles) + 2) / loop
	if rounded > int64(m.MaxRxDelay) {
		return Timing{}, ErrBaudTooLow
	}

	tx := (2*q - 2*int64(m.TxBitCycles) + 3) / (2 * loop)
	rx := (2*q - 2*int64(m.RxBitCycles) + 3) / (2 * loop)
	start := (3*rx - 5) / 2
	if 2*q-2*int64(m.TxBitCycles)+3 < 2*loop || 3*rx-5 < 2 {
		return Timing{}, ErrBaudTooHigh
	}
	if tx > 255 || rx > 255 || start > 255 {
		return Timing{}, ErrBaudTooLow
	}

	irq := int64(0)
	if lat := int64(m.IRQLatency); lat < q {
		irq = start - (lat+loop-1)/loop
		if irq < 1 {
			irq = 0
		}
	}

	return Timing{
		TxDelay:         uint8(tx),
		RxDelay:         uint8(rx),
		RxStartDelay:    uint8(start),
		RxIRQStartDelay: uint8(irq),
	}, nil
}

// TxBitCycles returns the cycle length of one transmitted bit
func (t Timing) TxBitCycles(m CycleModel) uint32 {
	return m.TxBitCycles + m.LoopCycles*uint32(t.TxDelay)
}

// RxBitCycles returns the spacing of receive samples in cycles
func (t Timing) RxBitCycles(m CycleModel) uint32 {
	return m.RxBitCycles + m.LoopCycles*uint32(t.RxDelay)
}

// RxStartCycles returns the cycles from start edge detection to the first sample
func (t Timing) RxStartCycles(m CycleModel) uint32 {
	return m.RxBitCycles + m.LoopCycles*uint32(t.RxStartDelay)
}

// RxIRQStartCycles returns the cycles from the start edge to the first sample
// when the pin-change interrupt receives, entry latency included
func (t Timing) RxIRQStartCycles(m CycleModel) uint32 {
	return m.IRQLatency + m.RxBitCycles + m.LoopCycles*uint32(t.RxIRQStartDelay)
}
