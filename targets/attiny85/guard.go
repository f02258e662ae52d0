//go:build attiny85

package main

// Loop counts for the frame loops in frame.go, derived from clockHz and baudRate
// at compile time with the 3-cycle delay loop, 7-cycle transmit bit and 5-cycle
// receive bit. They must match core.DeriveTiming for the same model. This file
// depends on nothing but those two constants.

// pinChangeLatency is the cycle count from the start edge to the first
// instruction of recvStarted: interrupt response and vector jump (about 10),
// the handler prologue (about 40), the closure call into SoftSerial.PinChange
// with its receiver check and pin read (about 45) and the FrameIO call (about 15).
// Adjust after measuring the edge to first sample on a scope.
const pinChangeLatency = 110

const (
	bitCycles       = clockHz / baudRate
	rxDelayRounded  = (bitCycles - 5 + 2) / 3
	txDelayLoops    = (2*bitCycles - 14 + 3) / 6
	rxDelayLoops    = (2*bitCycles - 10 + 3) / 6
	rxStartLoops    = (3*rxDelayLoops - 5) / 2
	rxIRQStartLoops = rxStartLoops - (pinChangeLatency+2)/3
)

// Baud rate too low: the receive delay no longer fits the loop counter
const _ = uint8(127 - rxDelayRounded)

// Baud rate too high: the loop overhead alone exceeds one bit period
const _ = uint8(txDelayLoops - 1)
const _ = uint8(rxStartLoops - 1)

// Baud rate too high for pin-change receive: the handler starts after the
// first bit centre, or after the start bit has already ended
const _ = uint8(rxIRQStartLoops - 1)
const _ = uint16(bitCycles - pinChangeLatency - 1)
