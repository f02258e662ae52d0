//go:build rp2040 || rp2350

package main

import (
	"machine"
	"runtime/volatile"
	"unsafe"

	"tinytemplate/core"
)

// SysTick in the Cortex-M system control space. TinyGo's runtime keeps time
// with the TIMER peripheral on these chips, so SysTick is free.
var (
	systCSR = (*volatile.Register32)(unsafe.Pointer(uintptr(0xE000E010)))
	systRVR = (*volatile.Register32)(unsafe.Pointer(uintptr(0xE000E014)))
	systCVR = (*volatile.Register32)(unsafe.Pointer(uintptr(0xE000E018)))
)

const (
	systEnable    = 1 << 0
	systClkSource = 1 << 2 // count processor clock cycles
	systMask      = 0xFFFFFF
)

// rpIRQLatency is the cycle count from a start edge to RecvFrame under the
// machine package's GPIO interrupt dispatch: exception entry, the bank status
// scan and the callback into SoftSerial.PinChange. About 2us at 125MHz.
const rpIRQLatency = 250

// rp2040CycleModel only bounds the baud range; frames are timed by SysTick
// deadlines. A delay unit is 25 cycles and the deadline loop needs about 100
// cycles of each bit for the counter read and pin access.
var rp2040CycleModel = core.CycleModel{
	LoopCycles:  25,
	TxBitCycles: 100,
	RxBitCycles: 100,
	PollCycles:  25,
	MaxRxDelay:  170,
	IRQLatency:  rpIRQLatency,
}

// startSysTick runs SysTick as a free running 24-bit down counter at the CPU
// clock with its interrupt disabled
func startSysTick() {
	systRVR.Set(systMask)
	systCVR.Set(0)
	systCSR.Set(systEnable | systClkSource)
}

// cyclesSince returns the cycles elapsed since the counter read ref. Spans
// must stay below 2^24 cycles; a frame is at most a few ten thousand.
func cyclesSince(ref uint32) uint32 {
	return (ref - systCVR.Get()) & systMask
}

// tickFrame implements core.FrameIO with every edge and sample placed at a
// deadline measured from the start edge. Loop and call overhead shows up as
// jitter of a few dozen cycles and never accumulates across the frame.
type tickFrame struct {
	tx, rx     machine.Pin
	bit        uint32 // bit period in 1/256 cycles
	irqLatency uint32
}

func newTickFrame(tx, rx core.GPIOPin, cpuHz, baud uint32) *tickFrame {
	startSysTick()
	return &tickFrame{
		tx:         machine.Pin(tx),
		rx:         machine.Pin(rx),
		bit:        uint32(uint64(cpuHz) << 8 / uint64(baud)),
		irqLatency: rpIRQLatency,
	}
}

// at returns the offset of halfBits half bit periods from the start edge
func (f *tickFrame) at(halfBits uint32) uint32 {
	return f.bit * halfBits >> 9
}

func (f *tickFrame) until(ref, deadline uint32) {
	for cyclesSince(ref) < deadline {
	}
}

func (f *tickFrame) SendFrame(b byte) {
	f.tx.Set(true)
	f.tx.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// Data bits, then the stop bit and the idle guard
	frame := uint16(b) | 0x300
	ref := systCVR.Get()
	f.tx.Low()
	for n := uint32(1); n <= 10; n++ {
		f.until(ref, f.at(2*n))
		f.tx.Set(frame&1 != 0)
		frame >>= 1
	}

	f.tx.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func (f *tickFrame) RecvFrame(wait bool) byte {
	var ref uint32
	if wait {
		for f.rx.Get() {
		}
		ref = systCVR.Get()
	} else {
		// The edge came irqLatency cycles ago; the counter was higher then
		ref = (systCVR.Get() + f.irqLatency) & systMask
	}

	// Samples at 1.5, 2.5 ... 8.5 bits, then the stop bit ends at 9.5
	var ch byte
	for i := uint32(0); i < 8; i++ {
		f.until(ref, f.at(2*i+3))
		ch >>= 1
		if f.rx.Get() {
			ch |= 0x80
		}
	}
	f.until(ref, f.at(19))
	return ch
}
