//go:build attiny85

package main

import "device"

// I/O space addresses of the PORTB registers, for sbi/cbi/sbic/out
const (
	ioPINB  = "0x16"
	ioDDRB  = "0x17"
	ioPORTB = "0x18"
)

// Pin numbers as assembler immediates
const (
	txBit = string(rune('0' + txPin))
	rxBit = string(rune('0' + rxPin))
)

// asmFrame implements core.FrameIO with hand-counted loops on the build-time
// pins, so a bit costs exactly what core.AVRCycleModel says: 3 cycles per delay
// iteration plus 7 per transmitted bit and 5 per sampled bit.
//
// Register operands are modified in place, the way the drivers ws2812 AVR
// code does; none of them is read again after the block.
type asmFrame struct{}

// SendFrame drives the start bit with cbi and then toggles the line through
// PINB for each bit that differs from the one before it. Writing PINB flips the
// latch in one cycle without a read-modify-write, so the tick interrupt touching
// other PORTB pins cannot be undone. Per bit:
//
//	mov 1, delay loop 3*n-1, sbrc+out 2, lsr+ror 2, dec+brne 3 = 3*n+7
//
// The five nops after the start edge make the first data edge land 3*n+7 cycles
// after it too.
func (asmFrame) SendFrame(b byte) {
	// Bit i flips the line for output i: data bits 0-7, the stop bit, then the
	// idle guard, which never flips
	frame := uint16(b) | 0x300
	toggle := frame ^ frame<<1

	device.AsmFull(`
		sbi `+ioPORTB+`, `+txBit+`
		sbi `+ioDDRB+`, `+txBit+`
		cbi `+ioPORTB+`, `+txBit+`
		nop
		nop
		nop
		nop
		nop
	1:
		mov {cnt}, {delay}
	2:
		dec {cnt}
		brne 2b
		sbrc {lo}, 0
		out `+ioPINB+`, {mask}
		lsr {hi}
		ror {lo}
		dec {bits}
		brne 1b
		cbi `+ioDDRB+`, `+txBit+`
		cbi `+ioPORTB+`, `+txBit+`
	`, map[string]interface{}{
		"lo":    uint8(toggle),
		"hi":    uint8(toggle >> 8),
		"mask":  uint8(1 << txPin),
		"delay": uint8(txDelayLoops),
		"cnt":   uint8(0xff),
		"bits":  uint8(10),
	})
}

// sampleLoop samples eight bits into a register seeded with the 0x80 sentinel.
// The carry is clear on every pass through 1: (clc on entry, brcc after), so
// sbic+sec costs 2 cycles whichever level is read. Per bit:
//
//	mov 1, delay loop 3*n-1, sbic+sec 2, ror 1, brcc 2 = 3*n+5
//
// After the eighth sample one more receive delay waits out the stop bit.
const sampleLoop = `
		mov {cnt}, {start}
		clc
		rjmp 2f
	1:
		mov {cnt}, {delay}
	2:
		dec {cnt}
		brne 2b
		sbic ` + ioPINB + `, ` + rxBit + `
		sec
		ror {ch}
		brcc 1b
		mov {cnt}, {delay}
	3:
		dec {cnt}
		brne 3b
		mov {}, {ch}
`

// RecvFrame runs the sampler. The polled variant first spins on the pin in a
// 3-cycle sbic/rjmp loop, matching PollCycles.
func (asmFrame) RecvFrame(wait bool) byte {
	if wait {
		return recvPolled()
	}
	return recvStarted()
}

func recvPolled() byte {
	return byte(device.AsmFull(`
	4:
		sbic `+ioPINB+`, `+rxBit+`
		rjmp 4b
	`+sampleLoop, map[string]interface{}{
		"start": uint8(rxStartLoops),
		"delay": uint8(rxDelayLoops),
		"cnt":   uint8(0xff),
		"ch":    uint8(0x80),
	}))
}

// recvStarted runs from the pin-change handler, pinChangeLatency cycles after
// the start edge
func recvStarted() byte {
	return byte(device.AsmFull(sampleLoop, map[string]interface{}{
		"start": uint8(rxIRQStartLoops),
		"delay": uint8(rxDelayLoops),
		"cnt":   uint8(0xff),
		"ch":    uint8(0x80),
	}))
}
