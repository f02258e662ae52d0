//go:build attiny85

package main

import (
	"device/avr"
	"runtime/interrupt"

	"tinytemplate/core"
)

const gimskPCIE = 1 << 5

// enablePinChange routes pin-change interrupts on the receive pin to the serial
// engine. PCINT0 is shared by every PORTB pin; only rxPin is unmasked.
func enablePinChange(pin core.GPIOPin) {
	avr.PCMSK.Set(1 << pin)
	avr.GIMSK.SetBits(gimskPCIE)

	interrupt.New(avr.IRQ_PCINT0, func(interrupt.Interrupt) {
		uart.PinChange()
	})
}
