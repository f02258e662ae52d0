//go:build attiny85

package main

import (
	"device/avr"

	"tinytemplate/core"
)

// portBDriver implements the GPIODriver interface directly on the PORTB registers
type portBDriver struct{}

func (portBDriver) ConfigureOutput(pin core.GPIOPin) error {
	avr.DDRB.SetBits(1 << pin)
	return nil
}

func (portBDriver) ConfigureInput(pin core.GPIOPin) error {
	avr.DDRB.ClearBits(1 << pin)
	return nil
}

func (portBDriver) SetPin(pin core.GPIOPin, value bool) error {
	if value {
		avr.PORTB.SetBits(1 << pin)
	} else {
		avr.PORTB.ClearBits(1 << pin)
	}
	return nil
}

func (portBDriver) ReadPin(pin core.GPIOPin) bool {
	return avr.PINB.HasBits(1 << pin)
}
