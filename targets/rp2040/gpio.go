//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinytemplate/core"
)

// RPGPIODriver implements the GPIODriver interface on machine.Pin. A core pin
// number is the GPIO number, GP0-GP29.
//
// The internal pull-up stands in for the external resistor the serial line
// expects, so an input pin idles high.
type RPGPIODriver struct{}

// ConfigureOutput configures a pin as a digital output
func (RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

// ConfigureInput configures a pin as an input pulled high
func (RPGPIODriver) ConfigureInput(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return nil
}

// SetPin sets the output latch. The level only reaches the pad once the pin is
// an output.
func (RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machine.Pin(pin).Set(value)
	return nil
}

// ReadPin reads the pad level
func (RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	return machine.Pin(pin).Get()
}
