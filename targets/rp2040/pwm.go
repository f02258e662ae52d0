//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinytemplate/core"
)

// pwmPeriod is the period every slice runs at (1kHz)
const pwmPeriod = 1000000

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// RP2040PWMDriver implements the PWMDriver interface for RP2040
// Leverages RP2040's 8 hardware PWM slices with 2 channels each
type RP2040PWMDriver struct {
	// Key: pin number, Value: PWM channel
	channels map[core.GPIOPin]uint8

	// Key: slice number (0-7), Value: configured peripheral
	peripherals map[uint8]pwmPeripheral
}

// NewRP2040PWMDriver creates a new RP2040 PWM driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{
		channels:    make(map[core.GPIOPin]uint8),
		peripherals: make(map[uint8]pwmPeripheral),
	}
}

// ConfigureHardwarePWM connects a pin to its slice. Reconfiguring an already
// connected pin is a no-op so PWMOut can be called in a loop.
func (d *RP2040PWMDriver) ConfigureHardwarePWM(pin core.GPIOPin) error {
	if _, ok := d.channels[pin]; ok {
		return nil
	}

	// GPIO pin N maps to slice (N >> 1) & 0x7, channel N & 1
	sliceNum := uint8((pin >> 1) & 0x7)

	pwm, exists := d.peripherals[sliceNum]
	if !exists {
		pwm = getPWMPeripheral(sliceNum)
		if err := pwm.Configure(machine.PWMConfig{Period: pwmPeriod}); err != nil {
			return err
		}
		d.peripherals[sliceNum] = pwm
	}

	channel, err := pwm.Channel(machine.Pin(pin))
	if err != nil {
		return err
	}
	d.channels[pin] = channel
	return nil
}

// SetDutyCycle scales an 8-bit duty cycle to the slice's counter top
func (d *RP2040PWMDriver) SetDutyCycle(pin core.GPIOPin, value uint8) error {
	channel, exists := d.channels[pin]
	if !exists {
		return nil
	}
	pwm := d.peripherals[uint8((pin>>1)&0x7)]
	pwm.Set(channel, uint32(value)*pwm.Top()/255)
	return nil
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
func getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return machine.PWM0
	}
}
