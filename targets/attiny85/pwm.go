//go:build attiny85

package main

import (
	"errors"

	"device/avr"

	"tinytemplate/core"
)

const (
	tccr0aCOM0A1 = 1 << 7
	tccr0aCOM0B1 = 1 << 5
	tccr0aWGM01  = 1 << 1
	tccr0aWGM00  = 1 << 0
	tccr0bCS01   = 1 << 1
)

var errNoCompareOutput = errors.New("pin has no TIMER0 compare output")

// timer0PWMDriver drives OC0A (PB0) and OC0B (PB1) in fast PWM mode.
// TIMER0 is otherwise unused, so hardware PWM runs alongside the tick timer.
type timer0PWMDriver struct{}

func (timer0PWMDriver) ConfigureHardwarePWM(pin core.GPIOPin) error {
	var com uint8
	switch pin {
	case pwmA:
		com = tccr0aCOM0A1
	case pwmB:
		com = tccr0aCOM0B1
	default:
		return errNoCompareOutput
	}
	avr.DDRB.SetBits(1 << pin)
	avr.TCCR0A.SetBits(com | tccr0aWGM01 | tccr0aWGM00)
	avr.TCCR0B.Set(tccr0bCS01)
	return nil
}

func (timer0PWMDriver) SetDutyCycle(pin core.GPIOPin, value uint8) error {
	switch pin {
	case pwmA:
		avr.OCR0A.Set(value)
	case pwmB:
		avr.OCR0B.Set(value)
	default:
		return errNoCompareOutput
	}
	return nil
}
