//go:build attiny85

package main

import (
	"device/avr"
	"runtime/interrupt"

	"tinytemplate/core"
)

const (
	timskTOIE1 = 1 << 2
	tccr1CS    = 0x0F
)

// timer1Driver runs TIMER1 in normal mode as the shared tick/PWM timer
type timer1Driver struct{}

// clockSelect maps a prescaler to the TCCR1 CS1[3:0] field: /1 is 1, /2 is 2,
// /4 is 3 and so on up to /16384
func clockSelect(prescaler uint32) (uint8, error) {
	for cs := uint8(1); cs <= 15; cs++ {
		if uint32(1)<<(cs-1) == prescaler {
			return cs, nil
		}
	}
	return 0, core.ErrBadPrescaler
}

func (timer1Driver) StartOverflowTimer(cfg core.TickConfig) error {
	cs, err := clockSelect(cfg.Prescaler)
	if err != nil {
		return err
	}

	state := interrupt.Disable()
	avr.TCCR1.Set(0)
	avr.TCNT1.Set(0)
	avr.TCCR1.Set(cs & tccr1CS)
	avr.TIMSK.SetBits(timskTOIE1)
	interrupt.Restore(state)

	interrupt.New(avr.IRQ_TIMER1_OVF, func(interrupt.Interrupt) {
		core.TimerOverflow()
	})
	return nil
}
