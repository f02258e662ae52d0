//go:build attiny85

package main

import (
	"tinytemplate/core"
	"tinytemplate/protocol"
)

var uart *core.SoftSerial

// maskedWriter sends with interrupts masked so the tick timer cannot stretch
// bit periods of outgoing text
type maskedWriter struct {
	s *core.SoftSerial
}

func (w maskedWriter) WriteByte(b byte) error {
	w.s.SendMasked(b)
	return nil
}

// halt parks the CPU after a configuration error
func halt() {
	for {
	}
}

func main() {
	gpio := portBDriver{}
	core.SetGPIODriver(gpio)
	core.SetTimerDriver(timer1Driver{})
	core.SetPWMDriver(timer0PWMDriver{})

	if err := config.Validate(); err != nil {
		halt()
	}

	var err error
	uart, err = core.NewSoftSerialFrameIO(config.Serial, gpio, asmFrame{})
	if err != nil {
		halt()
	}
	if err := uart.Init(); err != nil {
		halt()
	}
	if config.Serial.RxMode == core.RxInterrupt {
		enablePinChange(config.Serial.RxPin)
	}

	out := protocol.NewPrinter(maskedWriter{uart})
	core.SetDebugWriter(func(msg string) {
		out.Print(msg)
		out.Print("\r\n")
	})

	if err := core.ConfigureTicks(config.Tick); err != nil {
		halt()
	}
	if err := core.PWMInit(config.PWMPins...); err != nil {
		halt()
	}

	out.Format("tinytemplate %s baud=%u tick=%uHz\r\n", protocol.Version, uint16(baudRate), uint16(core.TickRate()))

	rate := uint16(core.TickRate())
	lastBanner := core.Ticks()
	lastStep := lastBanner
	var level uint8
	rising := true
	for {
		// Echo whatever the pin-change handler captured
		for uart.Avail() > 0 {
			uart.SendMasked(uart.Recv())
		}

		if core.TicksElapsed(lastStep) >= 1 {
			lastStep = core.Ticks()
			level, rising = breathe(level, rising)
			core.PWMSet(0, level)
			core.PWMOut(pwmA, level)
			core.PWMOut(pwmB, 255-level)
		}

		if core.TicksElapsed(lastBanner) >= rate {
			lastBanner += rate
			out.Format("t=%u\r\n", core.Ticks())
		}
	}
}

// breathe ramps a duty cycle up and down in steps of 8
func breathe(level uint8, rising bool) (uint8, bool) {
	if rising {
		if level >= 248 {
			return 255, false
		}
		return level + 8, true
	}
	if level <= 7 {
		return 0, true
	}
	return level - 8, false
}
