//go:build attiny85

package main

import "tinytemplate/core"

// Build-time settings. Changing any of these re-derives the delay constants; the
// guards in guard.go stop the build when the combination cannot work.
const (
	clockHz  = 8000000
	baudRate = 57600

	txPin core.GPIOPin = 3 // PB3
	rxPin core.GPIOPin = 4 // PB4, pin-change receive

	timerPrescaler = 8
	subTickStep    = 4
)

// Soft PWM runs on the pin the serial link and TIMER0 leave free
var softPWMPins = []core.GPIOPin{2} // PB2

// Hardware PWM outputs of TIMER0
const (
	pwmA core.GPIOPin = 0 // PB0, OC0A
	pwmB core.GPIOPin = 1 // PB1, OC0B
)

// serialModel is the cost of the assembly frame loops in frame.go plus the
// pin-change entry latency
var serialModel = func() core.CycleModel {
	m := core.AVRCycleModel
	m.IRQLatency = pinChangeLatency
	return m
}()

var config = core.Config{
	Features: core.FeatureUART | core.FeaturePWM,
	Serial: core.SerialConfig{
		ClockHz:  clockHz,
		BaudRate: baudRate,
		TxPin:    txPin,
		RxPin:    rxPin,
		RxMode:   core.RxInterrupt,
		RxQueue:  core.DefaultRxQueue,
		Model:    serialModel,
	},
	Tick: core.TickConfig{
		ClockHz:     clockHz,
		Prescaler:   timerPrescaler,
		SubTickStep: subTickStep,
	},
	PWMPins: softPWMPins,
}
