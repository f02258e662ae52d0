package core

// The system tick and the software PWM generator share the chip's only general
// purpose timer. Each overflow interrupt advances an 8-bit sub-tick accumulator;
// PWM outputs are compared against it and the 16-bit tick counter advances every
// time it wraps to zero.

// pwmChannel is one software PWM output
type pwmChannel struct {
	pin  GPIOPin
	duty uint8
}

// tickState is everything the overflow interrupt touches
type tickState struct {
	ticks   uint16 // main tick counter, wraps silently
	subTick uint8  // sub-tick accumulator
	step    uint8  // accumulator increment per interrupt
	cfg     TickConfig

	gpio     GPIODriver
	pwm      [MaxPWMChannels]pwmChannel
	pwmCount uint8
}

var ticker = tickState{step: 1}

// tickConfig is the timer configuration used by TickInit
var tickConfig = TickConfig{ClockHz: 8000000, Prescaler: 8, SubTickStep: 4}

// ConfigureTicks sets the timer configuration used by TickInit and PWMInit.
// Targets call it once with their build-time settings.
func ConfigureTicks(cfg TickConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	tickConfig = cfg
	return nil
}

// TickInit resets the tick counter and sub-tick accumulator and starts the timer
// overflow interrupt. A tick is 256/SubTickStep overflows long.
func TickInit() error {
	state := disableInterrupts()
	storeTicks(&ticker, 0)
	ticker.subTick = 0
	ticker.step = tickConfig.step()
	ticker.cfg = tickConfig
	restoreInterrupts(state)

	if debugEnabled {
		DebugPrintln("ticks: rate=" + utoa(tickConfig.Rate()) + "Hz levels=" + utoa(tickConfig.SubTicksPerTick()))
	}
	return MustTimer().StartOverflowTimer(tickConfig)
}

// Ticks returns the current tick count. The count wraps at 65536.
func Ticks() uint16 {
	state := disableInterrupts()
	t := loadTicks(&ticker)
	restoreInterrupts(state)
	return t
}

// TicksElapsed returns the ticks elapsed since reference. One wrap of the counter
// is handled; the caller must sample more often than once per 65536 ticks because
// further wraps are indistinguishable.
func TicksElapsed(reference uint16) uint16 {
	return Ticks() - reference
}

// TickRate returns ticks per second for the active configuration
func TickRate() uint32 {
	return tickConfig.Rate()
}

// PWMInit zeroes every channel, drives each pin as a low output and starts the
// shared timer through TickInit. Channel i is driven on pins[i].
func PWMInit(pins ...GPIOPin) error {
	if len(pins) > MaxPWMChannels {
		return ErrTooManyChannels
	}

	gpio := MustGPIO()
	state := disableInterrupts()
	ticker.pwmCount = 0
	restoreInterrupts(state)

	for i, pin := range pins {
		if err := gpio.SetPin(pin, false); err != nil {
			return err
		}
		if err := gpio.ConfigureOutput(pin); err != nil {
			return err
		}
		ticker.pwm[i] = pwmChannel{pin: pin}
	}
	for i := len(pins); i < MaxPWMChannels; i++ {
		ticker.pwm[i] = pwmChannel{}
	}

	state = disableInterrupts()
	ticker.gpio = gpio
	ticker.pwmCount = uint8(len(pins))
	restoreInterrupts(state)

	return TickInit()
}

// PWMSet sets the duty cycle of a channel (0 = off, 255 = on). Out of range
// channels are ignored. Each channel must have a single writer.
func PWMSet(channel uint8, duty uint8) {
	if channel >= ticker.pwmCount {
		return
	}
	ticker.pwm[channel].duty = duty
}

// PWMGet returns the duty cycle of a channel, or 0 for an out of range channel
func PWMGet(channel uint8) uint8 {
	if channel >= ticker.pwmCount {
		return 0
	}
	return ticker.pwm[channel].duty
}

// PWMChannels returns the number of configured PWM channels
func PWMChannels() uint8 {
	return ticker.pwmCount
}

// TimerOverflow is the timer overflow interrupt handler. Targets call it from
// their interrupt vector; it must run with interrupts masked.
func TimerOverflow() {
	t := &ticker
	t.subTick += t.step

	// Edge aligned: every channel is high while the accumulator is below its duty.
	// PWMInit has already seen SetPin succeed on each pin.
	for i := uint8(0); i < t.pwmCount; i++ {
		ch := &t.pwm[i]
		t.gpio.SetPin(ch.pin, t.subTick < ch.duty)
	}

	if t.subTick == 0 {
		storeTicks(t, loadTicks(t)+1)
	}
}
