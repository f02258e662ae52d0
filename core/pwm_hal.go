package core

// PWMDriver is the abstract interface for the chip's hardware PWM unit.
// On the ATtiny85 this is TIMER0 in fast PWM mode, limited to two pins.
type PWMDriver interface {
	// ConfigureHardwarePWM makes the pin an output and connects it to its
	// compare unit. Returns an error if the pin has no compare output.
	ConfigureHardwarePWM(pin GPIOPin) error

	// SetDutyCycle sets the duty cycle for a pin
	// value: 0 (fully off) to 255 (fully on)
	SetDutyCycle(pin GPIOPin, value uint8) error
}

// Global singleton used by core code.
var pwmDriver PWMDriver

// SetPWMDriver is called by target-specific code to register its driver.
func SetPWMDriver(d PWMDriver) {
	pwmDriver = d
}

// MustPWM returns the configured driver or panics if missing.
func MustPWM() PWMDriver {
	if pwmDriver == nil {
		panic("PWM driver not configured")
	}
	return pwmDriver
}

// PWMOut sets the output of a hardware PWM pin. The pin is (re)connected to its
// compare unit on every call so it can be used without separate setup.
func PWMOut(pin GPIOPin, value uint8) error {
	drv := MustPWM()
	if err := drv.ConfigureHardwarePWM(pin); err != nil {
		return err
	}
	return drv.SetDutyCycle(pin, value)
}
