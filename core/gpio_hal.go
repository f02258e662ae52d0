package core

// GPIOPin identifies a bit on the chip's single I/O port
type GPIOPin uint8

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle the port registers.
//
// Errors are checked when a pin is first set up (SoftSerial.Init, PWMInit).
// After that the serial bit loop and the timer interrupt call SetPin and the
// Configure methods without looking at the result, so a driver must not fail
// them for a pin it has accepted once.
type GPIODriver interface {
	// ConfigureOutput switches a pin to output mode
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInput switches a pin to input mode with the pull-up disabled
	ConfigureInput(pin GPIOPin) error

	// SetPin drives the output latch high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// ReadPin samples the current pin level
	ReadPin(pin GPIOPin) bool
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}
