package core

import "errors"

// Feature selects which subsystems a firmware image uses
type Feature uint8

const (
	FeatureUART  Feature = 1 << iota // Software serial engine
	FeatureTicks                     // System tick counter on the shared timer
	FeaturePWM                       // Software PWM on the shared timer (implies FeatureTicks)
)

// RxMode selects the receive strategy of the serial engine
type RxMode uint8

const (
	// RxPolled busy-waits for the start edge inside Recv. Tx and Rx may share a pin.
	RxPolled RxMode = iota

	// RxInterrupt samples frames from the pin-change interrupt into a queue.
	// Requires a dedicated receive pin.
	RxInterrupt
)

// MaxPWMChannels is the number of software PWM outputs the multiplexer can drive
const MaxPWMChannels = 4

// DefaultRxQueue is the receive queue depth used when SerialConfig.RxQueue is zero
const DefaultRxQueue = 4

var (
	ErrBadClock        = errors.New("clock frequency and baud rate must be non-zero")
	ErrBaudTooLow      = errors.New("baud rate too low for receive delay counter")
	ErrBaudTooHigh     = errors.New("baud rate too high for delay loop overhead")
	ErrSharedRxPin     = errors.New("interrupt receive needs a dedicated rx pin")
	ErrQueueSize       = errors.New("receive queue depth must be 1..256")
	ErrIRQLatency      = errors.New("interrupt entry latency leaves no time before the first bit centre")
	ErrTooManyChannels = errors.New("too many PWM channels")
	ErrBadSubTickStep  = errors.New("sub-tick step must be a power of two below 256")
	ErrBadPrescaler    = errors.New("timer prescaler must be non-zero")
)

// SerialConfig holds the build-time settings of the serial engine
type SerialConfig struct {
	ClockHz  uint32     // CPU clock in Hz
	BaudRate uint32     // Line rate in bits per second
	TxPin    GPIOPin    // Transmit pin
	RxPin    GPIOPin    // Receive pin (same as TxPin for single-pin operation)
	RxMode   RxMode     // Receive strategy
	RxQueue  int        // Receive queue depth for RxInterrupt (0 = DefaultRxQueue)
	Model    CycleModel // Delay loop cycle model (zero value = AVRCycleModel)
}

// cycleModel returns the configured model, defaulting to the AVR loop
func (c *SerialConfig) cycleModel() CycleModel {
	if c.Model == (CycleModel{}) {
		return AVRCycleModel
	}
	return c.Model
}

// queueDepth returns the effective receive queue depth
func (c *SerialConfig) queueDepth() int {
	if c.RxQueue == 0 {
		return DefaultRxQueue
	}
	return c.RxQueue
}

// Validate checks the settings and derives the timing constants
func (c *SerialConfig) Validate() (Timing, error) {
	t, err := DeriveTiming(c.ClockHz, c.BaudRate, c.cycleModel())
	if err != nil {
		return Timing{}, err
	}
	if c.RxMode == RxInterrupt {
		if c.RxPin == c.TxPin {
			return Timing{}, ErrSharedRxPin
		}
		if d := c.queueDepth(); d < 1 || d > 256 {
			return Timing{}, ErrQueueSize
		}
	}
	return t, nil
}

// TickConfig holds the build-time settings of the shared timer
type TickConfig struct {
	ClockHz     uint32 // CPU clock in Hz
	Prescaler   uint32 // Timer clock divider
	SubTickStep uint8  // Sub-tick accumulator increment per overflow (0 = 1)
}

// step returns the effective sub-tick step
func (c TickConfig) step() uint8 {
	if c.SubTickStep == 0 {
		return 1
	}
	return c.SubTickStep
}

// Validate checks the timer settings
func (c TickConfig) Validate() error {
	if c.ClockHz == 0 {
		return ErrBadClock
	}
	if c.Prescaler == 0 {
		return ErrBadPrescaler
	}
	s := c.step()
	if s&(s-1) != 0 {
		return ErrBadSubTickStep
	}
	return nil
}

// OverflowRate returns timer overflow interrupts per second (8-bit timer)
func (c TickConfig) OverflowRate() uint32 {
	if c.Prescaler == 0 {
		return 0
	}
	return c.ClockHz / c.Prescaler / 256
}

// Rate returns ticks per second
func (c TickConfig) Rate() uint32 {
	return c.OverflowRate() * uint32(c.step()) / 256
}

// SubTicksPerTick returns the number of overflow interrupts per tick, which is
// also the number of distinct PWM levels
func (c TickConfig) SubTicksPerTick() uint32 {
	return 256 / uint32(c.step())
}

// TicksFromMS converts milliseconds to ticks, rounding down
func (c TickConfig) TicksFromMS(ms uint32) uint16 {
	return uint16(uint64(ms) * uint64(c.Rate()) / 1000)
}

// TicksToMS converts ticks to milliseconds
func (c TickConfig) TicksToMS(ticks uint16) uint32 {
	rate := c.Rate()
	if rate == 0 {
		return 0
	}
	return uint32(uint64(ticks) * 1000 / uint64(rate))
}

// Config is the complete build-time configuration of a firmware image
type Config struct {
	Features Feature
	Serial   SerialConfig
	Tick     TickConfig
	PWMPins  []GPIOPin
}

// Has reports whether a feature is enabled. PWM implies ticks.
func (c *Config) Has(f Feature) bool {
	features := c.Features
	if features&FeaturePWM != 0 {
		features |= FeatureTicks
	}
	return features&f == f
}

// Validate checks every enabled subsystem
func (c *Config) Validate() error {
	if c.Has(FeatureUART) {
		if _, err := c.Serial.Validate(); err != nil {
			return err
		}
	}
	if c.Has(FeatureTicks) {
		if err := c.Tick.Validate(); err != nil {
			return err
		}
	}
	if c.Has(FeaturePWM) && len(c.PWMPins) > MaxPWMChannels {
		return ErrTooManyChannels
	}
	return nil
}
