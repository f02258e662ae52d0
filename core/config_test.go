package core

import "testing"

func TestSerialConfigValidate(t *testing.T) {
	base := SerialConfig{ClockHz: 8000000, BaudRate: 57600, TxPin: 3, RxPin: 3}

	if _, err := base.Validate(); err != nil {
		t.Errorf("single pin polled config rejected: %v", err)
	}

	shared := base
	shared.RxMode = RxInterrupt
	if _, err := shared.Validate(); err != ErrSharedRxPin {
		t.Errorf("interrupt receive on shared pin: error = %v, expected %v", err, ErrSharedRxPin)
	}

	twoPin := shared
	twoPin.RxPin = 4
	if _, err := twoPin.Validate(); err != nil {
		t.Errorf("two pin interrupt config rejected: %v", err)
	}

	big := twoPin
	big.RxQueue = 257
	if _, err := big.Validate(); err != ErrQueueSize {
		t.Errorf("queue depth 257: error = %v, expected %v", err, ErrQueueSize)
	}

	// 190 cycles of entry latency is more than a whole bit at 57600
	late := twoPin
	late.Model = AVRCycleModel
	late.Model.IRQLatency = 190
	if _, err := late.Validate(); err != ErrIRQLatency {
		t.Errorf("latency past the start bit: error = %v, expected %v", err, ErrIRQLatency)
	}
	late.RxMode = RxPolled
	if _, err := late.Validate(); err != nil {
		t.Errorf("latency rejected for polled receive: %v", err)
	}

	slow := base
	slow.BaudRate = 9600
	if _, err := slow.Validate(); err != ErrBaudTooLow {
		t.Errorf("9600 baud: error = %v, expected %v", err, ErrBaudTooLow)
	}
}

func TestTickConfig(t *testing.T) {
	cfg := TickConfig{ClockHz: 8000000, Prescaler: 8, SubTickStep: 4}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if r := cfg.OverflowRate(); r != 3906 {
		t.Errorf("OverflowRate = %d, expected 3906", r)
	}
	if r := cfg.Rate(); r != 61 {
		t.Errorf("Rate = %d, expected 61", r)
	}
	if n := cfg.SubTicksPerTick(); n != 64 {
		t.Errorf("SubTicksPerTick = %d, expected 64", n)
	}
	if n := cfg.TicksFromMS(1000); n != 61 {
		t.Errorf("TicksFromMS(1000) = %d, expected 61", n)
	}
	if ms := cfg.TicksToMS(122); ms != 2000 {
		t.Errorf("TicksToMS(122) = %d, expected 2000", ms)
	}

	badSteps := []uint8{3, 5, 6, 12, 255}
	for _, s := range badSteps {
		c := cfg
		c.SubTickStep = s
		if err := c.Validate(); err != ErrBadSubTickStep {
			t.Errorf("step %d: error = %v, expected %v", s, err, ErrBadSubTickStep)
		}
	}

	noPrescale := cfg
	noPrescale.Prescaler = 0
	if err := noPrescale.Validate(); err != ErrBadPrescaler {
		t.Errorf("prescaler 0: error = %v, expected %v", err, ErrBadPrescaler)
	}
}

func TestConfigFeatures(t *testing.T) {
	cfg := Config{
		Features: FeatureUART | FeaturePWM,
		Serial:   SerialConfig{ClockHz: 8000000, BaudRate: 57600, TxPin: 3, RxPin: 3},
		Tick:     TickConfig{ClockHz: 8000000, Prescaler: 8, SubTickStep: 4},
		PWMPins:  []GPIOPin{0, 1, 4},
	}

	if !cfg.Has(FeatureTicks) {
		t.Error("PWM should imply ticks")
	}
	if !cfg.Has(FeatureUART | FeaturePWM) {
		t.Error("expected UART and PWM enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}

	cfg.PWMPins = []GPIOPin{0, 1, 2, 3, 4}
	if err := cfg.Validate(); err != ErrTooManyChannels {
		t.Errorf("five PWM pins: error = %v, expected %v", err, ErrTooManyChannels)
	}

	// Disabled subsystems are not validated
	uartOnly := Config{Features: FeatureUART, Serial: cfg.Serial}
	if err := uartOnly.Validate(); err != nil {
		t.Errorf("UART only config rejected: %v", err)
	}
	if uartOnly.Has(FeatureTicks) {
		t.Error("UART only config should not have ticks")
	}
}
