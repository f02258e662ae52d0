package core

import (
	"errors"
	"testing"
)

// mockPWMDriver is a test implementation of PWMDriver
type mockPWMDriver struct {
	configured map[GPIOPin]int
	duty       map[GPIOPin]uint8
}

func newMockPWMDriver() *mockPWMDriver {
	return &mockPWMDriver{
		configured: make(map[GPIOPin]int),
		duty:       make(map[GPIOPin]uint8),
	}
}

var errNoCompare = errors.New("pin has no compare output")

func (m *mockPWMDriver) ConfigureHardwarePWM(pin GPIOPin) error {
	if pin > 1 {
		return errNoCompare
	}
	m.configured[pin]++
	return nil
}

func (m *mockPWMDriver) SetDutyCycle(pin GPIOPin, value uint8) error {
	m.duty[pin] = value
	return nil
}

func TestPWMOut(t *testing.T) {
	drv := newMockPWMDriver()
	SetPWMDriver(drv)
	defer SetPWMDriver(nil)

	if err := PWMOut(0, 200); err != nil {
		t.Fatalf("PWMOut(0) failed: %v", err)
	}
	if err := PWMOut(0, 10); err != nil {
		t.Fatalf("PWMOut(0) failed: %v", err)
	}
	if drv.duty[0] != 10 {
		t.Errorf("duty = %d, expected 10", drv.duty[0])
	}
	if drv.configured[0] != 2 {
		t.Errorf("pin configured %d times, expected 2", drv.configured[0])
	}

	if err := PWMOut(3, 50); err != errNoCompare {
		t.Errorf("PWMOut(3) error = %v, expected %v", err, errNoCompare)
	}
	if _, ok := drv.duty[3]; ok {
		t.Error("duty written for a pin that failed to configure")
	}
}

func TestMustPWMPanicsWithoutDriver(t *testing.T) {
	SetPWMDriver(nil)
	defer func() {
		if recover() == nil {
			t.Error("MustPWM did not panic")
		}
	}()
	MustPWM()
}
