package serial

import (
	"io"

	"tinytemplate/protocol"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush discards data received but not yet read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate, must match the firmware build
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the configuration matching the default firmware build
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        protocol.DefaultBaud,
		ReadTimeout: 100,
	}
}
