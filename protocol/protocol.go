// Package protocol holds the byte-level helpers shared by the firmware and the
// host tools: the serial receive queue, text output formatting and CRC16.
package protocol

// Version represents the firmware version
const Version = "0.1.0"

// Serial frame format. The link is fixed at 8N1, idle high, LSB first.
const (
	FrameDataBits = 8
	FrameStopBits = 1
	FrameBits     = 1 + FrameDataBits + FrameStopBits // start + data + stop

	// DefaultBaud is the line rate the firmware images are built for
	DefaultBaud = 57600
)
