// Package link exercises a device running the echo firmware over a serial port.
package link

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/golang/glog"

	"tinytemplate/host/serial"
	"tinytemplate/protocol"
)

// DefaultChunk is how many bytes are sent before waiting for their echo. The
// firmware masks interrupts while echoing, so a burst longer than its receive
// queue loses bytes.
const DefaultChunk = 1

// ErrTimeout is returned when the echo does not arrive before the deadline
var ErrTimeout = errors.New("timed out waiting for echo")

// Patterns lists the test patterns Pattern can build
var Patterns = []string{"ramp", "zeros", "ones", "alt", "random"}

// Pattern builds n bytes of a named test pattern
func Pattern(name string, n int) ([]byte, error) {
	data := make([]byte, n)
	switch name {
	case "ramp":
		for i := range data {
			data[i] = byte(i)
		}
	case "zeros":
	case "ones":
		for i := range data {
			data[i] = 0xFF
		}
	case "alt":
		for i := range data {
			if i%2 == 0 {
				data[i] = 0x55
			} else {
				data[i] = 0xAA
			}
		}
	case "random":
		rand.New(rand.NewSource(int64(n))).Read(data)
	default:
		return nil, fmt.Errorf("unknown pattern %q", name)
	}
	return data, nil
}

// Result is the outcome of one echo run
type Result struct {
	Sent        []byte
	Received    []byte
	SentCRC     uint16
	ReceivedCRC uint16
	Elapsed     time.Duration
}

// OK reports whether everything came back intact
func (r *Result) OK() bool {
	return len(r.Received) == len(r.Sent) && r.SentCRC == r.ReceivedCRC
}

// Errors returns the number of missing or corrupted bytes
func (r *Result) Errors() int {
	n := 0
	for i, b := range r.Sent {
		if i >= len(r.Received) || r.Received[i] != b {
			n++
		}
	}
	return n
}

// BytesPerSecond returns the round trip throughput
func (r *Result) BytesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(len(r.Received)) / r.Elapsed.Seconds()
}

// Checker sends data to an echoing device and compares what comes back
type Checker struct {
	port    serial.Port
	timeout time.Duration
	chunk   int
}

// NewChecker creates a checker waiting up to timeout for each chunk's echo
func NewChecker(port serial.Port, timeout time.Duration) *Checker {
	return &Checker{port: port, timeout: timeout, chunk: DefaultChunk}
}

// SetChunk sets how many bytes are sent before waiting for the echo
func (c *Checker) SetChunk(n int) {
	if n < 1 {
		n = 1
	}
	c.chunk = n
}

// Drain discards anything the device sent before the check, such as its banner
func (c *Checker) Drain() error {
	if err := c.port.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Echo sends data chunk by chunk and collects the echo. A timeout ends the run
// early; the partial result is returned along with ErrTimeout.
func (c *Checker) Echo(data []byte) (*Result, error) {
	res := &Result{Sent: data, SentCRC: protocol.CRC16(data)}
	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		res.ReceivedCRC = protocol.CRC16(res.Received)
	}()

	for off := 0; off < len(data); off += c.chunk {
		end := off + c.chunk
		if end > len(data) {
			end = len(data)
		}
		if _, err := c.port.Write(data[off:end]); err != nil {
			return res, fmt.Errorf("write: %w", err)
		}
		got, err := c.readN(end - off)
		res.Received = append(res.Received, got...)
		if err != nil {
			glog.V(1).Infof("echo stopped at byte %d of %d: %v", len(res.Received), len(data), err)
			return res, err
		}
	}
	glog.V(2).Infof("echoed %d bytes crc=%04X", len(data), res.SentCRC)
	return res, nil
}

// Collect reads whatever the device sends until it has been quiet for the timeout
func (c *Checker) Collect() ([]byte, error) {
	var out []byte
	buf := make([]byte, 64)
	deadline := time.Now().Add(c.timeout)
	for time.Now().Before(deadline) {
		n, err := c.port.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			deadline = time.Now().Add(c.timeout)
		}
		if err != nil && err != io.EOF {
			return out, fmt.Errorf("read: %w", err)
		}
	}
	return out, nil
}

// readN reads exactly n bytes or gives up at the deadline
func (c *Checker) readN(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	deadline := time.Now().Add(c.timeout)
	for len(out) < n {
		if time.Now().After(deadline) {
			return out, ErrTimeout
		}
		m, err := c.port.Read(buf[:n-len(out)])
		out = append(out, buf[:m]...)
		if err != nil && err != io.EOF {
			return out, fmt.Errorf("read: %w", err)
		}
	}
	return out, nil
}
