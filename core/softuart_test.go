package core_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"tinytemplate/core"
	"tinytemplate/protocol"
	"tinytemplate/sim"
)

const (
	txPin core.GPIOPin = 3
	rxPin core.GPIOPin = 4
)

// simPort builds a serial port on a simulated line
func simPort(t *testing.T, cfg core.SerialConfig) (*core.SoftSerial, *sim.Line, *sim.Clock) {
	t.Helper()
	model := cfg.Model
	if model == (core.CycleModel{}) {
		model = core.AVRCycleModel
	}
	clock := sim.NewClock(model)
	line := sim.NewLine(clock)
	port, err := core.NewSoftSerial(cfg, line, clock)
	if err != nil {
		t.Fatalf("NewSoftSerial failed: %v", err)
	}
	if err := port.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return port, line, clock
}

func polledConfig(clock, baud uint32) core.SerialConfig {
	return core.SerialConfig{ClockHz: clock, BaudRate: baud, TxPin: txPin, RxPin: txPin}
}

func interruptConfig(depth int) core.SerialConfig {
	return core.SerialConfig{
		ClockHz:  8000000,
		BaudRate: 57600,
		TxPin:    txPin,
		RxPin:    rxPin,
		RxMode:   core.RxInterrupt,
		RxQueue:  depth,
	}
}

func bitCycles(cfg core.SerialConfig) float64 {
	return float64(cfg.ClockHz) / float64(cfg.BaudRate)
}

func TestLoopbackAllBytes(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	testCases := []struct {
		clock uint32
		baud  uint32
	}{
		{8000000, 57600},
		{8000000, 115200},
		{8000000, 230400},
		{8000000, 38400},
		{9600000, 57600},
		{16000000, 115200},
		{1000000, 9600},
	}

	for _, tc := range testCases {
		res, err := sim.Loopback(polledConfig(tc.clock, tc.baud), data)
		if err != nil {
			t.Errorf("%d/%d: Loopback failed: %v", tc.clock, tc.baud, err)
			continue
		}
		if bad := res.Mismatches(); len(bad) != 0 {
			t.Errorf("%d/%d: %d bytes corrupted, first at %d", tc.clock, tc.baud, len(bad), bad[0])
		}
		if res.MaxTxError >= 0.03 {
			t.Errorf("%d/%d: bit period error %.2f%%", tc.clock, tc.baud, res.MaxTxError*100)
		}
	}
}

func TestSendWaveform(t *testing.T) {
	cfg := polledConfig(8000000, 57600)
	port, line, _ := simPort(t, cfg)

	port.Send('U')
	tr := line.Trace(txPin)

	if len(tr) == 0 || tr[0].Level {
		t.Fatalf("trace does not start with a falling edge: %v", tr)
	}
	if !tr[len(tr)-1].Level {
		t.Error("line not left high after the frame")
	}
	if line.IsOutput(txPin) {
		t.Error("tx pin still an output after Send")
	}
	if got := sim.Decode(tr, bitCycles(cfg)); !bytes.Equal(got, []byte{'U'}) {
		t.Errorf("decoded %q, expected %q", got, "U")
	}

	// 'U' alternates every bit so every edge is one bit period apart
	if e := tr.MaxBitError(bitCycles(cfg)); e >= 0.03 {
		t.Errorf("bit period error %.2f%%", e*100)
	}
}

func TestPrinterOverSerial(t *testing.T) {
	cfg := polledConfig(8000000, 57600)
	port, line, _ := simPort(t, cfg)

	p := protocol.NewPrinter(port)
	p.Format("t=%u h=%x %s%%\r\n", uint16(42), uint16(0xbeef), "ok")

	got := sim.Decode(line.Trace(txPin), bitCycles(cfg))
	if want := "t=42 h=BEEF ok%\r\n"; string(got) != want {
		t.Errorf("decoded %q, expected %q", got, want)
	}
}

func TestWriteAndSendMasked(t *testing.T) {
	cfg := polledConfig(8000000, 57600)
	port, line, _ := simPort(t, cfg)

	n, err := port.Write([]byte("hi"))
	if err != nil || n != 2 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	port.SendMasked('!')

	got := sim.Decode(line.Trace(txPin), bitCycles(cfg))
	if string(got) != "hi!" {
		t.Errorf("decoded %q, expected %q", got, "hi!")
	}
}

func TestPolledReceive(t *testing.T) {
	cfg := polledConfig(8000000, 57600)
	port, line, clock := simPort(t, cfg)

	if port.Avail() != 0 || port.Buffered() != 0 {
		t.Error("polled port reports buffered bytes")
	}

	// An interrupt under the polled strategy is ignored
	core.SimulateInterrupt(port.PinChange)
	if port.Avail() != 0 {
		t.Error("pin change buffered a byte under the polled strategy")
	}

	bit := bitCycles(cfg)
	line.Drive(txPin, sim.Frame(0xA5, bit, clock.Now()+100))
	if b := port.RecvMasked(); b != 0xA5 {
		t.Errorf("RecvMasked = %#02x, expected 0xA5", b)
	}
	if line.IsOutput(txPin) {
		t.Error("rx pin left as an output")
	}
}

func TestInterruptReceiveQueue(t *testing.T) {
	cfg := interruptConfig(4)
	port, line, clock := simPort(t, cfg)

	sim.Inject(port, line, clock, rxPin, bitCycles(cfg), 'a', 'b', 'c', 'd', 'e')

	// The fifth byte found the queue full and was dropped
	if port.Avail() != 4 {
		t.Fatalf("Avail() = %d, expected 4", port.Avail())
	}
	for _, want := range []byte("abcd") {
		if b := port.Recv(); b != want {
			t.Errorf("Recv() = %q, expected %q", b, want)
		}
	}
	if port.Avail() != 0 {
		t.Errorf("Avail() = %d after draining, expected 0", port.Avail())
	}

	// Space frees up again once drained
	sim.Inject(port, line, clock, rxPin, bitCycles(cfg), 'f')
	if b := port.Recv(); b != 'f' {
		t.Errorf("Recv() = %q, expected 'f'", b)
	}
}

func TestInterruptIgnoresRisingEdge(t *testing.T) {
	port, _, _ := simPort(t, interruptConfig(4))

	// The idle line reads high, which is what the handler sees on a rising edge
	core.SimulateInterrupt(port.PinChange)
	if port.Avail() != 0 {
		t.Errorf("Avail() = %d after a rising edge, expected 0", port.Avail())
	}
}

func TestInterruptAllBytes(t *testing.T) {
	cfg := interruptConfig(1)
	port, line, clock := simPort(t, cfg)

	for i := 0; i < 256; i++ {
		sim.Inject(port, line, clock, rxPin, bitCycles(cfg), byte(i))
		if b := port.Recv(); b != byte(i) {
			t.Errorf("Recv() = %#02x, expected %#02x", b, i)
		}
	}
}

func TestRead(t *testing.T) {
	cfg := interruptConfig(8)
	port, line, clock := simPort(t, cfg)

	sim.Inject(port, line, clock, rxPin, bitCycles(cfg), []byte("hello")...)
	if port.Buffered() != 5 {
		t.Fatalf("Buffered() = %d, expected 5", port.Buffered())
	}

	buf := make([]byte, 3)
	n, err := port.Read(buf)
	if err != nil || n != 3 || string(buf[:n]) != "hel" {
		t.Errorf("Read = %d %q %v, expected 3 \"hel\"", n, buf[:n], err)
	}
	n, err = port.Read(buf)
	if err != nil || n != 2 || string(buf[:n]) != "lo" {
		t.Errorf("Read = %d %q %v, expected 2 \"lo\"", n, buf[:n], err)
	}
	if n, _ := port.Read(nil); n != 0 {
		t.Errorf("Read(nil) = %d, expected 0", n)
	}
}

func TestRecvBlocksUntilInterrupt(t *testing.T) {
	cfg := interruptConfig(4)
	port, line, clock := simPort(t, cfg)

	got := make(chan byte, 1)
	go func() {
		got <- port.Recv()
	}()

	select {
	case b := <-got:
		t.Fatalf("Recv returned %q before any byte arrived", b)
	case <-time.After(20 * time.Millisecond):
	}

	sim.Inject(port, line, clock, rxPin, bitCycles(cfg), 'z')

	select {
	case b := <-got:
		if b != 'z' {
			t.Errorf("Recv() = %q, expected 'z'", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not return after the interrupt")
	}
}

func TestNewSoftSerialRejects(t *testing.T) {
	clock := sim.NewClock(core.AVRCycleModel)
	line := sim.NewLine(clock)

	shared := interruptConfig(4)
	shared.RxPin = shared.TxPin
	if _, err := core.NewSoftSerial(shared, line, clock); err != core.ErrSharedRxPin {
		t.Errorf("shared pin: error = %v, expected %v", err, core.ErrSharedRxPin)
	}
	if _, err := core.NewSoftSerial(polledConfig(8000000, 9600), line, clock); err != core.ErrBaudTooLow {
		t.Errorf("9600 baud: error = %v, expected %v", err, core.ErrBaudTooLow)
	}
}

func TestDebugOutputOverSerial(t *testing.T) {
	cfg := polledConfig(8000000, 57600)
	port, line, _ := simPort(t, cfg)

	core.SetDebugWriter(func(msg string) {
		port.Write([]byte(msg + "\r\n"))
	})
	core.SetDebugEnabled(true)
	defer func() {
		core.SetDebugEnabled(false)
		core.SetDebugWriter(nil)
	}()

	core.DebugPrintln("boot")
	got := sim.Decode(line.Trace(txPin), bitCycles(cfg))
	if string(got) != "boot\r\n" {
		t.Errorf("decoded %q, expected %q", got, "boot\r\n")
	}
}

func TestInterruptReceiveWithEntryLatency(t *testing.T) {
	cfg := interruptConfig(1)
	cfg.Model = core.AVRCycleModel
	cfg.Model.IRQLatency = 110
	port, line, clock := simPort(t, cfg)

	if d := port.Timing().RxIRQStartDelay; d != 63-37 {
		t.Fatalf("RxIRQStartDelay = %d, expected %d", d, 63-37)
	}

	// The handler starts 110 cycles after the edge and still lands every sample
	// inside its bit
	for i := 0; i < 256; i++ {
		sim.Inject(port, line, clock, rxPin, bitCycles(cfg), byte(i))
		if b := port.Recv(); b != byte(i) {
			t.Errorf("Recv() = %#02x, expected %#02x", b, i)
		}
	}
}

func TestInterruptQueueFullDepth(t *testing.T) {
	cfg := interruptConfig(256)
	port, line, clock := simPort(t, cfg)

	data := make([]byte, 257)
	for i := range data {
		data[i] = byte(i)
	}
	sim.Inject(port, line, clock, rxPin, bitCycles(cfg), data...)

	if port.Avail() != 256 || port.Buffered() != 256 {
		t.Fatalf("Avail() = %d, Buffered() = %d, expected 256", port.Avail(), port.Buffered())
	}
	for i := 0; i < 256; i++ {
		if b := port.Recv(); b != byte(i) {
			t.Fatalf("Recv() = %#02x, expected %#02x", b, i)
		}
	}
	if port.Avail() != 0 {
		t.Errorf("Avail() = %d after draining, expected 0", port.Avail())
	}
}

// recordingFrame is a FrameIO that logs what the engine asks of it
type recordingFrame struct {
	sent  []byte
	waits []bool
	next  byte
}

func (f *recordingFrame) SendFrame(b byte) {
	f.sent = append(f.sent, b)
}

func (f *recordingFrame) RecvFrame(wait bool) byte {
	f.waits = append(f.waits, wait)
	f.next++
	return f.next
}

func TestFrameIOPolled(t *testing.T) {
	clock := sim.NewClock(core.AVRCycleModel)
	line := sim.NewLine(clock)
	frame := &recordingFrame{}
	port, err := core.NewSoftSerialFrameIO(polledConfig(8000000, 57600), line, frame)
	if err != nil {
		t.Fatalf("NewSoftSerialFrameIO failed: %v", err)
	}
	if err := port.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	port.Write([]byte("ok"))
	port.SendMasked('!')
	if string(frame.sent) != "ok!" {
		t.Errorf("frames sent %q, expected %q", frame.sent, "ok!")
	}
	if tr := line.Trace(txPin); len(tr) != 0 {
		t.Errorf("engine drove the line itself: %v", tr)
	}

	if b := port.Recv(); b != 1 {
		t.Errorf("Recv() = %d, expected 1", b)
	}
	if len(frame.waits) != 1 || !frame.waits[0] {
		t.Errorf("RecvFrame calls %v, expected one polling call", frame.waits)
	}
	if line.IsOutput(txPin) {
		t.Error("rx pin not released to input before polling")
	}
}

func TestFrameIOInterrupt(t *testing.T) {
	clock := sim.NewClock(core.AVRCycleModel)
	line := sim.NewLine(clock)
	frame := &recordingFrame{}
	port, err := core.NewSoftSerialFrameIO(interruptConfig(4), line, frame)
	if err != nil {
		t.Fatalf("NewSoftSerialFrameIO failed: %v", err)
	}

	// Idle line: a rising edge, nothing is sampled
	core.SimulateInterrupt(port.PinChange)
	if len(frame.waits) != 0 {
		t.Fatalf("RecvFrame called on a rising edge")
	}

	line.Drive(rxPin, sim.Frame(0, bitCycles(interruptConfig(4)), clock.Now()))
	core.SimulateInterrupt(port.PinChange)
	if len(frame.waits) != 1 || frame.waits[0] {
		t.Fatalf("RecvFrame calls %v, expected one call past the start edge", frame.waits)
	}
	if port.Avail() != 1 {
		t.Fatalf("Avail() = %d, expected 1", port.Avail())
	}
	if b := port.Recv(); b != 1 {
		t.Errorf("Recv() = %d, expected 1", b)
	}
}

var errPinRejected = errors.New("pin rejected")

// pickyLine rejects one operation on one pin
type pickyLine struct {
	*sim.Line
	pin    core.GPIOPin
	output bool
}

func (l pickyLine) ConfigureOutput(pin core.GPIOPin) error {
	if l.output && pin == l.pin {
		return errPinRejected
	}
	return l.Line.ConfigureOutput(pin)
}

func (l pickyLine) ConfigureInput(pin core.GPIOPin) error {
	if !l.output && pin == l.pin {
		return errPinRejected
	}
	return l.Line.ConfigureInput(pin)
}

func TestInitSurfacesDriverErrors(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    core.SerialConfig
		pin    core.GPIOPin
		output bool
	}{
		{"tx output", polledConfig(8000000, 57600), txPin, true},
		{"tx input", polledConfig(8000000, 57600), txPin, false},
		{"rx input", interruptConfig(4), rxPin, false},
	}

	for _, tc := range testCases {
		clock := sim.NewClock(core.AVRCycleModel)
		line := pickyLine{Line: sim.NewLine(clock), pin: tc.pin, output: tc.output}
		port, err := core.NewSoftSerial(tc.cfg, line, clock)
		if err != nil {
			t.Fatalf("%s: NewSoftSerial failed: %v", tc.name, err)
		}
		if err := port.Init(); err != errPinRejected {
			t.Errorf("%s: Init error = %v, expected %v", tc.name, err, errPinRejected)
		}
		if tr := line.Trace(tc.cfg.TxPin); len(tr) != 0 {
			t.Errorf("%s: Init moved the tx line: %v", tc.name, tr)
		}
	}
}
