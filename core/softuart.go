// Software serial engine
// Half-duplex 8N1 serial on plain GPIO with cycle-counted bit timing
package core

import (
	"tinytemplate/protocol"

	"tinygo.org/x/drivers"
)

// receiver is the receive strategy selected by SerialConfig.RxMode
type receiver interface {
	avail() int
	recv() byte
}

// SoftSerial is a bit-banged serial port.
//
// Idle line state is high with the pin left as an input, so an external pull-up
// holds the line and a start edge from the other end can be detected. Bit timing
// comes from the frame loop alone; any interrupt that fires during a transfer
// stretches the current bit. Use SendMasked/RecvMasked when the tick timer is
// running.
type SoftSerial struct {
	gpio   GPIODriver
	delay  Delayer
	model  CycleModel
	timing Timing
	tx     GPIOPin
	rx     GPIOPin
	mode   RxMode
	rcv    receiver
	frame  FrameIO
}

// SoftSerial satisfies the drivers UART interface so device drivers written
// against it can run over the soft serial link
var _ drivers.UART = (*SoftSerial)(nil)

// NewSoftSerial validates the configuration, derives the timing constants and
// selects the receive strategy. Frames are moved by the engine's own bit loop,
// timed by delay.
func NewSoftSerial(cfg SerialConfig, gpio GPIODriver, delay Delayer) (*SoftSerial, error) {
	s, err := newSoftSerial(cfg, gpio)
	if err != nil {
		return nil, err
	}
	s.delay = delay
	s.frame = bitLoop{s}
	return s, nil
}

// NewSoftSerialFrameIO is NewSoftSerial for targets that move whole frames
// themselves. gpio is still used to set up and release the pins.
func NewSoftSerialFrameIO(cfg SerialConfig, gpio GPIODriver, frame FrameIO) (*SoftSerial, error) {
	s, err := newSoftSerial(cfg, gpio)
	if err != nil {
		return nil, err
	}
	s.frame = frame
	return s, nil
}

func newSoftSerial(cfg SerialConfig, gpio GPIODriver) (*SoftSerial, error) {
	timing, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	s := &SoftSerial{
		gpio:   gpio,
		model:  cfg.cycleModel(),
		timing: timing,
		tx:     cfg.TxPin,
		rx:     cfg.RxPin,
		mode:   cfg.RxMode,
	}
	switch cfg.RxMode {
	case RxInterrupt:
		s.rcv = &bufferedReceiver{s: s, queue: protocol.NewByteQueue(cfg.queueDepth())}
	default:
		s.rcv = &polledReceiver{s: s}
	}
	if debugEnabled {
		DebugPrintln("uart: baud=" + utoa(cfg.BaudRate) +
			" tx=" + utoa(uint32(timing.TxDelay)) +
			" rx=" + utoa(uint32(timing.RxDelay)) +
			" start=" + utoa(uint32(timing.RxStartDelay)))
	}
	return s, nil
}

// Init puts the line(s) into the idle state: input with the pull-up disabled.
// The tx pin is taken through every state Send uses (latch high, output, input,
// latch low) so a driver that rejects the pin fails here rather than mid-frame.
func (s *SoftSerial) Init() error {
	if err := s.gpio.SetPin(s.tx, true); err != nil {
		return err
	}
	if err := s.gpio.ConfigureOutput(s.tx); err != nil {
		return err
	}
	if err := s.idle(s.tx); err != nil {
		return err
	}
	if s.rx != s.tx {
		return s.idle(s.rx)
	}
	return nil
}

// idle releases a pin back to input
func (s *SoftSerial) idle(pin GPIOPin) error {
	if err := s.gpio.ConfigureInput(pin); err != nil {
		return err
	}
	return s.gpio.SetPin(pin, false)
}

// Timing returns the derived delay loop counts
func (s *SoftSerial) Timing() Timing {
	return s.timing
}

// Mode returns the receive strategy
func (s *SoftSerial) Mode() RxMode {
	return s.mode
}

// Send transmits one byte: start bit, 8 data bits LSB first, then the line is
// held high for the stop bit and one more bit period before it is released.
func (s *SoftSerial) Send(b byte) {
	s.frame.SendFrame(b)
}

// bitLoop is the portable FrameIO: one Overhead/Spin pair and one pin access
// per bit, charged at the cycle model's cost
type bitLoop struct {
	s *SoftSerial
}

func (l bitLoop) SendFrame(b byte) {
	s := l.s
	g, d := s.gpio, s.delay
	txDelay := s.timing.TxDelay
	overhead := uint8(s.model.TxBitCycles)

	// Bring the latch high before switching to output so the line never glitches.
	// Init has already seen these succeed on this pin.
	g.SetPin(s.tx, true)
	g.ConfigureOutput(s.tx)
	g.SetPin(s.tx, false)

	// Data bits, then two high bits: the stop bit and the idle guard
	frame := uint16(b) | 0x300
	for n := 0; n < 10; n++ {
		d.Overhead(overhead)
		d.Spin(txDelay)
		g.SetPin(s.tx, frame&1 != 0)
		frame >>= 1
	}

	s.idle(s.tx)
}

func (l bitLoop) RecvFrame(wait bool) byte {
	s := l.s
	start := s.timing.RxIRQStartDelay
	if wait {
		poll := uint8(s.model.PollCycles)
		for s.gpio.ReadPin(s.rx) {
			s.delay.Overhead(poll)
		}
		start = s.timing.RxStartDelay
	}
	return l.sampleFrame(start)
}

// sampleFrame reads the 8 data bits of a frame whose start edge has been seen,
// then waits out the stop bit without sampling it.
func (l bitLoop) sampleFrame(start uint8) byte {
	s := l.s
	g, d := s.gpio, s.delay
	overhead := uint8(s.model.RxBitCycles)

	// The 0x80 sentinel falls out of bit 0 after the eighth sample
	ch := byte(0x80)
	wait := start
	for {
		d.Overhead(overhead)
		d.Spin(wait)
		wait = s.timing.RxDelay
		bit := g.ReadPin(s.rx)
		done := ch&1 != 0
		ch >>= 1
		if bit {
			ch |= 0x80
		}
		if done {
			break
		}
	}

	d.Spin(s.timing.RxDelay)
	return ch
}

// Recv blocks until a byte has been received. There is no timeout: with the
// polled strategy a missing start edge blocks forever.
func (s *SoftSerial) Recv() byte {
	return s.rcv.recv()
}

// Avail returns the number of bytes Recv can return without blocking. Always 0
// for the polled strategy.
func (s *SoftSerial) Avail() int {
	return s.rcv.avail()
}

// PinChange is the pin-change interrupt handler for the interrupt receive
// strategy. Rising edges and pin changes under the polled strategy are ignored.
// The whole frame is sampled inside the handler.
func (s *SoftSerial) PinChange() {
	br, ok := s.rcv.(*bufferedReceiver)
	if !ok {
		return
	}
	if s.gpio.ReadPin(s.rx) {
		return
	}
	br.queue.Push(s.frame.RecvFrame(false))
}

// SendMasked transmits one byte with interrupts disabled so the tick timer
// cannot stretch bit periods
func (s *SoftSerial) SendMasked(b byte) {
	state := disableInterrupts()
	s.Send(b)
	restoreInterrupts(state)
}

// RecvMasked receives one byte with the polled strategy with interrupts disabled
// for the whole wait. Under the interrupt strategy it is the same as Recv.
func (s *SoftSerial) RecvMasked() byte {
	if s.mode == RxInterrupt {
		return s.Recv()
	}
	state := disableInterrupts()
	b := s.Recv()
	restoreInterrupts(state)
	return b
}

// WriteByte implements io.ByteWriter
func (s *SoftSerial) WriteByte(b byte) error {
	s.Send(b)
	return nil
}

// Write implements io.Writer
func (s *SoftSerial) Write(p []byte) (int, error) {
	for _, b := range p {
		s.Send(b)
	}
	return len(p), nil
}

// Read implements io.Reader. It blocks for the first byte and then returns
// whatever else is already buffered.
func (s *SoftSerial) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = s.Recv()
	n := 1
	for n < len(p) && s.Avail() > 0 {
		p[n] = s.Recv()
		n++
	}
	return n, nil
}

// Buffered returns the number of bytes waiting in the receive queue
func (s *SoftSerial) Buffered() int {
	return s.Avail()
}

// polledReceiver waits for the start edge inside Recv
type polledReceiver struct {
	s *SoftSerial
}

func (r *polledReceiver) avail() int {
	return 0
}

func (r *polledReceiver) recv() byte {
	s := r.s
	s.idle(s.rx)
	return s.frame.RecvFrame(true)
}

// bufferedReceiver drains bytes sampled by PinChange
type bufferedReceiver struct {
	s     *SoftSerial
	queue *protocol.ByteQueue
}

func (r *bufferedReceiver) avail() int {
	state := disableInterrupts()
	n := r.queue.Len()
	restoreInterrupts(state)
	return n
}

func (r *bufferedReceiver) recv() byte {
	for {
		state := disableInterrupts()
		b, ok := r.queue.Pop()
		restoreInterrupts(state)
		if ok {
			return b
		}
	}
}
