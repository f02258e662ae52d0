package sim

import (
	"sort"
	"sync"

	"tinytemplate/core"
)

// pinState is the simulated state of one port bit
type pinState struct {
	output bool  // direction register
	latch  bool  // output latch
	trace  Trace // levels the firmware drove onto the line
	input  Trace // levels the outside world drives while the pin is an input
}

// driven returns the level the pin puts on the line. An input floats high
// through the external pull-up.
func (p *pinState) driven() bool {
	return !p.output || p.latch
}

// Line simulates the chip's I/O port. It implements core.GPIODriver.
type Line struct {
	mu    sync.Mutex
	clock *Clock
	pins  map[core.GPIOPin]*pinState
}

var _ core.GPIODriver = (*Line)(nil)

// NewLine creates a port whose edges are timestamped by clock
func NewLine(clock *Clock) *Line {
	return &Line{clock: clock, pins: make(map[core.GPIOPin]*pinState)}
}

func (l *Line) pin(pin core.GPIOPin) *pinState {
	p, ok := l.pins[pin]
	if !ok {
		p = &pinState{}
		l.pins[pin] = p
	}
	return p
}

// update records an edge if the driven level changed
func (l *Line) update(p *pinState, before bool) {
	if after := p.driven(); after != before {
		p.trace = append(p.trace, Edge{At: l.clock.Now(), Level: after})
	}
}

// ConfigureOutput implements core.GPIODriver
func (l *Line) ConfigureOutput(pin core.GPIOPin) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.pin(pin)
	before := p.driven()
	p.output = true
	l.update(p, before)
	return nil
}

// ConfigureInput implements core.GPIODriver
func (l *Line) ConfigureInput(pin core.GPIOPin) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.pin(pin)
	before := p.driven()
	p.output = false
	l.update(p, before)
	return nil
}

// SetPin implements core.GPIODriver
func (l *Line) SetPin(pin core.GPIOPin, value bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.pin(pin)
	before := p.driven()
	p.latch = value
	l.update(p, before)
	return nil
}

// ReadPin implements core.GPIODriver. An output reads back its latch; an input
// reads the scheduled external waveform at the current cycle.
func (l *Line) ReadPin(pin core.GPIOPin) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.pin(pin)
	if p.output {
		return p.latch
	}
	return p.input.LevelAt(l.clock.Now())
}

// IsOutput reports the direction of a pin
func (l *Line) IsOutput(pin core.GPIOPin) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pin(pin).output
}

// Trace returns a copy of the edges driven on a pin
func (l *Line) Trace(pin core.GPIOPin) Trace {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append(Trace(nil), l.pin(pin).trace...)
}

// ResetTrace discards the recorded edges of a pin
func (l *Line) ResetTrace(pin core.GPIOPin) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pin(pin).trace = nil
}

// Drive schedules an external waveform on a pin
func (l *Line) Drive(pin core.GPIOPin, wf Trace) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.pin(pin)
	p.input = append(p.input, wf...)
	sort.SliceStable(p.input, func(i, j int) bool { return p.input[i].At < p.input[j].At })
}

// Echo replays a recorded trace onto a pin's input with its first edge at `at`.
// This models a loopback: whatever was sent comes back on the wire later.
func (l *Line) Echo(pin core.GPIOPin, tr Trace, at uint64) {
	l.Drive(pin, tr.Shift(at))
}
