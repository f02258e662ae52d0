package sim

import (
	"math"

	"tinytemplate/protocol"
)

// Edge is a level change at a cycle timestamp
type Edge struct {
	At    uint64
	Level bool
}

// Trace is a time ordered list of edges. Before the first edge the line is high.
type Trace []Edge

// LevelAt returns the line level at cycle t
func (tr Trace) LevelAt(t uint64) bool {
	level := true
	for _, e := range tr {
		if e.At > t {
			break
		}
		level = e.Level
	}
	return level
}

// Shift returns a copy of the trace moved so its first edge is at `at`
func (tr Trace) Shift(at uint64) Trace {
	if len(tr) == 0 {
		return nil
	}
	base := tr[0].At
	out := make(Trace, len(tr))
	for i, e := range tr {
		out[i] = Edge{At: e.At - base + at, Level: e.Level}
	}
	return out
}

// MaxBitError returns the worst relative deviation of the measured bit period
// from bitCycles, taken over every pair of consecutive edges. The number of bits
// between two edges is the interval rounded to whole bit periods.
func (tr Trace) MaxBitError(bitCycles float64) float64 {
	worst := 0.0
	for i := 1; i < len(tr); i++ {
		dt := float64(tr[i].At - tr[i-1].At)
		n := math.Round(dt / bitCycles)
		if n < 1 {
			return 1
		}
		if e := math.Abs(dt/n-bitCycles) / bitCycles; e > worst {
			worst = e
		}
	}
	return worst
}

// Frame builds the ideal 8N1 waveform for b with its start edge at `at`.
// Only level changes are included; the line ends high.
func Frame(b byte, bitCycles float64, at uint64) Trace {
	var tr Trace
	level := true
	set := func(bit int, v bool) {
		if v == level {
			return
		}
		level = v
		tr = append(tr, Edge{At: at + uint64(math.Round(float64(bit)*bitCycles)), Level: v})
	}
	set(0, false)
	for i := 0; i < 8; i++ {
		set(i+1, b&(1<<i) != 0)
	}
	set(9, true)
	return tr
}

// Frames builds back to back frames separated by gap idle bit periods
func Frames(data []byte, bitCycles float64, at uint64, gap int) Trace {
	var tr Trace
	stride := uint64(math.Round(float64(protocol.FrameBits+gap) * bitCycles))
	for i, b := range data {
		tr = append(tr, Frame(b, bitCycles, at+uint64(i)*stride)...)
	}
	return tr
}

// Decode recovers the bytes on a trace the way an ideal receiver would: wait for
// a falling edge, sample each data bit at its centre, skip the stop bit.
func Decode(tr Trace, bitCycles float64) []byte {
	var out []byte
	var from uint64
	for {
		start, ok := nextFall(tr, from)
		if !ok {
			return out
		}
		var b byte
		for i := 0; i < 8; i++ {
			t := start + uint64(math.Round((float64(i)+1.5)*bitCycles))
			if tr.LevelAt(t) {
				b |= 1 << i
			}
		}
		out = append(out, b)
		from = start + uint64(math.Round(9.5*bitCycles))
	}
}

// nextFall finds the first falling edge at or after t
func nextFall(tr Trace, t uint64) (uint64, bool) {
	for _, e := range tr {
		if e.At >= t && !e.Level {
			return e.At, true
		}
	}
	return 0, false
}
