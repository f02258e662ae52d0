package sim

import "tinytemplate/core"

// LoopbackResult summarises a simulated loopback run
type LoopbackResult struct {
	Sent     []byte
	Received []byte
	Timing   core.Timing
	// MaxTxError is the worst relative bit period error seen on the transmit trace
	MaxTxError float64
}

// Mismatches returns the indexes where the received byte differs from the sent one
func (r *LoopbackResult) Mismatches() []int {
	var bad []int
	for i, b := range r.Sent {
		if i >= len(r.Received) || r.Received[i] != b {
			bad = append(bad, i)
		}
	}
	return bad
}

// Loopback sends every byte of data through a simulated single-pin serial port,
// echoes the recorded waveform back onto the same pin one bit period later and
// receives it again with the polled strategy.
func Loopback(cfg core.SerialConfig, data []byte) (*LoopbackResult, error) {
	cfg.RxPin = cfg.TxPin
	cfg.RxMode = core.RxPolled
	model := cfg.Model
	if model == (core.CycleModel{}) {
		model = core.AVRCycleModel
	}

	clock := NewClock(model)
	line := NewLine(clock)
	port, err := core.NewSoftSerial(cfg, line, clock)
	if err != nil {
		return nil, err
	}
	if err := port.Init(); err != nil {
		return nil, err
	}

	bit := float64(cfg.ClockHz) / float64(cfg.BaudRate)
	res := &LoopbackResult{Sent: data, Timing: port.Timing()}
	for _, b := range data {
		line.ResetTrace(cfg.TxPin)
		port.Send(b)
		tr := line.Trace(cfg.TxPin)
		if e := tr.MaxBitError(bit); e > res.MaxTxError {
			res.MaxTxError = e
		}
		line.Echo(cfg.TxPin, tr, clock.Now()+uint64(bit))
		res.Received = append(res.Received, port.Recv())
	}
	return res, nil
}
