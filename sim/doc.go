/*
Package sim provides a cycle-counted stand-in for the microcontroller so the
serial engine and the tick multiplexer can run on a workstation.

A Clock counts CPU cycles and implements core.Delayer. A Line implements
core.GPIODriver: levels driven by the firmware are recorded as a Trace of
timestamped edges, and levels read by the firmware come from waveforms scheduled
on the pin (an undriven pin reads high, as with the external pull-up). Timer
implements core.TimerDriver and dispatches the overflow handler through
core.SimulateInterrupt.
*/
package sim
