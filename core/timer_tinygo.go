//go:build tinygo

package core

import "runtime/volatile"

// loadTicks returns the tick counter. The counter is two bytes wide on an 8-bit
// core, so callers must hold the interrupt mask to avoid a torn read.
func loadTicks(t *tickState) uint16 {
	return volatile.LoadUint16(&t.ticks)
}

// storeTicks sets the tick counter
func storeTicks(t *tickState, v uint16) {
	volatile.StoreUint16(&t.ticks, v)
}
