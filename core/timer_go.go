//go:build !tinygo

package core

// loadTicks returns the tick counter (regular Go implementation).
// Callers hold the interrupt mask.
func loadTicks(t *tickState) uint16 {
	return t.ticks
}

// storeTicks sets the tick counter (regular Go implementation)
func storeTicks(t *tickState, v uint16) {
	t.ticks = v
}
