//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// irqMask stands in for the global interrupt enable bit. Foreground critical
// sections and simulated interrupt handlers both hold it, so host tests see the
// same exclusion the chip provides.
var irqMask sync.Mutex

// disableInterrupts masks simulated interrupts
func disableInterrupts() State {
	irqMask.Lock()
	return 0
}

// restoreInterrupts unmasks simulated interrupts
func restoreInterrupts(state State) {
	irqMask.Unlock()
}

// SimulateInterrupt runs handler the way the hardware dispatches an interrupt:
// with further interrupts masked until it returns. Handlers must not enter a
// critical section themselves.
func SimulateInterrupt(handler func()) {
	irqMask.Lock()
	defer irqMask.Unlock()
	handler()
}
