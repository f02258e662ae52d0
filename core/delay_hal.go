package core

// Delayer is the busy-wait primitive behind the engine's own bit loop.
//
// Spin burns loops iterations of the delay loop, LoopCycles each. Overhead
// accounts for the fixed instruction sequence around the loop (pin access,
// shifting, branching) that the cycle model charges per bit. A simulated clock
// advances by both, so bit periods come out exactly as the model says. Targets
// whose compiled loop would not match the model replace the whole frame with a
// FrameIO instead.
type Delayer interface {
	Spin(loops uint8)
	Overhead(cycles uint8)
}
