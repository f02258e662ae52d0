package protocol

// ByteQueue is a fixed capacity circular byte buffer with an explicit count.
//
// It is filled from interrupt context and drained by foreground code. Push never
// blocks and never overwrites: once the queue is full new bytes are dropped.
// Callers serialise access (interrupt handlers run masked, foreground code pops
// inside a critical section).
type ByteQueue struct {
	buf   []byte
	head  int // index of the oldest byte
	count int
}

// NewByteQueue creates a queue holding up to capacity bytes (1..256)
func NewByteQueue(capacity int) *ByteQueue {
	if capacity < 1 {
		capacity = 1
	}
	if capacity > 256 {
		capacity = 256
	}
	return &ByteQueue{buf: make([]byte, capacity)}
}

// Push appends b. Returns false if the queue was full and b was dropped.
func (q *ByteQueue) Push(b byte) bool {
	if q.count == len(q.buf) {
		return false
	}
	tail := q.head + q.count
	if tail >= len(q.buf) {
		tail -= len(q.buf)
	}
	q.buf[tail] = b
	q.count++
	return true
}

// Pop removes and returns the oldest byte
func (q *ByteQueue) Pop() (byte, bool) {
	if q.count == 0 {
		return 0, false
	}
	b := q.buf[q.head]
	q.head++
	if q.head == len(q.buf) {
		q.head = 0
	}
	q.count--
	return b, true
}

// Len returns the number of queued bytes
func (q *ByteQueue) Len() int {
	return q.count
}

// Cap returns the queue capacity
func (q *ByteQueue) Cap() int {
	return len(q.buf)
}

// Reset clears the queue
func (q *ByteQueue) Reset() {
	q.head = 0
	q.count = 0
}
