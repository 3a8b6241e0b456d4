package common

// CircularBuffer keeps the most recent samples of a stream, overwriting
// the oldest data once full. It is not safe for concurrent use.
type CircularBuffer struct {
	buffer   []float64
	size     int
	writePos int
	count    int
}

// NewCircularBuffer creates a new circular buffer
func NewCircularBuffer(size int) *CircularBuffer {
	return &CircularBuffer{
		buffer: make([]float64, size),
		size:   size,
	}
}

// Write appends data, dropping the oldest samples when full
func (cb *CircularBuffer) Write(data []float64) int {
	if cb.size == 0 {
		return 0
	}
	for _, sample := range data {
		cb.buffer[cb.writePos] = sample
		cb.writePos = (cb.writePos + 1) % cb.size
		if cb.count < cb.size {
			cb.count++
		}
	}
	return len(data)
}

// Latest fills dst with the most recent len(dst) samples in stream order.
// When fewer samples have been written the head of dst is zero-filled.
// Returns the number of real samples copied.
func (cb *CircularBuffer) Latest(dst []float64) int {
	want := min(len(dst), cb.size)
	have := min(want, cb.count)

	pad := len(dst) - have
	for i := range pad {
		dst[i] = 0
	}

	start := cb.writePos - have
	if start < 0 {
		start += cb.size
	}
	for i := range have {
		dst[pad+i] = cb.buffer[(start+i)%cb.size]
	}
	return have
}

// Available returns number of samples held
func (cb *CircularBuffer) Available() int {
	return cb.count
}

// Size returns the buffer capacity
func (cb *CircularBuffer) Size() int {
	return cb.size
}

// Clear empties the buffer
func (cb *CircularBuffer) Clear() {
	cb.writePos = 0
	cb.count = 0
}

// IsFull returns true if buffer is full
func (cb *CircularBuffer) IsFull() bool {
	return cb.count == cb.size
}
