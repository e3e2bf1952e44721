package audio

// RingBuffer is a fixed-capacity FIFO sample store with wrap-around write
// semantics, for consumers needing bounded memory.
type RingBuffer struct {
	buffer   []float32
	writePos int
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer{buffer: make([]float32, capacity)}
}

// Write appends samples, overwriting the oldest data once capacity is
// exceeded.
func (r *RingBuffer) Write(samples []float32) {
	for _, s := range samples {
		r.buffer[r.writePos] = s
		r.writePos = (r.writePos + 1) % len(r.buffer)
	}
}

// ReadAll returns the full buffer contents in write order, oldest first.
func (r *RingBuffer) ReadAll() []float32 {
	out := make([]float32, 0, len(r.buffer))
	for i := 0; i < len(r.buffer); i++ {
		out = append(out, r.buffer[(r.writePos+i)%len(r.buffer)])
	}
	return out
}

// Clear zeroes the buffer and resets the write position.
func (r *RingBuffer) Clear() {
	for i := range r.buffer {
		r.buffer[i] = 0
	}
	r.writePos = 0
}

// Capacity returns the fixed buffer capacity.
func (r *RingBuffer) Capacity() int {
	return len(r.buffer)
}
