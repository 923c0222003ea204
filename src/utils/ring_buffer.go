package utils

// -----------------------------------------------------------------------------
// PriceRing is a fixed-size circular buffer of prices.
// True ring buffer - no resizing allowed!
// -----------------------------------------------------------------------------

type PriceRing struct {
	data     []float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewPriceRing creates a new buffer with fixed capacity
func NewPriceRing(capacity int) *PriceRing {
	if capacity <= 0 {
		capacity = 20
	}

	return &PriceRing{
		data:     make([]float64, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a price sample
func (rb *PriceRing) Append(price float64) {
	rb.data[rb.index] = price
	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// Latest returns the n most recent samples, oldest first.
func (rb *PriceRing) Latest(n int) []float64 {
	if rb.size == 0 || n <= 0 {
		return nil
	}
	if n > rb.size {
		n = rb.size
	}

	out := make([]float64, n)
	start := (rb.index - n + rb.capacity) % rb.capacity
	for i := 0; i < n; i++ {
		out[i] = rb.data[(start+i)%rb.capacity]
	}
	return out
}

// -----------------------------------------------------------------------------

// Size returns the current number of elements
func (rb *PriceRing) Size() int {
	return rb.size
}
