package channel

// Buffered queues sends up to its capacity, so the job feeder can run
// ahead of the workers draining it.
type Buffered[T any] struct {
	ch chan T
}

// NewBuffered creates a buffered channel holding up to size values.
func NewBuffered[T any](size int) *Buffered[T] {
	return &Buffered[T]{ch: make(chan T, size)}
}

// Send enqueues a value, blocking only when the buffer is full.
func (b *Buffered[T]) Send(v T) {
	b.ch <- v
}

// Receive exposes the receive side for range loops and selects.
func (b *Buffered[T]) Receive() <-chan T {
	return b.ch
}

// Len reports how many values are waiting in the buffer.
func (b *Buffered[T]) Len() int {
	return len(b.ch)
}

// Close closes the channel; draining receivers see it end.
func (b *Buffered[T]) Close() {
	close(b.ch)
}
