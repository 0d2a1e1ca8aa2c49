// internal/channel/unbuffered.go
package channel

// Unbuffered hands each value off synchronously; a Send does not return
// until a worker has taken the job. Debug builds use it to surface
// ordering problems the buffered variant can hide.
type Unbuffered[T any] struct {
	ch chan T
}

// NewUnbuffered creates an unbuffered channel.
func NewUnbuffered[T any]() *Unbuffered[T] {
	return &Unbuffered[T]{ch: make(chan T)}
}

// Send blocks until a receiver takes the value.
func (u *Unbuffered[T]) Send(v T) {
	u.ch <- v
}

// Receive exposes the receive side for range loops and selects.
func (u *Unbuffered[T]) Receive() <-chan T {
	return u.ch
}

// Len is always zero; nothing is ever held between Send and Receive.
func (u *Unbuffered[T]) Len() int {
	return 0
}

// Close closes the channel; draining receivers see it end.
func (u *Unbuffered[T]) Close() {
	close(u.ch)
}
