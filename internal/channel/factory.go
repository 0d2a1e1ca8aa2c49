//go:build !debug

package channel

// New creates the job channel for production builds: buffered at size,
// so feeding the vessel list never waits on worker pace.
func New[T any](size int) Channel[T] {
	return NewBuffered[T](size)
}
