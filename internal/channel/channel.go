// Package channel wraps Go channels behind small generic interfaces so
// the vessel job fan-out can swap buffering strategies per build:
// production builds get buffered channels sized to the job list, debug
// builds get unbuffered ones so handoff is synchronous.
package channel

// Receiver provides read access to a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender provides write access to a channel.
type Sender[T any] interface {
	Send(T)
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}
