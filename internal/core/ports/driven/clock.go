package driven

import "time"

// Clock abstracts wall time and deferred execution so the coalescer can
// be tested against a virtual clock.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Schedule runs fn after d elapses and returns a handle for
	// cancellation. The callback runs on its own goroutine.
	Schedule(d time.Duration, fn func()) Timer
}

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback. Returns false if it already fired
	// or was stopped.
	Stop() bool
}
