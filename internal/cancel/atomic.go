package cancel

import "sync/atomic"

// AtomicCanceler is a stop flag backed by an atomic.Bool.
//
// Use it in consumer loops that run continuously: checking it is a plain
// load and never touches a channel.
type AtomicCanceler struct {
	done atomic.Bool
}

// NewAtomic creates an AtomicCanceler that is not cancelled.
func NewAtomic() *AtomicCanceler {
	return &AtomicCanceler{}
}

// Done returns true if Cancel has been called.
func (a *AtomicCanceler) Done() bool {
	return a.done.Load()
}

// Cancel sets the flag. Subsequent calls are no-ops.
func (a *AtomicCanceler) Cancel() {
	a.done.Store(true)
}

// Reset clears the flag so the canceler can guard another run.
// Not safe to call while a loop is still polling it.
func (a *AtomicCanceler) Reset() {
	a.done.Store(false)
}
