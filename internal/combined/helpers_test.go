package combined_test

import (
	"sync/atomic"
)

// Sink variables
var sinkInt int
var sinkBool bool

// spinConsumer calls poll in a loop on its own goroutine until stop is
// called. stop returns once the goroutine has exited.
func spinConsumer(poll func()) (stop func()) {
	var quit atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		for !quit.Load() {
			poll()
		}
	}()
	return func() {
		quit.Store(true)
		<-done
	}
}
