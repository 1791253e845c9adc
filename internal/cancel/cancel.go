// Package cancel provides stop signals for the goroutines that drive the
// two ends of a queue.
//
// Pipeline loops poll Done() once per iteration, between calls into the
// queue, so the check must cost about as much as the queue operation
// itself or less:
//   - AtomicCanceler: a single atomic load
//   - ContextCanceler: a non-blocking select on ctx.Done()
//
// Propagate bridges the two so a loop can poll the cheap flag while the
// caller still cancels through a context.
package cancel

import "context"

// Canceler signals a polling loop to stop.
//
// Implementations must be safe for concurrent use:
//   - Any number of goroutines may call Done() concurrently
//   - Cancel() may be called concurrently with Done()
type Canceler interface {
	// Done returns true once cancellation has been triggered.
	Done() bool

	// Cancel triggers cancellation. Safe to call multiple times.
	Cancel()
}

// Propagate cancels c when ctx is done.
//
// The returned function detaches c from ctx; it reports false if c was
// already cancelled through ctx.
func Propagate(ctx context.Context, c Canceler) (stop func() bool) {
	return context.AfterFunc(ctx, c.Cancel)
}
