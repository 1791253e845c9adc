package cancel

import "context"

// ContextCanceler derives a cancellable context from a parent and exposes
// it as a Canceler.
//
// Done() selects on ctx.Done() without blocking. It is slower than
// AtomicCanceler but also observes cancellation of the parent.
type ContextCanceler struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewContext creates a ContextCanceler from a parent context.
func NewContext(parent context.Context) *ContextCanceler {
	ctx, cancel := context.WithCancel(parent)
	return &ContextCanceler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Done returns true if the context has been cancelled, directly or
// through its parent.
func (c *ContextCanceler) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Cancel cancels the derived context.
func (c *ContextCanceler) Cancel() {
	c.cancel()
}

// Context returns the derived context, for handing to code that blocks.
func (c *ContextCanceler) Context() context.Context {
	return c.ctx
}

// Err returns the context's error: nil while running, context.Canceled or
// context.DeadlineExceeded afterwards.
func (c *ContextCanceler) Err() error {
	return c.ctx.Err()
}
