package queue

type config[T any] struct {
	alloc  Allocator[T]
	guards bool
}

// Option configures a LinkedQueue.
type Option[T any] func(*config[T])

// WithAllocator sets the allocator used for node records.
// The default is HeapAllocator.
func WithAllocator[T any](a Allocator[T]) Option[T] {
	return func(c *config[T]) {
		if a != nil {
			c.alloc = a
		}
	}
}

// WithGuards enables the SPSC misuse guards.
//
// With guards on, entering either end while another call on the same end
// is in progress panics. This catches a second producer or consumer, and
// reentrant calls from inside a ConsumeAll callback.
func WithGuards[T any](on bool) Option[T] {
	return func(c *config[T]) {
		c.guards = on
	}
}
