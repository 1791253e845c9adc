// Package queue provides an unbounded lock-free SPSC queue built on a
// singly-linked chain of recycled nodes.
//
// LinkedQueue is a Single-Producer Single-Consumer (SPSC) queue.
// Exactly ONE goroutine may call the producer methods and exactly ONE
// goroutine may call the consumer methods. These may be the same goroutine
// or different goroutines, but never more than one per end.
//
// # Hand-off protocol
//
// The producer publishes a node by storing it into the previous tail's
// successor pointer. The consumer observes it by loading that same pointer,
// so a value is fully constructed before the consumer can see it.
//
// Consumption progress flows the other way: after destroying a value the
// consumer stores the consumed node as the new sentinel. The producer loads
// the sentinel only when its local recycle range looks exhausted, and reuses
// nodes strictly before it without calling the allocator.
//
// # Memory
//
// Consumed nodes are kept for reuse and are released only by Close. The
// node pool therefore grows to the highest depth the queue ever reached and
// stays there.
//
// # Misuse detection
//
// WithGuards enables runtime guards that panic when either end is entered
// concurrently or reentrantly. They cost one CAS per operation and are off
// by default.
package queue

// Producer is the appending end of an SPSC queue.
type Producer[T any] interface {
	// Push appends a value. It fails only if the allocator does.
	Push(T) error
}

// Consumer is the removing end of an SPSC queue.
type Consumer[T any] interface {
	// Pop removes and returns the oldest value.
	// Returns false if the queue is empty.
	Pop() (T, bool)

	// Empty reports whether nothing is queued right now.
	Empty() bool
}

// Queue combines both ends.
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
}
