package queue

import "sync/atomic"

// Node is one cell of the chain: a value slot and a successor.
//
// Nodes are created and released only through an Allocator. A node's value
// is live while it is queued and dormant otherwise (never used, or already
// destroyed by the consumer and waiting to be recycled).
type Node[T any] struct {
	value T

	// next is written once by the producer when the node is linked and is
	// the only field both goroutines touch.
	next atomic.Pointer[Node[T]]

	// recycled is set when the producer took this node from the recycle
	// range instead of the allocator. Producer-only; read by batch rollback.
	recycled bool
}

// reset returns n to the state of a freshly allocated record.
func (n *Node[T]) reset() {
	var zero T
	n.value = zero
	n.next.Store(nil)
	n.recycled = false
}

// advance moves *cursor to its successor and returns the old node.
// Only valid on nodes owned by the calling goroutine.
func advance[T any](cursor **Node[T]) *Node[T] {
	n := *cursor
	*cursor = n.next.Load()
	return n
}
