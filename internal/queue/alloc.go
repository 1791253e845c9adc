package queue

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Allocator supplies node records and ends value lifetimes.
//
// The queue calls Allocate and Deallocate only from the producer goroutine,
// except during Close. Destroy is called by whichever end retires a value:
// the consumer after removal, the producer when rolling back a failed
// construction. Deallocate and Destroy must not panic.
type Allocator[T any] interface {
	// Allocate returns a node record with a dormant value slot.
	Allocate() (*Node[T], error)

	// Deallocate releases a node record whose value is dormant.
	Deallocate(n *Node[T])

	// Destroy ends the lifetime of a live value, leaving the slot dormant.
	Destroy(v *T)
}

// HeapAllocator allocates every node from the Go heap.
type HeapAllocator[T any] struct{}

// Allocate returns a new zeroed node.
func (HeapAllocator[T]) Allocate() (*Node[T], error) {
	return new(Node[T]), nil
}

// Deallocate drops the node's references so the GC can reclaim it.
func (HeapAllocator[T]) Deallocate(n *Node[T]) {
	n.reset()
}

// Destroy zeroes the slot.
func (HeapAllocator[T]) Destroy(v *T) {
	var zero T
	*v = zero
}

// PoolAllocator keeps released node records in a sync.Pool so that queues
// which are created and closed repeatedly can share them.
type PoolAllocator[T any] struct {
	pool sync.Pool
}

// NewPoolAllocator creates an empty PoolAllocator.
func NewPoolAllocator[T any]() *PoolAllocator[T] {
	return &PoolAllocator[T]{
		pool: sync.Pool{New: func() any { return new(Node[T]) }},
	}
}

// Allocate takes a record from the pool.
func (p *PoolAllocator[T]) Allocate() (*Node[T], error) {
	return p.pool.Get().(*Node[T]), nil
}

// Deallocate clears n and returns it to the pool.
func (p *PoolAllocator[T]) Deallocate(n *Node[T]) {
	n.reset()
	p.pool.Put(n)
}

// Destroy zeroes the slot.
func (p *PoolAllocator[T]) Destroy(v *T) {
	var zero T
	*v = zero
}

// CountingAllocator wraps another Allocator and counts calls.
// Counters are safe to read from any goroutine.
type CountingAllocator[T any] struct {
	next Allocator[T]

	allocs   atomic.Uint64
	deallocs atomic.Uint64
	destroys atomic.Uint64
}

// NewCountingAllocator wraps next. A nil next means HeapAllocator.
func NewCountingAllocator[T any](next Allocator[T]) *CountingAllocator[T] {
	if next == nil {
		next = HeapAllocator[T]{}
	}
	return &CountingAllocator[T]{next: next}
}

// Allocate forwards to the wrapped allocator and counts successes.
func (c *CountingAllocator[T]) Allocate() (*Node[T], error) {
	n, err := c.next.Allocate()
	if err != nil {
		return nil, err
	}
	c.allocs.Add(1)
	return n, nil
}

// Deallocate forwards to the wrapped allocator.
func (c *CountingAllocator[T]) Deallocate(n *Node[T]) {
	c.deallocs.Add(1)
	c.next.Deallocate(n)
}

// Destroy forwards to the wrapped allocator.
func (c *CountingAllocator[T]) Destroy(v *T) {
	c.destroys.Add(1)
	c.next.Destroy(v)
}

// Allocs returns the number of successful allocations.
func (c *CountingAllocator[T]) Allocs() uint64 { return c.allocs.Load() }

// Deallocs returns the number of deallocations.
func (c *CountingAllocator[T]) Deallocs() uint64 { return c.deallocs.Load() }

// Destroys returns the number of destroyed values.
func (c *CountingAllocator[T]) Destroys() uint64 { return c.destroys.Load() }

// Outstanding returns allocations minus deallocations.
func (c *CountingAllocator[T]) Outstanding() int64 {
	return int64(c.allocs.Load()) - int64(c.deallocs.Load())
}

// LimitAllocator wraps another Allocator and refuses to hold more than
// limit node records at once.
type LimitAllocator[T any] struct {
	next        Allocator[T]
	limit       int64
	outstanding atomic.Int64
}

// NewLimitAllocator wraps next with a cap of limit outstanding nodes.
// A nil next means HeapAllocator.
func NewLimitAllocator[T any](next Allocator[T], limit int) *LimitAllocator[T] {
	if next == nil {
		next = HeapAllocator[T]{}
	}
	return &LimitAllocator[T]{next: next, limit: int64(limit)}
}

// Allocate fails with ErrAllocatorExhausted once the limit is reached.
func (l *LimitAllocator[T]) Allocate() (*Node[T], error) {
	if l.outstanding.Add(1) > l.limit {
		l.outstanding.Add(-1)
		return nil, fmt.Errorf("%w: limit %d nodes", ErrAllocatorExhausted, l.limit)
	}
	n, err := l.next.Allocate()
	if err != nil {
		l.outstanding.Add(-1)
		return nil, err
	}
	return n, nil
}

// Deallocate forwards to the wrapped allocator and frees one unit of quota.
func (l *LimitAllocator[T]) Deallocate(n *Node[T]) {
	l.next.Deallocate(n)
	l.outstanding.Add(-1)
}

// Destroy forwards to the wrapped allocator.
func (l *LimitAllocator[T]) Destroy(v *T) {
	l.next.Destroy(v)
}

// Outstanding returns the number of node records currently held.
func (l *LimitAllocator[T]) Outstanding() int {
	return int(l.outstanding.Load())
}
