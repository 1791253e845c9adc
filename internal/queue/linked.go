package queue

import (
	"fmt"
	"iter"
	"sync/atomic"
)

// LinkedQueue is an unbounded lock-free SPSC (Single-Producer
// Single-Consumer) queue.
//
// WARNING: This queue is NOT safe for multiple producers or multiple
// consumers. Producer methods: Push, Emplace, PushSlice, PushSeq,
// EmplaceBatch. Consumer methods: Pop, PopInto, Front, Peek, Empty, Clear,
// ConsumeAll, Drain. Stats, IsLockFree and Allocator may be called from
// anywhere.
//
// No method blocks or waits for the other goroutine.
type LinkedQueue[T any] struct {
	// Producer side. Never read by the consumer.
	tail      *Node[T] // last linked node
	cacheHead *Node[T] // first node of the recycle range
	cacheTail *Node[T] // producer's cached copy of beforeHead
	allocated atomic.Uint64
	recycled  atomic.Uint64

	// Cache line padding to prevent false sharing
	_pad0 [48]byte //nolint:unused

	// Sentinel before the first queued value. Written by the consumer,
	// read by both.
	beforeHead atomic.Pointer[Node[T]]

	_pad1 [56]byte //nolint:unused

	// Consumer side.
	consumed atomic.Uint64

	_pad2 [56]byte //nolint:unused

	// Read-only after New.
	alloc  Allocator[T]
	guards bool

	// SPSC guards: detect concurrent misuse
	pushActive atomic.Uint32
	popActive  atomic.Uint32

	closed bool
}

// Stats is a snapshot of queue counters.
type Stats struct {
	// Allocated is the number of node records obtained from the
	// allocator that are part of the queue, including the initial sentinel.
	Allocated uint64
	// Recycled is the number of appends served from the recycle range.
	Recycled uint64
	// Consumed is the number of values removed by the consumer.
	Consumed uint64
}

// New creates an empty LinkedQueue. It allocates the initial sentinel and
// fails only if the allocator does.
func New[T any](opts ...Option[T]) (*LinkedQueue[T], error) {
	cfg := config[T]{alloc: HeapAllocator[T]{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	n, err := cfg.alloc.Allocate()
	if err != nil {
		return nil, fmt.Errorf("queue: allocating sentinel: %w", err)
	}
	n.next.Store(nil)

	q := &LinkedQueue[T]{
		tail:      n,
		cacheHead: n,
		cacheTail: n,
		alloc:     cfg.alloc,
		guards:    cfg.guards,
	}
	q.beforeHead.Store(n)
	q.allocated.Store(1)
	return q, nil
}

// MustNew is like New but panics on error.
func MustNew[T any](opts ...Option[T]) *LinkedQueue[T] {
	q, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return q
}

// ----------------------------------------------------------------------------
// Producer
// ----------------------------------------------------------------------------

// Push appends v.
//
// SPSC CONTRACT: Only ONE goroutine may call producer methods.
func (q *LinkedQueue[T]) Push(v T) error {
	q.enterProducer()
	defer q.leaveProducer()

	n, recycled, err := q.acquire()
	if err != nil {
		return err
	}
	n.value = v
	q.claim(n, recycled)
	q.link(n, n)
	return nil
}

// Emplace appends a value built in place by construct.
//
// If construct returns an error or panics, the partially built value is
// destroyed, the node goes back where it came from and the failure
// propagates. The queue is unchanged.
func (q *LinkedQueue[T]) Emplace(construct func(v *T) error) error {
	if construct == nil {
		return ErrNilConstructor
	}
	q.enterProducer()
	defer q.leaveProducer()

	n, err := q.makeNode(construct)
	if err != nil {
		return err
	}
	q.link(n, n)
	return nil
}

// PushSlice appends every element of vs with a single publication.
// Either all elements are queued or none are.
func (q *LinkedQueue[T]) PushSlice(vs []T) error {
	if len(vs) == 0 {
		return nil
	}
	q.enterProducer()
	defer q.leaveProducer()

	b := chainBuilder[T]{q: q}
	defer b.rollback()

	for i := range vs {
		if err := b.addValue(vs[i]); err != nil {
			return fmt.Errorf("queue: element %d: %w", i, err)
		}
	}
	b.commit()
	return nil
}

// PushSeq appends every value produced by seq with a single publication.
// If seq panics or an allocation fails, nothing from seq is queued.
// seq must not call back into the queue's producer methods.
func (q *LinkedQueue[T]) PushSeq(seq iter.Seq[T]) error {
	q.enterProducer()
	defer q.leaveProducer()

	b := chainBuilder[T]{q: q}
	defer b.rollback()

	var (
		i   int
		err error
	)
	seq(func(v T) bool {
		if err = b.addValue(v); err != nil {
			err = fmt.Errorf("queue: element %d: %w", i, err)
			return false
		}
		i++
		return true
	})
	if err != nil {
		return err
	}
	b.commit()
	return nil
}

// EmplaceBatch appends n values, the i-th built in place by construct(i, v),
// with a single publication.
//
// If any construction fails, every value already built by this call is
// destroyed, fresh nodes are deallocated, recycled nodes return to the
// recycle range, and the error (or panic) propagates.
func (q *LinkedQueue[T]) EmplaceBatch(n int, construct func(i int, v *T) error) error {
	if construct == nil {
		return ErrNilConstructor
	}
	if n <= 0 {
		return nil
	}
	q.enterProducer()
	defer q.leaveProducer()

	b := chainBuilder[T]{q: q}
	defer b.rollback()

	for i := 0; i < n; i++ {
		if err := b.add(func(v *T) error { return construct(i, v) }); err != nil {
			return fmt.Errorf("queue: element %d: %w", i, err)
		}
	}
	b.commit()
	return nil
}

// acquire returns a node whose value slot is dormant, preferring the
// recycle range. A recycled node stays in the range until claim.
func (q *LinkedQueue[T]) acquire() (*Node[T], bool, error) {
	n := q.cacheHead
	if q.cacheTail == n {
		q.cacheTail = q.beforeHead.Load()
	}
	if q.cacheTail != n {
		return n, true, nil
	}

	n, err := q.alloc.Allocate()
	if err != nil {
		return nil, false, err
	}
	return n, false, nil
}

// claim takes n out of the recycle range (if it came from there) once its
// value is live, and detaches it for linking.
func (q *LinkedQueue[T]) claim(n *Node[T], recycled bool) {
	if recycled {
		advance(&q.cacheHead)
		add(&q.recycled, 1)
	} else {
		add(&q.allocated, 1)
	}
	n.recycled = recycled
	n.next.Store(nil)
}

// abandon undoes acquire after a failed construction.
func (q *LinkedQueue[T]) abandon(n *Node[T], recycled bool) {
	q.alloc.Destroy(&n.value)
	if !recycled {
		q.alloc.Deallocate(n)
	}
}

// makeNode acquires a node and constructs its value.
func (q *LinkedQueue[T]) makeNode(construct func(v *T) error) (*Node[T], error) {
	n, recycled, err := q.acquire()
	if err != nil {
		return nil, err
	}

	built := false
	defer func() {
		if !built {
			q.abandon(n, recycled)
		}
	}()
	if err := construct(&n.value); err != nil {
		return nil, err
	}
	built = true

	q.claim(n, recycled)
	return n, nil
}

// link publishes the detached chain first..last after the tail.
func (q *LinkedQueue[T]) link(first, last *Node[T]) {
	q.tail.next.Store(first)
	q.tail = last
}

// ----------------------------------------------------------------------------
// Consumer
// ----------------------------------------------------------------------------

// Pop removes and returns the oldest value.
// Returns false if the queue is empty.
//
// SPSC CONTRACT: Only ONE goroutine may call consumer methods.
func (q *LinkedQueue[T]) Pop() (T, bool) {
	var v T
	ok := q.PopInto(&v)
	return v, ok
}

// PopInto moves the oldest value into *out.
// Returns false and leaves *out untouched if the queue is empty.
func (q *LinkedQueue[T]) PopInto(out *T) bool {
	q.enterConsumer()
	defer q.leaveConsumer()

	n := q.head()
	if n == nil {
		return false
	}
	*out = n.value
	q.retire(n)
	return true
}

// Front returns a pointer to the oldest value without removing it, or nil
// if the queue is empty. The pointer is valid until the next consumer call.
func (q *LinkedQueue[T]) Front() *T {
	n := q.head()
	if n == nil {
		return nil
	}
	return &n.value
}

// Peek returns a copy of the oldest value without removing it.
func (q *LinkedQueue[T]) Peek() (T, bool) {
	if p := q.Front(); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// Empty reports whether no value is queued.
//
// The result is a snapshot: the producer may append right after it returns.
// Only the consumer can turn a non-empty queue empty, so a false result
// stays valid for the consumer until it removes something.
func (q *LinkedQueue[T]) Empty() bool {
	return q.head() == nil
}

// Clear destroys every queued value and publishes progress once.
// No node is deallocated; all of them become available for recycling.
func (q *LinkedQueue[T]) Clear() {
	q.enterConsumer()
	defer q.leaveConsumer()

	last := q.beforeHead.Load()
	var count uint64
	for n := last.next.Load(); n != nil; n = n.next.Load() {
		q.alloc.Destroy(&n.value)
		last = n
		count++
	}
	if count == 0 {
		return
	}
	q.beforeHead.Store(last)
	add(&q.consumed, count)
}

// ConsumeAll calls f for each queued value in FIFO order and returns how
// many values it consumed.
//
// Progress is published after every element, so the producer can recycle
// a node while later elements are still being processed. f runs on the
// consumer goroutine and must not call consumer methods of q. If f panics,
// the element it was given stays queued.
func (q *LinkedQueue[T]) ConsumeAll(f func(v T)) int {
	q.enterConsumer()
	defer q.leaveConsumer()

	count := 0
	for n := q.head(); n != nil; n = n.next.Load() {
		f(n.value)
		q.retire(n)
		count++
	}
	return count
}

// Drain returns an iterator that removes values as it yields them.
//
//	for v := range q.Drain() {
//	    handle(v)
//	}
//
// Each value is removed before it is yielded. Breaking out of the loop
// leaves the remaining values queued. Values pushed while the loop runs
// may or may not be yielded.
func (q *LinkedQueue[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		q.enterConsumer()
		defer q.leaveConsumer()

		for n := q.head(); n != nil; n = n.next.Load() {
			v := n.value
			q.retire(n)
			if !yield(v) {
				return
			}
		}
	}
}

// head returns the first live node, or nil.
func (q *LinkedQueue[T]) head() *Node[T] {
	return q.beforeHead.Load().next.Load()
}

// retire destroys n's value and makes n the new sentinel.
func (q *LinkedQueue[T]) retire(n *Node[T]) {
	q.alloc.Destroy(&n.value)
	q.beforeHead.Store(n)
	add(&q.consumed, 1)
}

// ----------------------------------------------------------------------------
// Lifecycle
// ----------------------------------------------------------------------------

// Close releases every node: recycled nodes are deallocated, then queued
// values are destroyed and their nodes deallocated.
//
// Close must be called only after both ends have stopped. The queue must
// not be used afterwards. Calling Close again is a no-op.
func (q *LinkedQueue[T]) Close() {
	if q.closed {
		return
	}
	q.closed = true

	first := q.cacheHead
	for end := q.head(); first != end; {
		q.alloc.Deallocate(advance(&first))
	}
	for first != nil {
		n := advance(&first)
		q.alloc.Destroy(&n.value)
		q.alloc.Deallocate(n)
	}

	q.tail, q.cacheHead, q.cacheTail = nil, nil, nil
}

// Stats returns a snapshot of the queue counters.
func (q *LinkedQueue[T]) Stats() Stats {
	return Stats{
		Allocated: q.allocated.Load(),
		Recycled:  q.recycled.Load(),
		Consumed:  q.consumed.Load(),
	}
}

// IsLockFree reports whether the hand-off pointers are lock-free.
// atomic.Pointer is lock-free on every platform Go supports.
func (q *LinkedQueue[T]) IsLockFree() bool {
	return true
}

// Allocator returns the allocator the queue uses.
func (q *LinkedQueue[T]) Allocator() Allocator[T] {
	return q.alloc
}

// ----------------------------------------------------------------------------
// Guards
// ----------------------------------------------------------------------------

func (q *LinkedQueue[T]) enterProducer() {
	if q.guards && !q.pushActive.CompareAndSwap(0, 1) {
		panic("queue: concurrent producer call on SPSC LinkedQueue - only one producer allowed")
	}
}

func (q *LinkedQueue[T]) leaveProducer() {
	if q.guards {
		q.pushActive.Store(0)
	}
}

func (q *LinkedQueue[T]) enterConsumer() {
	if q.guards && !q.popActive.CompareAndSwap(0, 1) {
		panic("queue: concurrent consumer call on SPSC LinkedQueue - only one consumer allowed")
	}
}

func (q *LinkedQueue[T]) leaveConsumer() {
	if q.guards {
		q.popActive.Store(0)
	}
}

// add increments a counter that has a single writer.
func add(c *atomic.Uint64, n uint64) {
	c.Store(c.Load() + n)
}

// sub decrements a counter that has a single writer.
func sub(c *atomic.Uint64, n uint64) {
	c.Store(c.Load() - n)
}
