package queue

// chainBuilder accumulates a private chain of live nodes for a bulk append.
// Nothing is visible to the consumer until commit. Any nodes still held
// when rollback runs are torn down, so callers defer rollback right after
// creating the builder.
type chainBuilder[T any] struct {
	q    *LinkedQueue[T]
	head *Node[T]
	last *Node[T]
}

// add appends a node whose value is built by construct.
func (b *chainBuilder[T]) add(construct func(v *T) error) error {
	n, err := b.q.makeNode(construct)
	if err != nil {
		return err
	}
	b.attach(n)
	return nil
}

// addValue appends a node holding v.
func (b *chainBuilder[T]) addValue(v T) error {
	n, recycled, err := b.q.acquire()
	if err != nil {
		return err
	}
	n.value = v
	b.q.claim(n, recycled)
	b.attach(n)
	return nil
}

func (b *chainBuilder[T]) attach(n *Node[T]) {
	if b.head == nil {
		b.head = n
	} else {
		b.last.next.Store(n)
	}
	b.last = n
}

// commit publishes the private chain with one store.
func (b *chainBuilder[T]) commit() {
	if b.head == nil {
		return
	}
	b.q.link(b.head, b.last)
	b.head, b.last = nil, nil
}

// rollback destroys every value in the private chain. Fresh nodes are
// deallocated. Recycled nodes were taken from the front of the recycle
// range in chain order, so relinking them in the same order in front of
// the cursor restores the range exactly.
func (b *chainBuilder[T]) rollback() {
	q := b.q
	var first, last *Node[T]
	for n := b.head; n != nil; {
		next := n.next.Load()
		q.alloc.Destroy(&n.value)
		if n.recycled {
			if first == nil {
				first = n
			} else {
				last.next.Store(n)
			}
			last = n
			sub(&q.recycled, 1)
		} else {
			q.alloc.Deallocate(n)
			sub(&q.allocated, 1)
		}
		n = next
	}
	if first != nil {
		last.next.Store(q.cacheHead)
		q.cacheHead = first
	}
	b.head, b.last = nil, nil
}
