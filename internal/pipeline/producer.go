package pipeline

import (
	"sync/atomic"

	"github.com/randomizedcoder/go-spsc-linked/internal/cancel"
	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
)

// Producer feeds a LinkedQueue from a single goroutine and stops accepting
// values once its Canceler fires.
type Producer[T any] struct {
	q         *queue.LinkedQueue[T]
	stop      cancel.Canceler
	submitted atomic.Uint64
}

// NewProducer wraps q. A nil stop means the producer never refuses work.
func NewProducer[T any](q *queue.LinkedQueue[T], stop cancel.Canceler) *Producer[T] {
	return &Producer[T]{q: q, stop: stop}
}

// Push appends v unless the producer has been stopped.
func (p *Producer[T]) Push(v T) error {
	if p.stopped() {
		return ErrStopped
	}
	if err := p.q.Push(v); err != nil {
		return err
	}
	p.submitted.Add(1)
	return nil
}

// PushSlice appends all of vs in one publication unless the producer has
// been stopped.
func (p *Producer[T]) PushSlice(vs []T) error {
	if p.stopped() {
		return ErrStopped
	}
	if err := p.q.PushSlice(vs); err != nil {
		return err
	}
	p.submitted.Add(uint64(len(vs)))
	return nil
}

// Submitted returns the number of values queued through p.
func (p *Producer[T]) Submitted() uint64 {
	return p.submitted.Load()
}

func (p *Producer[T]) stopped() bool {
	return p.stop != nil && p.stop.Done()
}
