// Package tick provides periodic triggers for polling loops.
//
// A queue consumer loop cannot block on a timer channel without stalling
// the queue, so it asks "has the interval elapsed?" once per iteration
// instead. The implementations trade precision for the cost of asking:
//   - StdTicker: non-blocking receive from a time.Ticker
//   - AtomicTicker: compares runtime.nanotime against the last tick
//   - BatchTicker: reads the clock only every N calls
package tick

import (
	"errors"
	"fmt"
	"time"
)

// Ticker signals when a time interval has elapsed.
type Ticker interface {
	// Tick returns true if the interval has elapsed since the last tick.
	// It never blocks.
	Tick() bool

	// Reset starts a new interval from now.
	Reset()

	// Stop releases any resources held by the ticker.
	// After Stop, the ticker should not be used.
	Stop()
}

// Kind names a Ticker implementation.
type Kind string

// Ticker kinds accepted by New.
const (
	KindStd    Kind = "std"
	KindAtomic Kind = "atomic"
	KindBatch  Kind = "batch"
)

// DefaultBatchEvery is the batch size New uses for KindBatch.
const DefaultBatchEvery = 1024

// ErrUnknownKind is returned by New for an unrecognised kind.
var ErrUnknownKind = errors.New("tick: unknown ticker kind")

// New creates a Ticker of the given kind.
func New(kind Kind, interval time.Duration) (Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("tick: interval must be positive, got %v", interval)
	}
	switch kind {
	case KindStd:
		return NewTicker(interval), nil
	case KindAtomic, "":
		return NewAtomicTicker(interval), nil
	case KindBatch:
		return NewBatch(interval, DefaultBatchEvery), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
