package tick

import "time"

// BatchTicker reads the clock only on every N-th call to Tick.
//
// A consumer that drains thousands of values per second does not need to
// read the clock for each of them. With every=1024 a tick can fire up to
// 1023 calls late, which is fine for periodic reporting.
//
// Not safe for concurrent use.
type BatchTicker struct {
	interval time.Duration
	every    int
	count    int
	lastTick time.Time
}

// NewBatch creates a BatchTicker that fires at most once per interval and
// reads the clock on every N-th call. every < 1 is treated as 1.
func NewBatch(interval time.Duration, every int) *BatchTicker {
	if every < 1 {
		every = 1
	}
	return &BatchTicker{
		interval: interval,
		every:    every,
		lastTick: time.Now(),
	}
}

// Tick returns true if the interval has elapsed. Only every N-th call
// actually checks; the others return false immediately.
func (b *BatchTicker) Tick() bool {
	b.count++
	if b.count < b.every {
		return false
	}
	b.count = 0

	now := time.Now()
	if now.Sub(b.lastTick) < b.interval {
		return false
	}
	b.lastTick = now
	return true
}

// Reset clears the call count and restarts the interval from now.
func (b *BatchTicker) Reset() {
	b.count = 0
	b.lastTick = time.Now()
}

// Stop is a no-op.
func (b *BatchTicker) Stop() {}

// Every returns the batch size.
func (b *BatchTicker) Every() int {
	return b.every
}

// Interval returns the ticker's interval.
func (b *BatchTicker) Interval() time.Duration {
	return b.interval
}
