package pipeline

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/randomizedcoder/go-spsc-linked/internal/cancel"
	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
	"github.com/randomizedcoder/go-spsc-linked/internal/tick"
)

// Consumer drains a LinkedQueue on a dedicated goroutine.
//
// The Consumer is the queue's only consumer for as long as it runs; no
// other goroutine may call consumer methods on the queue in that time.
type Consumer[T any] struct {
	q      *queue.LinkedQueue[T]
	handle func(T)
	cfg    Config
	log    *zap.Logger

	stop      *cancel.AtomicCanceler
	ticker    tick.Ticker
	processed atomic.Uint64

	startOnce sync.Once
	done      chan struct{}
}

// NewConsumer creates a Consumer that passes every value of q to handle.
func NewConsumer[T any](q *queue.LinkedQueue[T], handle func(T), cfg Config) (*Consumer[T], error) {
	if q == nil {
		return nil, errors.New("pipeline: nil queue")
	}
	if handle == nil {
		return nil, errors.New("pipeline: nil handler")
	}
	cfg = cfg.withDefaults()

	c := &Consumer[T]{
		q:      q,
		handle: handle,
		cfg:    cfg,
		log:    cfg.Logger.Named("consumer"),
		stop:   cancel.NewAtomic(),
		done:   make(chan struct{}),
	}
	if cfg.ReportEvery > 0 {
		t, err := tick.New(cfg.Ticker, cfg.ReportEvery)
		if err != nil {
			return nil, err
		}
		c.ticker = t
	}
	return c, nil
}

// Start launches the consumer goroutine. Cancelling ctx stops it the same
// way Stop does. Calling Start more than once has no effect.
func (c *Consumer[T]) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		cancel.Propagate(ctx, c.stop)
		go c.run()
	})
}

// Stop signals the consumer to finish and waits for it. Values published
// before Stop was called are handled before it returns.
func (c *Consumer[T]) Stop() {
	c.stop.Cancel()
	c.startOnce.Do(func() { close(c.done) })
	<-c.done
}

// Done is closed once the consumer goroutine has exited.
func (c *Consumer[T]) Done() <-chan struct{} {
	return c.done
}

// Processed returns the number of values handled so far.
func (c *Consumer[T]) Processed() uint64 {
	return c.processed.Load()
}

// Stats returns the queue counters.
func (c *Consumer[T]) Stats() queue.Stats {
	return c.q.Stats()
}

func (c *Consumer[T]) run() {
	runtime.LockOSThread()
	defer func() {
		runtime.UnlockOSThread()
		if c.ticker != nil {
			c.ticker.Stop()
		}
		close(c.done)
	}()

	if c.cfg.Pin {
		if err := setAffinity(c.cfg.CPU); err != nil {
			c.log.Warn("running unpinned", zap.Int("cpu", c.cfg.CPU), zap.Error(err))
		} else {
			c.log.Debug("pinned", zap.Int("cpu", c.cfg.CPU))
		}
	}

	start := time.Now()
	miss := 0
	for !c.stop.Done() {
		if n := c.q.ConsumeAll(c.handle); n > 0 {
			c.processed.Add(uint64(n))
			miss = 0
		} else if miss++; miss >= c.cfg.SpinBudget {
			miss = 0
			runtime.Gosched()
		}

		if c.ticker != nil && c.ticker.Tick() {
			c.report(start, false)
		}
	}

	// Everything published before the stop signal is still handled.
	c.processed.Add(uint64(c.q.ConsumeAll(c.handle)))
	c.report(start, true)
}

func (c *Consumer[T]) report(start time.Time, final bool) {
	r := Report{
		Processed: c.processed.Load(),
		Elapsed:   time.Since(start),
		Queue:     c.q.Stats(),
		Final:     final,
	}
	logReport(c.log, r)
	if c.cfg.OnReport != nil {
		c.cfg.OnReport(r)
	}
}
