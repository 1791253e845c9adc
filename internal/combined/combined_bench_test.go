package combined_test

import (
	"context"
	"testing"
	"time"

	"github.com/randomizedcoder/go-spsc-linked/internal/cancel"
	"github.com/randomizedcoder/go-spsc-linked/internal/pipeline"
	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
	"github.com/randomizedcoder/go-spsc-linked/internal/tick"
)

const benchInterval = time.Hour

// ============================================================================
// Full loop benchmarks (cancel + tick + queue)
// ============================================================================

// BenchmarkCombined_FullLoop_Standard simulates a realistic hot loop:
// check cancellation, check tick, move one message through the queue.
func BenchmarkCombined_FullLoop_Standard(b *testing.B) {
	ctx := cancel.NewContext(context.Background())
	ticker := tick.NewTicker(benchInterval)
	ch := make(chan int, 1024)
	defer ticker.Stop()

	// Pre-fill queue
	for i := 0; i < 1024; i++ {
		ch <- i
	}

	b.ReportAllocs()
	b.ResetTimer()

	var val int
	var cancelled, ticked bool
	for i := 0; i < b.N; i++ {
		cancelled = ctx.Done()
		ticked = ticker.Tick()
		val = <-ch
		ch <- val // Recycle
	}
	sinkInt = val
	sinkBool = cancelled || ticked
}

// BenchmarkCombined_FullLoop_Linked uses the atomic canceler, the atomic
// ticker and the linked queue. After the pre-fill every push is served
// from the recycle range.
func BenchmarkCombined_FullLoop_Linked(b *testing.B) {
	ctx := cancel.NewAtomic()
	ticker := tick.NewAtomicTicker(benchInterval)
	q := queue.MustNew[int]()
	defer q.Close()

	// Pre-fill queue
	for i := 0; i < 1024; i++ {
		_ = q.Push(i)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var val int
	var ok, cancelled, ticked bool
	for i := 0; i < b.N; i++ {
		cancelled = ctx.Done()
		ticked = ticker.Tick()
		val, ok = q.Pop()
		_ = q.Push(val) // Recycle
	}
	sinkInt = val
	sinkBool = ok || cancelled || ticked
}

// BenchmarkCombined_FullLoop_LinkedBatchTick swaps in the batch ticker,
// which reads the clock once every DefaultBatchEvery calls.
func BenchmarkCombined_FullLoop_LinkedBatchTick(b *testing.B) {
	ctx := cancel.NewAtomic()
	ticker := tick.NewBatch(benchInterval, tick.DefaultBatchEvery)
	q := queue.MustNew[int]()
	defer q.Close()

	for i := 0; i < 1024; i++ {
		_ = q.Push(i)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var val int
	var ok, cancelled, ticked bool
	for i := 0; i < b.N; i++ {
		cancelled = ctx.Done()
		ticked = ticker.Tick()
		val, ok = q.Pop()
		_ = q.Push(val)
	}
	sinkInt = val
	sinkBool = ok || cancelled || ticked
}

// ============================================================================
// Pipeline benchmarks (producer/consumer)
// ============================================================================

// BenchmarkPipeline_Channel benchmarks a 2-goroutine SPSC pipeline
// using a buffered channel with a blocking consumer.
func BenchmarkPipeline_Channel(b *testing.B) {
	ch := make(chan int, 1024)
	done := make(chan struct{})

	// Consumer goroutine
	go func() {
		defer close(done)
		for v := range ch {
			sinkInt = v
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		ch <- i
	}
	close(ch)
	<-done
}

// BenchmarkPipeline_Linked benchmarks a 2-goroutine SPSC pipeline using
// the linked queue with a polling consumer.
func BenchmarkPipeline_Linked(b *testing.B) {
	q := queue.MustNew[int]()
	stop := spinConsumer(func() { q.ConsumeAll(func(v int) { sinkInt = v }) })

	b.ReportAllocs()
	b.ResetTimer()

	// Producer (single producer - SPSC contract)
	for i := 0; i < b.N; i++ {
		_ = q.Push(i)
	}

	b.StopTimer()
	stop()
	q.Close()
}

// BenchmarkPipeline_LinkedBatch publishes 64 values per PushSlice.
func BenchmarkPipeline_LinkedBatch(b *testing.B) {
	const batchSize = 64

	q := queue.MustNew[int]()
	stop := spinConsumer(func() { q.ConsumeAll(func(v int) { sinkInt = v }) })

	batch := make([]int, batchSize)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i += batchSize {
		n := min(batchSize, b.N-i)
		for j := range n {
			batch[j] = i + j
		}
		_ = q.PushSlice(batch[:n])
	}

	b.StopTimer()
	stop()
	q.Close()
}

// BenchmarkPipeline_Consumer runs the full pipeline.Consumer: locked OS
// thread, spin budget and a progress ticker that never fires.
func BenchmarkPipeline_Consumer(b *testing.B) {
	q := queue.MustNew[int]()
	defer q.Close()

	var last int
	c, err := pipeline.NewConsumer(q, func(v int) { last = v }, pipeline.Config{
		ReportEvery: benchInterval,
		Ticker:      tick.KindBatch,
	})
	if err != nil {
		b.Fatal(err)
	}
	p := pipeline.NewProducer(q, nil)
	c.Start(context.Background())

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = p.Push(i)
	}

	b.StopTimer()
	c.Stop()
	sinkInt = last
}
