package queue_test

import (
	"testing"

	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
)

// Sink variables to prevent compiler from eliminating benchmark loops
var sinkInt int
var sinkBool bool

// Direct type benchmarks (true performance floor)

func BenchmarkLinkedQueue_PushPop_Direct(b *testing.B) {
	q := queue.MustNew[int]()
	defer q.Close()
	b.ReportAllocs()
	b.ResetTimer()

	var val int
	var ok bool
	for i := 0; i < b.N; i++ {
		_ = q.Push(i)
		val, ok = q.Pop()
	}
	sinkInt = val
	sinkBool = ok
}

func BenchmarkLinkedQueue_PushPop_Guarded(b *testing.B) {
	q := queue.MustNew[int](queue.WithGuards[int](true))
	defer q.Close()
	b.ReportAllocs()
	b.ResetTimer()

	var val int
	var ok bool
	for i := 0; i < b.N; i++ {
		_ = q.Push(i)
		val, ok = q.Pop()
	}
	sinkInt = val
	sinkBool = ok
}

// Interface benchmarks (with dynamic dispatch overhead)

func BenchmarkLinkedQueue_PushPop_Interface(b *testing.B) {
	lq := queue.MustNew[int]()
	defer lq.Close()
	var q queue.Queue[int] = lq
	b.ReportAllocs()
	b.ResetTimer()

	var val int
	var ok bool
	for i := 0; i < b.N; i++ {
		_ = q.Push(i)
		val, ok = q.Pop()
	}
	sinkInt = val
	sinkBool = ok
}

// Push-only: every append allocates, nothing is recycled.

func BenchmarkLinkedQueue_Push(b *testing.B) {
	q := queue.MustNew[int]()
	defer q.Close()
	b.ReportAllocs()
	b.ResetTimer()

	var err error
	for i := 0; i < b.N; i++ {
		err = q.Push(i)
	}
	sinkBool = err == nil
}

// Depth benchmarks: the recycle range holds depth nodes after warm-up.

func benchmarkDepth(b *testing.B, depth int) {
	q := queue.MustNew[int]()
	defer q.Close()
	for i := 0; i < depth; i++ {
		_ = q.Push(i)
	}
	b.ReportAllocs()
	b.ResetTimer()

	var val int
	for i := 0; i < b.N; i++ {
		_ = q.Push(i)
		val, _ = q.Pop()
	}
	sinkInt = val
}

func BenchmarkLinkedQueue_PushPop_Depth64(b *testing.B)   { benchmarkDepth(b, 64) }
func BenchmarkLinkedQueue_PushPop_Depth1024(b *testing.B) { benchmarkDepth(b, 1024) }

// Bulk benchmarks

func BenchmarkLinkedQueue_PushSlice_ConsumeAll(b *testing.B) {
	q := queue.MustNew[int]()
	defer q.Close()
	batch := make([]int, 64)
	for i := range batch {
		batch[i] = i
	}
	b.ReportAllocs()
	b.ResetTimer()

	var sum int
	for i := 0; i < b.N; i++ {
		_ = q.PushSlice(batch)
		q.ConsumeAll(func(v int) { sum += v })
	}
	sinkInt = sum
}

// Pipeline benchmark (producer/consumer on two goroutines)

func BenchmarkLinkedQueue_Pipeline(b *testing.B) {
	q := queue.MustNew[int]()
	done := make(chan struct{})
	consumerDone := make(chan struct{})

	// Consumer goroutine (single consumer - SPSC contract)
	go func() {
		defer close(consumerDone)
		for {
			select {
			case <-done:
				return
			default:
				q.Pop()
			}
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()

	// Producer (single producer - SPSC contract)
	for i := 0; i < b.N; i++ {
		_ = q.Push(i)
	}

	b.StopTimer()
	close(done)
	<-consumerDone
	q.Close()
}
