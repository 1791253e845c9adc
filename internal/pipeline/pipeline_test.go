package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/randomizedcoder/go-spsc-linked/internal/cancel"
	"github.com/randomizedcoder/go-spsc-linked/internal/pipeline"
	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
	"github.com/randomizedcoder/go-spsc-linked/internal/tick"
)

func TestConsumer_DeliversInOrder(t *testing.T) {
	const count = 10_000

	q := queue.MustNew[int](queue.WithGuards[int](true))
	defer q.Close()

	var got []int
	c, err := pipeline.NewConsumer(q, func(v int) { got = append(got, v) }, pipeline.Config{})
	require.NoError(t, err)
	c.Start(context.Background())

	p := pipeline.NewProducer(q, nil)
	for i := 0; i < count; i += 10 {
		if i%20 == 0 {
			require.NoError(t, p.PushSlice([]int{i, i + 1, i + 2, i + 3, i + 4, i + 5, i + 6, i + 7, i + 8, i + 9}))
			continue
		}
		for j := i; j < i+10; j++ {
			require.NoError(t, p.Push(j))
		}
	}
	c.Stop()

	assert.Equal(t, uint64(count), p.Submitted())
	assert.Equal(t, uint64(count), c.Processed())
	require.Len(t, got, count)
	for i, v := range got {
		if v != i {
			t.Fatalf("FIFO violation at %d: got %d", i, v)
		}
	}
	assert.Equal(t, uint64(count), c.Stats().Consumed)
}

func TestConsumer_StopBeforeStart(t *testing.T) {
	q := queue.MustNew[int]()
	defer q.Close()

	c, err := pipeline.NewConsumer(q, func(int) {}, pipeline.Config{})
	require.NoError(t, err)

	c.Stop()
	select {
	case <-c.Done():
	default:
		t.Fatal("expected Done() to be closed after Stop()")
	}

	// Start after Stop is a no-op.
	c.Start(context.Background())
	c.Stop()
}

func TestConsumer_ContextCancel(t *testing.T) {
	q := queue.MustNew[int]()
	defer q.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	c, err := pipeline.NewConsumer(q, func(int) {}, pipeline.Config{Logger: zap.New(core)})
	require.NoError(t, err)

	ctx, cancelCtx := context.WithCancel(context.Background())
	c.Start(ctx)
	require.NoError(t, q.Push(1))
	cancelCtx()

	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after context cancellation")
	}
	assert.Equal(t, uint64(1), c.Processed())
	assert.Equal(t, 1, logs.FilterMessage("consumer finished").Len())
}

func TestConsumer_Reports(t *testing.T) {
	q := queue.MustNew[int]()
	defer q.Close()

	reports := make(chan pipeline.Report, 1)
	var final pipeline.Report
	c, err := pipeline.NewConsumer(q, func(int) {}, pipeline.Config{
		ReportEvery: 5 * time.Millisecond,
		Ticker:      tick.KindAtomic,
		OnReport: func(r pipeline.Report) {
			if r.Final {
				final = r
				return
			}
			select {
			case reports <- r:
			default:
			}
		},
	})
	require.NoError(t, err)
	c.Start(context.Background())

	require.NoError(t, q.PushSlice([]int{1, 2, 3}))

	select {
	case r := <-reports:
		assert.False(t, r.Final)
	case <-time.After(5 * time.Second):
		t.Fatal("no progress report")
	}
	c.Stop()

	// Stop waits for the consumer goroutine, so final is safe to read.
	assert.True(t, final.Final)
	assert.Equal(t, uint64(3), final.Processed)
	assert.Positive(t, final.Rate())
}

func TestConsumer_Pinned(t *testing.T) {
	q := queue.MustNew[int]()
	defer q.Close()

	sum := 0
	c, err := pipeline.NewConsumer(q, func(v int) { sum += v }, pipeline.Config{
		Pin:        true,
		CPU:        0,
		SpinBudget: 1,
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)
	c.Start(context.Background())

	// Pinning may be refused (containers, other platforms); the consumer
	// keeps running unpinned either way.
	for i := 1; i <= 100; i++ {
		require.NoError(t, q.Push(i))
	}
	c.Stop()
	assert.Equal(t, 5050, sum)
}

func TestNewConsumer_Errors(t *testing.T) {
	q := queue.MustNew[int]()
	defer q.Close()

	_, err := pipeline.NewConsumer[int](nil, func(int) {}, pipeline.Config{})
	assert.Error(t, err)

	_, err = pipeline.NewConsumer(q, nil, pipeline.Config{})
	assert.Error(t, err)

	_, err = pipeline.NewConsumer(q, func(int) {}, pipeline.Config{
		ReportEvery: time.Second,
		Ticker:      "tsc",
	})
	assert.ErrorIs(t, err, tick.ErrUnknownKind)
}

func TestProducer_Stopped(t *testing.T) {
	q := queue.MustNew[string]()
	defer q.Close()

	stop := cancel.NewAtomic()
	p := pipeline.NewProducer(q, stop)

	require.NoError(t, p.Push("a"))
	require.NoError(t, p.PushSlice([]string{"b", "c"}))
	assert.Equal(t, uint64(3), p.Submitted())

	stop.Cancel()
	assert.ErrorIs(t, p.Push("d"), pipeline.ErrStopped)
	assert.ErrorIs(t, p.PushSlice([]string{"e"}), pipeline.ErrStopped)
	assert.Equal(t, uint64(3), p.Submitted())

	var got []string
	q.ConsumeAll(func(v string) { got = append(got, v) })
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestProducer_AllocatorError(t *testing.T) {
	q := queue.MustNew(queue.WithAllocator[int](queue.NewLimitAllocator[int](nil, 1)))
	defer q.Close()

	p := pipeline.NewProducer(q, nil)
	assert.ErrorIs(t, p.Push(1), queue.ErrAllocatorExhausted)
	assert.ErrorIs(t, p.PushSlice([]int{1}), queue.ErrAllocatorExhausted)
	assert.Zero(t, p.Submitted())
}
