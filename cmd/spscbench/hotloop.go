package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/randomizedcoder/go-spsc-linked/internal/cancel"
	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
	"github.com/randomizedcoder/go-spsc-linked/internal/tick"
)

func (a *app) hotLoopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotloop",
		Short: "Consumer hot loop cost: cancel check + tick check + dequeue",
		Args:  cobra.NoArgs,
		RunE:  a.runHotLoop,
	}
	cmd.Flags().Int("depth", 1024, "values kept in the queue")
	return cmd
}

func (a *app) runHotLoop(cmd *cobra.Command, _ []string) error {
	n := a.v.GetInt("n")
	depth := a.v.GetInt("depth")
	if depth < 1 {
		return fmt.Errorf("--depth must be at least 1, got %d", depth)
	}
	w := cmd.OutOrStdout()

	interval := time.Hour // Long so we measure check overhead, not actual ticks

	fmt.Fprintf(w, "Benchmarking consumer hot loop (%d iterations, depth=%d)\n", n, depth)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This simulates a consumer loop that checks for cancellation")
	fmt.Fprintln(w, "and periodic timing on every value it moves:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  for !stop.Done() {")
	fmt.Fprintln(w, "      if ticker.Tick() { report() }")
	fmt.Fprintln(w, "      v, _ := q.Pop(); q.Push(v)")
	fmt.Fprintln(w, "  }")
	fmt.Fprintln(w)

	// Standard: context + time.Ticker + channel
	ctxCancel := cancel.NewContext(cmd.Context())
	stdTicker := tick.NewTicker(interval)
	ch := make(chan int, depth)
	for i := 0; i < depth; i++ {
		ch <- i
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		_ = ctxCancel.Done()
		_ = stdTicker.Tick()
		ch <- <-ch
	}
	stdDur := time.Since(start)
	stdTicker.Stop()
	ctxCancel.Cancel()

	// Linked: atomic cancel + AtomicTicker + linked queue
	linkedDur, err := hotLoopLinked(n, depth, tick.NewAtomicTicker(interval))
	if err != nil {
		return err
	}

	// Linked + batch: atomic cancel + BatchTicker + linked queue
	batchDur, err := hotLoopLinked(n, depth, tick.NewBatch(interval, tick.DefaultBatchEvery))
	if err != nil {
		return err
	}

	stdPerOp := perOp(stdDur, n)
	linkedPerOp := perOp(linkedDur, n)
	batchPerOp := perOp(batchDur, n)

	fmt.Fprintln(w, "Results:")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Standard (ctx + time.Ticker + chan):\n")
	fmt.Fprintf(w, "    Total: %v, Per-op: %.2f ns\n", stdDur, stdPerOp)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Linked (atomic + AtomicTicker + LinkedQueue):\n")
	fmt.Fprintf(w, "    Total: %v, Per-op: %.2f ns\n", linkedDur, linkedPerOp)
	if linkedPerOp > 0 {
		fmt.Fprintf(w, "    Speedup: %.2fx\n", stdPerOp/linkedPerOp)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Batch (atomic + BatchTicker + LinkedQueue):\n")
	fmt.Fprintf(w, "    Total: %v, Per-op: %.2f ns\n", batchDur, batchPerOp)
	if batchPerOp > 0 {
		fmt.Fprintf(w, "    Speedup: %.2fx\n", stdPerOp/batchPerOp)
	}
	fmt.Fprintln(w)

	// Impact analysis
	fmt.Fprintln(w, "Impact Analysis:")
	fmt.Fprintln(w, rule)
	savedNs := stdPerOp - linkedPerOp
	fmt.Fprintf(w, "  Savings per iteration: %.2f ns\n", savedNs)
	fmt.Fprintln(w)

	rates := []int{100_000, 1_000_000, 10_000_000}
	for _, rate := range rates {
		savedPerSec := savedNs * float64(rate) / 1e9
		fmt.Fprintf(w, "  At %dK ops/sec: save %.2f ms/sec (%.2f%% of 1 core)\n",
			rate/1000, savedPerSec*1000, savedPerSec*100)
	}
	return nil
}

func hotLoopLinked(n, depth int, ticker tick.Ticker) (time.Duration, error) {
	stop := cancel.NewAtomic()
	q, err := queue.New[int]()
	if err != nil {
		return 0, err
	}
	defer q.Close()
	for i := 0; i < depth; i++ {
		if err := q.Push(i); err != nil {
			return 0, err
		}
	}

	start := time.Now()
	for i := 0; i < n && !stop.Done(); i++ {
		_ = ticker.Tick()
		v, _ := q.Pop()
		if err := q.Push(v); err != nil {
			return 0, err
		}
	}
	d := time.Since(start)
	ticker.Stop()
	return d, nil
}
