package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
)

func (a *app) pingPongCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pingpong",
		Short: "Push and pop on one goroutine: channel vs linked queue",
		Args:  cobra.NoArgs,
		RunE:  a.runPingPong,
	}
	cmd.Flags().Int("size", 1024, "channel buffer size")
	return cmd
}

func (a *app) runPingPong(cmd *cobra.Command, _ []string) error {
	n := a.v.GetInt("n")
	size := a.v.GetInt("size")
	if size < 1 {
		return fmt.Errorf("--size must be at least 1, got %d", size)
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Benchmarking SPSC ping-pong (%d iterations, channel size=%d)\n", n, size)
	fmt.Fprintln(w, rule)

	// Benchmark channel
	ch := make(chan int, size)
	start := time.Now()
	for i := 0; i < n; i++ {
		ch <- i
		<-ch
	}
	chDur := time.Since(start)

	// Benchmark linked queue
	q, err := queue.New[int]()
	if err != nil {
		return err
	}
	defer q.Close()
	start = time.Now()
	for i := 0; i < n; i++ {
		if err := q.Push(i); err != nil {
			return err
		}
		q.Pop()
	}
	lqDur := time.Since(start)
	stats := q.Stats()

	a.log.Debug("pingpong done",
		zap.Duration("channel", chDur),
		zap.Duration("linked", lqDur),
		zap.Uint64("nodes_allocated", stats.Allocated),
		zap.Uint64("nodes_recycled", stats.Recycled),
	)

	// Results
	chPerOp := perOp(chDur, n)
	lqPerOp := perOp(lqDur, n)

	fmt.Fprintf(w, "\nResults (push + pop per iteration):\n")
	fmt.Fprintf(w, "  Channel:      %v (%.2f ns/op)\n", chDur, chPerOp)
	fmt.Fprintf(w, "  LinkedQueue:  %v (%.2f ns/op)\n", lqDur, lqPerOp)
	printSpeedup(w, "Channel", chPerOp, "LinkedQueue", lqPerOp)

	fmt.Fprintf(w, "\nNodes: %d allocated, %d recycled\n", stats.Allocated, stats.Recycled)

	// Extrapolate to ops/second
	if chPerOp > 0 && lqPerOp > 0 {
		fmt.Fprintf(w, "\nThroughput (theoretical max):\n")
		fmt.Fprintf(w, "  Channel:      %.2f M ops/sec\n", 1000/chPerOp)
		fmt.Fprintf(w, "  LinkedQueue:  %.2f M ops/sec\n", 1000/lqPerOp)
	}
	return nil
}
