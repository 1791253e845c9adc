package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
)

func (a *app) burstCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "burst",
		Short: "Bulk appends drained by ConsumeAll: per-value vs PushSlice vs EmplaceBatch",
		Args:  cobra.NoArgs,
		RunE:  a.runBurst,
	}
	cmd.Flags().Int("batch", 256, "values per burst")
	return cmd
}

func (a *app) runBurst(cmd *cobra.Command, _ []string) error {
	n := a.v.GetInt("n")
	batch := a.v.GetInt("batch")
	if batch < 1 {
		return fmt.Errorf("--batch must be at least 1, got %d", batch)
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Benchmarking SPSC bursts (%d values, batch=%d)\n", n, batch)
	fmt.Fprintln(w, rule)

	buf := make([]int, batch)
	var sum int
	sink := func(v int) { sum += v }

	single, err := runBurstVariant(n, batch, func(q *queue.LinkedQueue[int], base, k int) error {
		for i := range k {
			if err := q.Push(base + i); err != nil {
				return err
			}
		}
		return nil
	}, sink)
	if err != nil {
		return err
	}

	slice, err := runBurstVariant(n, batch, func(q *queue.LinkedQueue[int], base, k int) error {
		for i := range k {
			buf[i] = base + i
		}
		return q.PushSlice(buf[:k])
	}, sink)
	if err != nil {
		return err
	}

	emplace, err := runBurstVariant(n, batch, func(q *queue.LinkedQueue[int], base, k int) error {
		return q.EmplaceBatch(k, func(i int, v *int) error {
			*v = base + i
			return nil
		})
	}, sink)
	if err != nil {
		return err
	}

	a.log.Debug("burst done", zap.Int("checksum", sum))

	singlePerOp := perOp(single.elapsed, n)
	slicePerOp := perOp(slice.elapsed, n)
	emplacePerOp := perOp(emplace.elapsed, n)

	fmt.Fprintf(w, "\nResults (append + drain per value):\n")
	fmt.Fprintf(w, "  Push:          %v (%.2f ns/value)\n", single.elapsed, singlePerOp)
	fmt.Fprintf(w, "  PushSlice:     %v (%.2f ns/value)\n", slice.elapsed, slicePerOp)
	fmt.Fprintf(w, "  EmplaceBatch:  %v (%.2f ns/value)\n", emplace.elapsed, emplacePerOp)
	printSpeedup(w, "Push", singlePerOp, "PushSlice", slicePerOp)

	fmt.Fprintf(w, "\nNodes (allocated / recycled):\n")
	fmt.Fprintf(w, "  Push:          %d / %d\n", single.stats.Allocated, single.stats.Recycled)
	fmt.Fprintf(w, "  PushSlice:     %d / %d\n", slice.stats.Allocated, slice.stats.Recycled)
	fmt.Fprintf(w, "  EmplaceBatch:  %d / %d\n", emplace.stats.Allocated, emplace.stats.Recycled)
	return nil
}

type burstResult struct {
	elapsed time.Duration
	stats   queue.Stats
}

// runBurstVariant appends n values in bursts of at most batch using fill
// and drains each burst with ConsumeAll.
func runBurstVariant(
	n, batch int,
	fill func(q *queue.LinkedQueue[int], base, k int) error,
	sink func(int),
) (burstResult, error) {
	q, err := queue.New[int]()
	if err != nil {
		return burstResult{}, err
	}
	defer q.Close()

	start := time.Now()
	for base := 0; base < n; base += batch {
		k := min(batch, n-base)
		if err := fill(q, base, k); err != nil {
			return burstResult{}, err
		}
		if got := q.ConsumeAll(sink); got != k {
			return burstResult{}, fmt.Errorf("drained %d values, want %d", got, k)
		}
	}
	return burstResult{elapsed: time.Since(start), stats: q.Stats()}, nil
}
