package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/randomizedcoder/go-spsc-linked/internal/cancel"
	"github.com/randomizedcoder/go-spsc-linked/internal/metrics"
	"github.com/randomizedcoder/go-spsc-linked/internal/pipeline"
	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
	"github.com/randomizedcoder/go-spsc-linked/internal/tick"
)

func (a *app) pipelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Producer and pinned consumer goroutines joined by a linked queue",
		Example: `  spscbench pipeline -n 50000000 --pin --cpu 3
  spscbench pipeline --cancel context --report 500ms --debug
  SPSCBENCH_METRICS_ADDR=:9090 spscbench pipeline --hold 30s`,
		Args: cobra.NoArgs,
		RunE: a.runPipeline,
	}
	cmd.Flags().Bool("pin", false, "pin the consumer thread to --cpu")
	cmd.Flags().Int("cpu", 0, "CPU for the pinned consumer")
	cmd.Flags().Int("spin", pipeline.DefaultSpinBudget, "empty polls before the consumer yields")
	cmd.Flags().String("cancel", "atomic", "producer stop signal: atomic or context")
	cmd.Flags().Duration("report", time.Second, "consumer progress report period (0 disables)")
	cmd.Flags().String("ticker", string(tick.KindAtomic), "report ticker: std, atomic or batch")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus /metrics on this address")
	cmd.Flags().Duration("hold", 0, "keep /metrics up this long after the run")
	return cmd
}

func (a *app) runPipeline(cmd *cobra.Command, _ []string) error {
	n := a.v.GetInt("n")
	w := cmd.OutOrStdout()

	ctx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stopSignals()

	stop, err := newCanceler(ctx, a.v.GetString("cancel"))
	if err != nil {
		return err
	}
	defer cancel.Propagate(ctx, stop)()

	alloc := queue.NewCountingAllocator[int](nil)
	q, err := queue.New(queue.WithAllocator[int](alloc))
	if err != nil {
		return err
	}
	defer q.Close()

	// The handler runs on the consumer goroutine only; Stop orders its
	// writes before the reads below.
	expected := 0
	var order error
	handle := func(v int) {
		if v != expected && order == nil {
			order = fmt.Errorf("FIFO violation: expected %d, got %d", expected, v)
		}
		expected++
	}

	consumer, err := pipeline.NewConsumer(q, handle, pipeline.Config{
		Pin:         a.v.GetBool("pin"),
		CPU:         a.v.GetInt("cpu"),
		SpinBudget:  a.v.GetInt("spin"),
		ReportEvery: a.v.GetDuration("report"),
		Ticker:      tick.Kind(a.v.GetString("ticker")),
		Logger:      a.log,
	})
	if err != nil {
		return err
	}

	if addr := a.v.GetString("metrics-addr"); addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			metrics.NewQueueCollector("pipeline", consumer),
		)
		srv := serveMetrics(addr, reg, a.log)
		defer func() {
			if hold := a.v.GetDuration("hold"); hold > 0 {
				a.log.Info("holding metrics endpoint", zap.String("addr", addr), zap.Duration("hold", hold))
				select {
				case <-time.After(hold):
				case <-ctx.Done():
				}
			}
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	fmt.Fprintf(w, "Benchmarking SPSC pipeline (%d values, cancel=%s, pin=%v)\n",
		n, a.v.GetString("cancel"), a.v.GetBool("pin"))
	fmt.Fprintln(w, rule)

	producer := pipeline.NewProducer(q, stop)
	consumer.Start(ctx)
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := producer.Push(i); err != nil {
			if errors.Is(err, pipeline.ErrStopped) {
				a.log.Warn("producer stopped early", zap.Uint64("submitted", producer.Submitted()))
				break
			}
			consumer.Stop()
			return err
		}
	}
	consumer.Stop()
	elapsed := time.Since(start)

	if order != nil {
		return order
	}

	submitted := producer.Submitted()
	stats := consumer.Stats()
	valPerOp := perOp(elapsed, int(submitted))

	fmt.Fprintf(w, "\nResults:\n")
	fmt.Fprintf(w, "  Submitted:  %d\n", submitted)
	fmt.Fprintf(w, "  Processed:  %d\n", consumer.Processed())
	fmt.Fprintf(w, "  Elapsed:    %v (%.2f ns/value)\n", elapsed, valPerOp)
	if valPerOp > 0 {
		fmt.Fprintf(w, "  Throughput: %.2f M values/sec\n", 1000/valPerOp)
	}
	fmt.Fprintf(w, "\nNodes:\n")
	fmt.Fprintf(w, "  Allocated:  %d\n", stats.Allocated)
	fmt.Fprintf(w, "  Recycled:   %d\n", stats.Recycled)

	// The consumer has exited, so the queue can be torn down here.
	q.Close()
	fmt.Fprintf(w, "  Leaked:     %d\n", alloc.Outstanding())
	return nil
}

// newCanceler returns the producer's stop signal. Both kinds fire when
// ctx is cancelled.
func newCanceler(ctx context.Context, kind string) (cancel.Canceler, error) {
	switch kind {
	case "atomic":
		return cancel.NewAtomic(), nil
	case "context":
		return cancel.NewContext(ctx), nil
	default:
		return nil, fmt.Errorf("unknown --cancel %q (want atomic or context)", kind)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.String("addr", addr), zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}
