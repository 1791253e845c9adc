// Package metrics exports queue and pipeline counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
)

// StatsSource is anything that reports queue counters. *queue.LinkedQueue
// and *pipeline.Consumer both qualify.
type StatsSource interface {
	Stats() queue.Stats
}

// processedSource is implemented by pipeline consumers.
type processedSource interface {
	Processed() uint64
}

const namespace = "spsc"

// QueueCollector implements prometheus.Collector for a single queue.
type QueueCollector struct {
	src StatsSource

	allocated *prometheus.Desc
	recycled  *prometheus.Desc
	consumed  *prometheus.Desc
	pending   *prometheus.Desc
	processed *prometheus.Desc // nil unless src reports Processed
}

// NewQueueCollector returns a collector reading src on every scrape. Every
// metric carries the constant label queue=name.
func NewQueueCollector(name string, src StatsSource) *QueueCollector {
	labels := prometheus.Labels{"queue": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", metric), help, nil, labels)
	}

	c := &QueueCollector{
		src:       src,
		allocated: desc("nodes_allocated_total", "Nodes obtained from the allocator, including the initial sentinel."),
		recycled:  desc("nodes_recycled_total", "Appends served from the recycle range without allocating."),
		consumed:  desc("values_consumed_total", "Values removed by the consumer."),
		pending:   desc("values_pending", "Values appended but not yet consumed."),
	}
	if _, ok := src.(processedSource); ok {
		c.processed = desc("pipeline_processed_total", "Values handed to the pipeline consumer's handler.")
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocated
	ch <- c.recycled
	ch <- c.consumed
	ch <- c.pending
	if c.processed != nil {
		ch <- c.processed
	}
}

// Collect implements prometheus.Collector.
func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.allocated, prometheus.CounterValue, float64(s.Allocated))
	ch <- prometheus.MustNewConstMetric(c.recycled, prometheus.CounterValue, float64(s.Recycled))
	ch <- prometheus.MustNewConstMetric(c.consumed, prometheus.CounterValue, float64(s.Consumed))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(Pending(s)))
	if c.processed != nil {
		p := c.src.(processedSource).Processed()
		ch <- prometheus.MustNewConstMetric(c.processed, prometheus.CounterValue, float64(p))
	}
}

// Pending derives the number of queued values from a snapshot. Every
// append either allocates or recycles one node, and the sentinel accounts
// for one allocation. The counters are read independently, so a snapshot
// racing the consumer is clamped at zero.
func Pending(s queue.Stats) uint64 {
	appended := s.Allocated + s.Recycled
	if appended == 0 {
		return 0
	}
	appended--
	if s.Consumed >= appended {
		return 0
	}
	return appended - s.Consumed
}
