package pipeline

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/randomizedcoder/go-spsc-linked/internal/queue"
)

// Report is a progress snapshot taken on the consumer goroutine.
type Report struct {
	Processed uint64
	Elapsed   time.Duration
	Queue     queue.Stats
	Final     bool
}

// Rate returns processed values per second.
func (r Report) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Processed) / r.Elapsed.Seconds()
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r Report) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint64("processed", r.Processed)
	enc.AddDuration("elapsed", r.Elapsed)
	enc.AddFloat64("rate_per_sec", r.Rate())
	enc.AddUint64("nodes_allocated", r.Queue.Allocated)
	enc.AddUint64("nodes_recycled", r.Queue.Recycled)
	enc.AddBool("final", r.Final)
	return nil
}

func logReport(log *zap.Logger, r Report) {
	if r.Final {
		log.Info("consumer finished", zap.Object("report", r))
		return
	}
	log.Debug("consumer progress", zap.Object("report", r))
}
