// Package pipeline runs the two ends of a queue.LinkedQueue on dedicated
// goroutines.
//
// Consumer owns the consumer end. It locks its goroutine to an OS thread,
// optionally pins that thread to a CPU, and drains the queue into a
// handler until stopped. Producer owns the producer end and refuses new
// work once its stop signal fires.
//
// Neither side ever blocks on the other: the consumer polls, and yields
// the processor after a run of empty polls.
package pipeline

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/randomizedcoder/go-spsc-linked/internal/tick"
)

// ErrStopped is returned by Producer once its stop signal has fired.
var ErrStopped = errors.New("pipeline: stopped")

// ErrAffinityUnsupported is returned when CPU pinning is not available on
// this platform.
var ErrAffinityUnsupported = errors.New("pipeline: CPU affinity not supported on this platform")

// DefaultSpinBudget is the number of empty polls before the consumer
// yields the processor.
const DefaultSpinBudget = 256

// Config controls a Consumer.
type Config struct {
	// Pin locks the consumer thread to CPU.
	Pin bool
	CPU int

	// SpinBudget is the number of consecutive empty polls after which the
	// consumer calls runtime.Gosched. Zero means DefaultSpinBudget.
	SpinBudget int

	// ReportEvery is the period of progress reports. Zero disables them.
	ReportEvery time.Duration
	// Ticker selects the report ticker implementation.
	Ticker tick.Kind
	// OnReport, if set, receives every report on the consumer goroutine.
	OnReport func(Report)

	// Logger receives lifecycle and report logs. Nil means no logging.
	Logger *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.SpinBudget <= 0 {
		c.SpinBudget = DefaultSpinBudget
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
