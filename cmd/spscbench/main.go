// Command spscbench measures the linked SPSC queue against buffered
// channels.
//
// Usage:
//
//	go run ./cmd/spscbench pingpong -n 10000000
//	go run ./cmd/spscbench pipeline -n 10000000 --pin --cpu 2 --cancel context
//	go run ./cmd/spscbench burst -n 10000000 --batch 256
//	go run ./cmd/spscbench hotloop -n 10000000
//
// Every flag can also be set through the environment, e.g. SPSCBENCH_N or
// SPSCBENCH_METRICS_ADDR.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
