// Package combined provides interaction benchmarks that test the linked
// queue together with the cancel, tick and pipeline packages, and against
// buffered channels and go-lock-free-ring.
//
// These benchmarks are more representative of real-world performance
// than isolated micro-benchmarks, as they capture the cumulative cost
// and any interactions between components.
package combined
