// Package metrics provides metrics recording for the fan processor.
// It uses the null object pattern to avoid nil checks throughout the codebase.
package metrics

import "time"

// Recorder defines the interface for recording event processing metrics.
type Recorder interface {
	// RecordReceived increments the count of received events.
	RecordReceived()

	// RecordProcessed records a successfully processed event with its latency.
	RecordProcessed(latency time.Duration)

	// RecordSkipped increments the count of skipped events (unroutable or unknown type).
	RecordSkipped()

	// RecordError increments the error counter.
	RecordError()

	// RecordFailed increments the count of events abandoned after a workflow failure.
	RecordFailed()
}

// NoOp is a no-op implementation of Recorder that discards all metrics.
// Use this when metrics collection is not configured.
type NoOp struct{}

// NewNoOp creates a new no-op metrics recorder.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) RecordReceived()                 {}
func (n *NoOp) RecordProcessed(_ time.Duration) {}
func (n *NoOp) RecordSkipped()                  {}
func (n *NoOp) RecordError()                    {}
func (n *NoOp) RecordFailed()                   {}

// Ensure NoOp implements Recorder
var _ Recorder = (*NoOp)(nil)
