// Package metrics records query instrumentation for the analytics engine.
package metrics

import (
	"context"
	"errors"
	"time"
)

// Recorder receives one call per completed engine query.
// Implementations MUST NOT block or propagate errors.
type Recorder interface {
	QueryCompleted(query string, d time.Duration, results int, err error)
}

// Outcome label values for rocketminer_queries_total.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidArgument = "invalid_argument"
	OutcomeCanceled        = "canceled"
	OutcomeFailed          = "failed"
)

// Classify maps a query error to an outcome label. Errors that report
// InvalidArgument() == true count as rejected input.
func Classify(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var arg interface{ InvalidArgument() bool }
	if errors.As(err, &arg) && arg.InvalidArgument() {
		return OutcomeInvalidArgument
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OutcomeCanceled
	}
	return OutcomeFailed
}

// NoopRecorder is a no-op implementation of Recorder.
// Used when metrics are disabled to avoid nil checks.
type NoopRecorder struct{}

// NewNoopRecorder returns a no-op recorder.
func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) QueryCompleted(query string, d time.Duration, results int, err error) {}
