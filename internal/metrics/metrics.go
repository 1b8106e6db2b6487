// Package metrics provides a small instrumentation surface with a no-op
// default and a Prometheus-backed implementation installed at startup.
package metrics

import (
	"sync"
	"time"
)

// Recorder defines the metrics surface used across the codebase.
type Recorder interface {
	IncCohortOp(op string, success bool)
	ObserveCohortOpSeconds(op string, success bool, seconds float64)
	IncDataQualityIssue(kind string)
	IncEmbeddingCache(hit bool)
	IncExternalCall(service string, success bool)
}

type noopRecorder struct{}

func (noopRecorder) IncCohortOp(string, bool)                     {}
func (noopRecorder) ObserveCohortOpSeconds(string, bool, float64) {}
func (noopRecorder) IncDataQualityIssue(string)                   {}
func (noopRecorder) IncEmbeddingCache(bool)                       {}
func (noopRecorder) IncExternalCall(string, bool)                 {}

var (
	recMu    sync.RWMutex
	recorder Recorder = noopRecorder{}
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	if r == nil {
		r = noopRecorder{}
	}
	recorder = r
}

// TimeCohortOp times a cohort engine operation.
func TimeCohortOp(op string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncCohortOp(op, success)
		Default().ObserveCohortOpSeconds(op, success, dur)
	}
}
