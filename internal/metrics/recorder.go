package metrics

import "time"

// Outcome labels a finished conversion.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeDryRun   Outcome = "dry_run"
	OutcomeRejected Outcome = "rejected" // path check failed
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Recorder defines observability hooks for conversions. All methods must be
// safe to call on the NoopRecorder so callers never nil-check.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveConversionDuration(d time.Duration)
	IncConversionOutcome(outcome Outcome)
	AddCells(kind string, n int)
	IncViewerFailure()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveConversionDuration(time.Duration)    {}
func (NoopRecorder) IncConversionOutcome(Outcome)               {}
func (NoopRecorder) AddCells(string, int)                       {}
func (NoopRecorder) IncViewerFailure()                          {}
