// Package metrics exposes validation metrics for the watch command.
package metrics

import "time"

// Outcome labels the result of validating one file.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Recorder receives validation metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncValidation(outcome Outcome)
	ObserveValidationDuration(d time.Duration)
	AddDiagnostics(kind, severity string, n int)
	SetQueueDepth(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncValidation(Outcome)                   {}
func (NoopRecorder) ObserveValidationDuration(time.Duration) {}
func (NoopRecorder) AddDiagnostics(string, string, int)      {}
func (NoopRecorder) SetQueueDepth(int)                       {}
