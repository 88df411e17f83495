// Package metrics records client-side connectivity metrics: API request
// outcomes, health probe attempts, boot state and share strategies.
package metrics

import "time"

// Recorder receives connectivity events. Implementations must be safe for
// concurrent use and must never block the caller.
type Recorder interface {
	ObserveRequest(route, outcome string, d time.Duration)
	IncProbe(result string)
	SetBootState(state string)
	IncShare(strategy string)
}

// Outcome labels shared by recorders and callers.
const (
	OutcomeSuccess     = "success"
	OutcomeUnreachable = "unreachable"
	OutcomeRejected    = "rejected"
	OutcomeMalformed   = "malformed"
)

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRequest(string, string, time.Duration) {}
func (NoopRecorder) IncProbe(string)                              {}
func (NoopRecorder) SetBootState(string)                          {}
func (NoopRecorder) IncShare(string)                              {}

var _ Recorder = NoopRecorder{}
