// Package health tracks report-run outcomes so /status can answer how the
// bot has been doing.
package health

import "time"

// Status summarises the recorded run history.
type Status struct {
	TotalRuns  int
	Successes  int
	Failures   int
	LastRun    time.Time
	LastStatus string
	LastError  string
	StartedAt  time.Time
}

// Recorder persists run outcomes.
type Recorder interface {
	RecordSuccess() error
	RecordFailure(errMsg string) error
	Status() (*Status, error)
	Close() error
}

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{ started time.Time }

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{started: time.Now().UTC()} }

func (n *NoopRecorder) RecordSuccess() error         { return nil }
func (n *NoopRecorder) RecordFailure(_ string) error { return nil }
func (n *NoopRecorder) Status() (*Status, error) {
	return &Status{LastStatus: "Never run", StartedAt: n.started}, nil
}
func (n *NoopRecorder) Close() error { return nil }
