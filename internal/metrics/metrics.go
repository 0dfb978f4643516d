// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Generation pipeline metrics
	IncCreationStored()
	IncQuotaDenied()
	IncGenerationFailed()
	ObserveGenerationDuration(duration time.Duration)

	// Community feed metrics
	IncLikeToggled()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
