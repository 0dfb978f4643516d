package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCreationStored is a no-op.
func (n *NoopRecorder) IncCreationStored() {}

// IncQuotaDenied is a no-op.
func (n *NoopRecorder) IncQuotaDenied() {}

// IncGenerationFailed is a no-op.
func (n *NoopRecorder) IncGenerationFailed() {}

// ObserveGenerationDuration is a no-op.
func (n *NoopRecorder) ObserveGenerationDuration(duration time.Duration) {}

// IncLikeToggled is a no-op.
func (n *NoopRecorder) IncLikeToggled() {}
