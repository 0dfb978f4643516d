package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CreationsStored           uint64
	QuotaDenials              uint64
	GenerationsFailed         uint64
	GenerationDurationCount   uint64
	GenerationDurationTotalNs int64
	LikesToggled              uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	creationsStored           uint64
	quotaDenials              uint64
	generationsFailed         uint64
	generationDurationCount   uint64
	generationDurationTotalNs int64
	likesToggled              uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		CreationsStored:           atomic.LoadUint64(&m.creationsStored),
		QuotaDenials:              atomic.LoadUint64(&m.quotaDenials),
		GenerationsFailed:         atomic.LoadUint64(&m.generationsFailed),
		GenerationDurationCount:   atomic.LoadUint64(&m.generationDurationCount),
		GenerationDurationTotalNs: atomic.LoadInt64(&m.generationDurationTotalNs),
		LikesToggled:              atomic.LoadUint64(&m.likesToggled),
	}
}

// IncCreationStored increments the stored-creation counter.
func (m *InMemoryRecorder) IncCreationStored() {
	atomic.AddUint64(&m.creationsStored, 1)
}

// IncQuotaDenied increments the quota denial counter.
func (m *InMemoryRecorder) IncQuotaDenied() {
	atomic.AddUint64(&m.quotaDenials, 1)
}

// IncGenerationFailed increments the failed-generation counter.
func (m *InMemoryRecorder) IncGenerationFailed() {
	atomic.AddUint64(&m.generationsFailed, 1)
}

// ObserveGenerationDuration records one generation round trip.
func (m *InMemoryRecorder) ObserveGenerationDuration(duration time.Duration) {
	atomic.AddUint64(&m.generationDurationCount, 1)
	atomic.AddInt64(&m.generationDurationTotalNs, duration.Nanoseconds())
}

// IncLikeToggled increments the like-toggle counter.
func (m *InMemoryRecorder) IncLikeToggled() {
	atomic.AddUint64(&m.likesToggled, 1)
}
