package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a single counter or histogram slot.
type MetricID uint16

const (
	MetricBootstrapSuccess MetricID = iota
	MetricBootstrapSkipped
	MetricBootstrapRejected
	MetricLoginSuccess
	MetricLoginFailure
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricLogout
	MetricProfilePatched
	MetricSessionEstablished
	MetricSessionCleared
	MetricAuthLatency
	MetricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls metric collection.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and the optional auth latency histogram.
// Metrics instances are configured at construction and then immutable.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount]metricHistogram
}

// Snapshot is a point-in-time deep copy of all metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New creates a Metrics instance. When cfg.Enabled is false all operations
// are no-ops.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Enabled reports whether metric collection is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether histogram collection is active.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only the auth latency histogram is
// collected; other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= MetricIDCount {
		return
	}
	if id != MetricAuthLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current counter value for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthLatency].buckets[i])
		}
		s.Histograms[MetricAuthLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
