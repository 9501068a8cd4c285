package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks resolution activity of one editor.
type Metrics struct {
	// Preview resolution
	previewCount   atomic.Uint64
	previewTotalNs atomic.Int64
	previewMinNs   atomic.Int64
	previewMaxNs   atomic.Int64
	lastPreviewNs  atomic.Int64

	// Export resolution
	exportCount    atomic.Uint64
	exportTotalNs  atomic.Int64
	exportFailures atomic.Uint64

	// Live theme fallbacks
	lastGoodUsed   atomic.Uint64
	instantiations atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so first preview will be smaller
	m.previewMinNs.Store(1<<63 - 1)
	return m
}

// RecordPreview records one preview resolution.
func (m *Metrics) RecordPreview(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.previewCount.Add(1)
	m.previewTotalNs.Add(ns)
	m.lastPreviewNs.Store(ns)

	for {
		old := m.previewMinNs.Load()
		if ns >= old || m.previewMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.previewMaxNs.Load()
		if ns <= old || m.previewMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordExport records one export resolution and whether it failed.
func (m *Metrics) RecordExport(duration time.Duration, failed bool) {
	m.exportCount.Add(1)
	m.exportTotalNs.Add(duration.Nanoseconds())
	if failed {
		m.exportFailures.Add(1)
	}
}

// RecordLastGoodUsed records a live theme built from the last known good
// configuration.
func (m *Metrics) RecordLastGoodUsed() {
	m.lastGoodUsed.Add(1)
}

// RecordInstantiation records a live theme instantiation.
func (m *Metrics) RecordInstantiation() {
	m.instantiations.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	previewCount := m.previewCount.Load()
	exportCount := m.exportCount.Load()

	var avgPreviewNs int64
	if previewCount > 0 {
		avgPreviewNs = m.previewTotalNs.Load() / int64(previewCount)
	}

	var avgExportNs int64
	if exportCount > 0 {
		avgExportNs = m.exportTotalNs.Load() / int64(exportCount)
	}

	minPreviewNs := m.previewMinNs.Load()
	if minPreviewNs == 1<<63-1 {
		minPreviewNs = 0
	}

	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		PreviewCount:   previewCount,
		AvgPreviewNs:   avgPreviewNs,
		MinPreviewNs:   minPreviewNs,
		MaxPreviewNs:   m.previewMaxNs.Load(),
		LastPreviewNs:  m.lastPreviewNs.Load(),
		ExportCount:    exportCount,
		AvgExportNs:    avgExportNs,
		ExportFailures: m.exportFailures.Load(),
		LastGoodUsed:   m.lastGoodUsed.Load(),
		Instantiations: m.instantiations.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.previewCount.Store(0)
	m.previewTotalNs.Store(0)
	m.previewMinNs.Store(1<<63 - 1)
	m.previewMaxNs.Store(0)
	m.lastPreviewNs.Store(0)
	m.exportCount.Store(0)
	m.exportTotalNs.Store(0)
	m.exportFailures.Store(0)
	m.lastGoodUsed.Store(0)
	m.instantiations.Store(0)
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	PreviewCount   uint64
	AvgPreviewNs   int64
	MinPreviewNs   int64
	MaxPreviewNs   int64
	LastPreviewNs  int64
	ExportCount    uint64
	AvgExportNs    int64
	ExportFailures uint64
	LastGoodUsed   uint64
	Instantiations uint64
}

// PreviewsPerSecond returns the preview rate implied by the average
// preview time.
func (s MetricsSnapshot) PreviewsPerSecond() float64 {
	if s.AvgPreviewNs == 0 {
		return 0
	}
	return 1e9 / float64(s.AvgPreviewNs)
}

// ExportFailureRate returns the percentage of failed exports.
func (s MetricsSnapshot) ExportFailureRate() float64 {
	if s.ExportCount == 0 {
		return 0
	}
	return float64(s.ExportFailures) / float64(s.ExportCount) * 100
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
