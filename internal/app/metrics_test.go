package app

import (
	"testing"
	"time"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if m == nil {
		t.Fatal("NewMetrics() returned nil")
	}

	snapshot := m.Snapshot()
	if snapshot.PreviewCount != 0 {
		t.Errorf("expected 0 previews, got %d", snapshot.PreviewCount)
	}
	if snapshot.MinPreviewNs != 0 {
		t.Errorf("expected 0 min preview time (sentinel handled), got %d", snapshot.MinPreviewNs)
	}
}

func TestMetrics_RecordPreview(t *testing.T) {
	m := NewMetrics()

	m.RecordPreview(10 * time.Millisecond)
	m.RecordPreview(20 * time.Millisecond)
	m.RecordPreview(5 * time.Millisecond)

	snapshot := m.Snapshot()
	if snapshot.PreviewCount != 3 {
		t.Errorf("expected 3 previews, got %d", snapshot.PreviewCount)
	}
	if snapshot.MinPreviewNs != int64(5*time.Millisecond) {
		t.Errorf("expected min 5ms, got %d ns", snapshot.MinPreviewNs)
	}
	if snapshot.MaxPreviewNs != int64(20*time.Millisecond) {
		t.Errorf("expected max 20ms, got %d ns", snapshot.MaxPreviewNs)
	}
	if snapshot.LastPreviewNs != int64(5*time.Millisecond) {
		t.Errorf("expected last 5ms, got %d ns", snapshot.LastPreviewNs)
	}
	if snapshot.PreviewsPerSecond() <= 0 {
		t.Error("expected positive preview rate")
	}
}

func TestMetrics_RecordExport(t *testing.T) {
	m := NewMetrics()

	m.RecordExport(time.Millisecond, false)
	m.RecordExport(time.Millisecond, true)

	snapshot := m.Snapshot()
	if snapshot.ExportCount != 2 {
		t.Errorf("expected 2 exports, got %d", snapshot.ExportCount)
	}
	if snapshot.ExportFailures != 1 {
		t.Errorf("expected 1 failure, got %d", snapshot.ExportFailures)
	}
	if rate := snapshot.ExportFailureRate(); rate != 50 {
		t.Errorf("expected 50%% failure rate, got %f", rate)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()
	m.RecordPreview(time.Millisecond)
	m.RecordLastGoodUsed()
	m.RecordInstantiation()

	m.Reset()

	snapshot := m.Snapshot()
	if snapshot.PreviewCount != 0 || snapshot.LastGoodUsed != 0 || snapshot.Instantiations != 0 {
		t.Errorf("expected cleared metrics, got %+v", snapshot)
	}
}
