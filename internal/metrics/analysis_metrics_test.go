package metrics

import (
	"testing"
	"time"
)

func TestAnalysisMetrics_StageRecording(t *testing.T) {
	m := NewAnalysisMetrics()
	m.RecordStageDuration(StageClassification, 5*time.Millisecond)
	m.RecordStageDuration(StageClassification, 15*time.Millisecond)
	m.RecordStageDuration(StageSynergy, 2*time.Millisecond)
	m.RecordTotalDuration(30 * time.Millisecond)

	stats := m.GetStats()
	if got := stats.StageLatency[StageClassification].Count; got != 2 {
		t.Errorf("classification sample count = %d, want 2", got)
	}
	if got := stats.StageLatency[StageClassification].Mean; got < 9 || got > 11 {
		t.Errorf("classification mean = %.1fms, want ~10ms", got)
	}
	if got := stats.TotalLatency.Count; got != 1 {
		t.Errorf("total sample count = %d, want 1", got)
	}
}

func TestAnalysisMetrics_UnknownStage(t *testing.T) {
	m := NewAnalysisMetrics()
	m.RecordStageDuration("custom-stage", time.Millisecond)

	stats := m.GetStats()
	if _, ok := stats.StageLatency["custom-stage"]; !ok {
		t.Error("ad hoc stage should be tracked")
	}
}

func TestAnalysisMetrics_Rates(t *testing.T) {
	m := NewAnalysisMetrics()
	m.AnalysesCompleted.Add(4)
	m.AnalysesDegraded.Add(1)
	m.CacheHits.Add(3)
	m.CacheMisses.Add(1)

	stats := m.GetStats()
	if stats.DegradedRate != 25 {
		t.Errorf("degraded rate = %.1f, want 25", stats.DegradedRate)
	}
	if stats.CacheHitRate != 75 {
		t.Errorf("cache hit rate = %.1f, want 75", stats.CacheHitRate)
	}
}

func TestAnalysisMetrics_Reset(t *testing.T) {
	m := NewAnalysisMetrics()
	m.RecordStageDuration(StageScoring, time.Millisecond)
	m.AnalysesCompleted.Add(2)
	m.Reset()

	stats := m.GetStats()
	if stats.StageLatency[StageScoring].Count != 0 {
		t.Error("reset did not clear stage samples")
	}
	if stats.AnalysesCompleted != 0 {
		t.Error("reset did not clear counters")
	}
}

func TestStageWindow_Stats(t *testing.T) {
	w := newStageWindow()
	for i := 1; i <= 100; i++ {
		w.Record(time.Duration(i) * time.Millisecond)
	}

	s := w.Stats()
	if s.Count != 100 {
		t.Fatalf("count = %d, want 100", s.Count)
	}
	if s.P50 < 49 || s.P50 > 52 {
		t.Errorf("p50 = %.1f, want ~50", s.P50)
	}
	if s.P99 < 98 || s.P99 > 100 {
		t.Errorf("p99 = %.1f, want ~99", s.P99)
	}
	if s.Min != 1 || s.Max != 100 {
		t.Errorf("min/max = %.0f/%.0f, want 1/100", s.Min, s.Max)
	}
	if s.Mean < 50 || s.Mean > 51 {
		t.Errorf("mean = %.2f, want 50.5", s.Mean)
	}
}

func TestStageWindow_SubMillisecondResolution(t *testing.T) {
	w := newStageWindow()
	w.Record(250 * time.Microsecond)
	w.Record(750 * time.Microsecond)

	s := w.Stats()
	if s.Mean != 0.5 {
		t.Errorf("mean = %v ms, want 0.5", s.Mean)
	}
	if s.Min != 0.25 || s.Max != 0.75 {
		t.Errorf("min/max = %v/%v ms, want 0.25/0.75", s.Min, s.Max)
	}
}

func TestStageWindow_OverwritesOldestWhenFull(t *testing.T) {
	w := newStageWindow()
	for i := 0; i < windowSize+10; i++ {
		w.Record(time.Millisecond)
	}
	if got := w.Count(); got != windowSize {
		t.Errorf("count = %d, want %d after wrapping", got, windowSize)
	}
}

func TestStageWindow_Empty(t *testing.T) {
	w := newStageWindow()
	if s := w.Stats(); s != (LatencyStats{}) {
		t.Errorf("empty window stats = %+v, want zeros", s)
	}
}
