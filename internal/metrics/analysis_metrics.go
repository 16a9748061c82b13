// Package metrics collects timing and outcome counters for the analysis
// pipeline.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// AnalysisMetrics tracks performance metrics for the deck analysis pipeline.
type AnalysisMetrics struct {
	stageLatency map[string]*stageWindow
	totalLatency *stageWindow

	// Counters (atomic operations for thread safety)
	AnalysesCompleted atomic.Uint64
	AnalysesDegraded  atomic.Uint64
	EmergencyResults  atomic.Uint64
	StageFailures     atomic.Uint64
	CacheHits         atomic.Uint64
	CacheMisses       atomic.Uint64

	// Start time for uptime calculation
	startTime time.Time
	mu        sync.RWMutex
}

// Pipeline stage names.
const (
	StageValidation     = "validation"
	StageClassification = "classification"
	StageProbability    = "probability"
	StageEvolution      = "evolution"
	StageSynergy        = "synergy"
	StageScoring        = "scoring"
	StageArchetype      = "archetype"
	StageAdvisor        = "advisor"
)

var stageNames = []string{
	StageValidation, StageClassification, StageProbability, StageEvolution,
	StageSynergy, StageScoring, StageArchetype, StageAdvisor,
}

// NewAnalysisMetrics creates a new metrics collector.
func NewAnalysisMetrics() *AnalysisMetrics {
	stages := make(map[string]*stageWindow, len(stageNames))
	for _, name := range stageNames {
		stages[name] = newStageWindow()
	}
	return &AnalysisMetrics{
		stageLatency: stages,
		totalLatency: newStageWindow(),
		startTime:    time.Now(),
	}
}

// RecordStageDuration records the time a pipeline stage took. Unknown stage
// names are tracked too, so ad hoc stages show up rather than vanish.
func (m *AnalysisMetrics) RecordStageDuration(stage string, d time.Duration) {
	m.mu.RLock()
	w, ok := m.stageLatency[stage]
	m.mu.RUnlock()
	if !ok {
		m.mu.Lock()
		w, ok = m.stageLatency[stage]
		if !ok {
			w = newStageWindow()
			m.stageLatency[stage] = w
		}
		m.mu.Unlock()
	}
	w.Record(d)
}

// RecordTotalDuration records the end-to-end analysis time.
func (m *AnalysisMetrics) RecordTotalDuration(d time.Duration) {
	m.totalLatency.Record(d)
}

// AnalysisStats contains the computed statistics from metrics.
type AnalysisStats struct {
	// Latency statistics (milliseconds)
	StageLatency map[string]LatencyStats `json:"stage_latency"`
	TotalLatency LatencyStats            `json:"total_latency"`

	// Counters
	AnalysesCompleted uint64  `json:"analyses_completed"`
	AnalysesDegraded  uint64  `json:"analyses_degraded"`
	EmergencyResults  uint64  `json:"emergency_results"`
	StageFailures     uint64  `json:"stage_failures"`
	CacheHits         uint64  `json:"cache_hits"`
	CacheMisses       uint64  `json:"cache_misses"`
	CacheHitRate      float64 `json:"cache_hit_rate"` // percentage
	DegradedRate      float64 `json:"degraded_rate"`  // percentage

	// System info
	Uptime string `json:"uptime"` // human-readable uptime
}

// LatencyStats contains statistics for one latency window.
type LatencyStats struct {
	Mean  float64 `json:"mean"`  // milliseconds
	P50   float64 `json:"p50"`   // median
	P95   float64 `json:"p95"`   // 95th percentile
	P99   float64 `json:"p99"`   // 99th percentile
	Min   float64 `json:"min"`   // minimum
	Max   float64 `json:"max"`   // maximum
	Count int     `json:"count"` // number of samples
}

// GetStats returns a snapshot of the current statistics.
func (m *AnalysisMetrics) GetStats() *AnalysisStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	completed := m.AnalysesCompleted.Load()
	degraded := m.AnalysesDegraded.Load()
	cacheHits := m.CacheHits.Load()
	cacheMisses := m.CacheMisses.Load()

	cacheHitRate := 0.0
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = (float64(cacheHits) / float64(cacheHits+cacheMisses)) * 100
	}
	degradedRate := 0.0
	if completed > 0 {
		degradedRate = (float64(degraded) / float64(completed)) * 100
	}

	stages := make(map[string]LatencyStats, len(m.stageLatency))
	for name, w := range m.stageLatency {
		stages[name] = w.Stats()
	}

	return &AnalysisStats{
		StageLatency:      stages,
		TotalLatency:      m.totalLatency.Stats(),
		AnalysesCompleted: completed,
		AnalysesDegraded:  degraded,
		EmergencyResults:  m.EmergencyResults.Load(),
		StageFailures:     m.StageFailures.Load(),
		CacheHits:         cacheHits,
		CacheMisses:       cacheMisses,
		CacheHitRate:      cacheHitRate,
		DegradedRate:      degradedRate,
		Uptime:            time.Since(m.startTime).Round(time.Second).String(),
	}
}

// Reset clears all metrics.
func (m *AnalysisMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.stageLatency {
		w.Reset()
	}
	m.totalLatency.Reset()

	m.AnalysesCompleted.Store(0)
	m.AnalysesDegraded.Store(0)
	m.EmergencyResults.Store(0)
	m.StageFailures.Store(0)
	m.CacheHits.Store(0)
	m.CacheMisses.Store(0)

	m.startTime = time.Now()
}
