package metrics

import (
	"sort"
	"sync"
	"time"
)

// windowSize bounds the samples kept per stage. Pipeline stages run in the
// microsecond-to-millisecond range and every analysis records all eight, so
// a few thousand samples cover a long session without unbounded growth.
const windowSize = 4096

// stageWindow keeps the most recent durations for one pipeline stage in a
// fixed ring and derives latency statistics on demand. Samples stay as
// time.Duration; conversion to milliseconds happens when stats are read, so
// sub-millisecond stages keep their resolution.
type stageWindow struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	full    bool
}

func newStageWindow() *stageWindow {
	return &stageWindow{samples: make([]time.Duration, windowSize)}
}

// Record stores one duration, overwriting the oldest sample once the window
// is full.
func (w *stageWindow) Record(d time.Duration) {
	w.mu.Lock()
	w.samples[w.next] = d
	w.next++
	if w.next == len(w.samples) {
		w.next = 0
		w.full = true
	}
	w.mu.Unlock()
}

// Count returns the number of samples currently in the window.
func (w *stageWindow) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.full {
		return len(w.samples)
	}
	return w.next
}

// Reset discards all samples.
func (w *stageWindow) Reset() {
	w.mu.Lock()
	w.next = 0
	w.full = false
	w.mu.Unlock()
}

// Stats computes mean, percentiles and extremes over the window, in
// milliseconds. An empty window yields all zeros.
func (w *stageWindow) Stats() LatencyStats {
	w.mu.Lock()
	n := w.next
	if w.full {
		n = len(w.samples)
	}
	sorted := make([]time.Duration, n)
	copy(sorted, w.samples[:n])
	w.mu.Unlock()

	if n == 0 {
		return LatencyStats{}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	return LatencyStats{
		Mean:  ms(sum) / float64(n),
		P50:   percentileMS(sorted, 50),
		P95:   percentileMS(sorted, 95),
		P99:   percentileMS(sorted, 99),
		Min:   ms(sorted[0]),
		Max:   ms(sorted[n-1]),
		Count: n,
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// percentileMS interpolates linearly between the two sorted samples
// straddling percentile p.
func percentileMS(sorted []time.Duration, p float64) float64 {
	idx := p / 100 * float64(len(sorted)-1)
	lo := int(idx)
	if lo+1 >= len(sorted) {
		return ms(sorted[len(sorted)-1])
	}
	frac := idx - float64(lo)
	return ms(sorted[lo])*(1-frac) + ms(sorted[lo+1])*frac
}
