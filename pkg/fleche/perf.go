package fleche

import (
	"fmt"
	"math"
	"sort"

	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
)

// PerfInfo is the telemetry for one sentence. Fields are reported by the
// checker and never recomputed here.
type PerfInfo struct {
	// Time is the original execution time, even when the result was cached.
	Time float64 `json:"time"`
	// Memory is the heap words allocated while executing. The checker reports
	// it from float GC counters, so it may arrive as 1.2e6.
	Memory float64 `json:"memory"`
	// CacheHit is set when the execution was served from the cache.
	CacheHit bool `json:"cache_hit"`
	// TimeHash is the caching overhead, paid on hits and misses alike.
	TimeHash float64 `json:"time_hash"`
}

// Validate rejects negative or non-finite measurements.
func (p PerfInfo) Validate() error {
	for _, m := range []struct {
		field string
		value float64
	}{{"time", p.Time}, {"memory", p.Memory}, {"time_hash", p.TimeHash}} {
		switch {
		case math.IsNaN(m.value) || math.IsInf(m.value, 0):
			return utils.NewValidationError(utils.KindInvalidTelemetry, m.field, fmt.Sprintf("non-finite value %g", m.value))
		case m.value < 0:
			return utils.NewValidationError(utils.KindInvalidTelemetry, m.field, fmt.Sprintf("negative value %g", m.value))
		}
	}
	return nil
}

// SentencePerfParams pairs a sentence location with its telemetry.
type SentencePerfParams[R any] struct {
	Range R        `json:"range"`
	Info  PerfInfo `json:"info"`
}

// DocumentPerfParams is the perf report for a document version. Timings are
// kept in the order received, which is document order.
type DocumentPerfParams[R any] struct {
	TextDocument protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	Summary      string                                   `json:"summary"`
	Timings      []SentencePerfParams[R]                  `json:"timings"`
}

// Validate checks every timing.
func (d DocumentPerfParams[R]) Validate() error {
	for i, t := range d.Timings {
		if err := t.Info.Validate(); err != nil {
			return fmt.Errorf("timings[%d]: %w", i, err)
		}
	}
	return nil
}

// Slowest returns up to n timings by descending time, ties in document
// order. The receiver is not modified.
func (d DocumentPerfParams[R]) Slowest(n int) []SentencePerfParams[R] {
	sorted := append([]SentencePerfParams[R](nil), d.Timings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Info.Time > sorted[j].Info.Time
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// PerfTotals aggregates a document's telemetry.
type PerfTotals struct {
	Sentences int     `json:"sentences"`
	Time      float64 `json:"time"`
	TimeHash  float64 `json:"time_hash"`
	Memory    float64 `json:"memory"`
	CacheHits int     `json:"cache_hits"`
}

// HitRate is the share of sentences served from the cache.
func (t PerfTotals) HitRate() float64 {
	if t.Sentences == 0 {
		return 0
	}
	return float64(t.CacheHits) / float64(t.Sentences)
}

// Totals sums the timings.
func (d DocumentPerfParams[R]) Totals() PerfTotals {
	t := PerfTotals{Sentences: len(d.Timings)}
	for _, s := range d.Timings {
		t.Time += s.Info.Time
		t.TimeHash += s.Info.TimeHash
		t.Memory += s.Info.Memory
		if s.Info.CacheHit {
			t.CacheHits++
		}
	}
	return t
}
