package search

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// QueryRecord captures one search for performance tracking.
type QueryRecord struct {
	Query          string
	BM25Candidates int
	AfterFiltering int
	FinalResults   int
	Strategy       Strategy
	Applied        Strategy
	Duration       time.Duration
}

// Metrics accumulates per-query records. Safe for concurrent use.
type Metrics struct {
	mu      sync.Mutex
	records []QueryRecord
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record appends one query record.
func (m *Metrics) Record(r QueryRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
}

// Summary aggregates the recorded queries.
type Summary struct {
	TotalQueries      int
	AvgBM25Candidates float64
	AvgAfterFiltering float64
	AvgFilterRatio    float64
	AvgDuration       time.Duration
	StrategiesUsed    map[Strategy]int
}

// Aggregate computes summary statistics; zero value when nothing was
// recorded.
func (m *Metrics) Aggregate() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.records) == 0 {
		return Summary{StrategiesUsed: map[Strategy]int{}}
	}

	s := Summary{
		TotalQueries:   len(m.records),
		StrategiesUsed: make(map[Strategy]int),
	}

	var candidates, filtered, ratio float64
	var total time.Duration
	for _, r := range m.records {
		candidates += float64(r.BM25Candidates)
		filtered += float64(r.AfterFiltering)
		if r.BM25Candidates > 0 {
			ratio += float64(r.AfterFiltering) / float64(r.BM25Candidates)
		}
		total += r.Duration
		s.StrategiesUsed[r.Applied]++
	}

	n := float64(len(m.records))
	s.AvgBM25Candidates = candidates / n
	s.AvgAfterFiltering = filtered / n
	s.AvgFilterRatio = ratio / n
	s.AvgDuration = total / time.Duration(len(m.records))
	return s
}

// Report renders a human-readable summary.
func (m *Metrics) Report() string {
	s := m.Aggregate()
	if s.TotalQueries == 0 {
		return "No search metrics recorded"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search Performance Report\n")
	fmt.Fprintf(&b, "========================\n")
	fmt.Fprintf(&b, "Total Queries: %d\n\n", s.TotalQueries)
	fmt.Fprintf(&b, "Filtering Performance:\n")
	fmt.Fprintf(&b, "- Avg BM25 Candidates: %.0f\n", s.AvgBM25Candidates)
	fmt.Fprintf(&b, "- Avg After Filtering: %.0f\n", s.AvgAfterFiltering)
	fmt.Fprintf(&b, "- Avg Filter Ratio: %.1f%%\n", s.AvgFilterRatio*100)
	fmt.Fprintf(&b, "- Avg Query Time: %s\n\n", s.AvgDuration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Strategies Used:\n")
	for _, strategy := range []Strategy{StrategyStrict, StrategyLoose, StrategyBoost, StrategyAdaptive, StrategyNone} {
		if count, ok := s.StrategiesUsed[strategy]; ok {
			fmt.Fprintf(&b, "- %s: %d\n", strategy, count)
		}
	}
	return b.String()
}
