// Package search runs the query side of the engine: three-tier entity
// extraction over free-form queries, metadata boost scoring, and the
// strategy-driven orchestrator that combines both with BM25 retrieval.
package search

import (
	"github.com/doclens/doclens/internal/entity"
	"github.com/doclens/doclens/internal/store"
)

// Strategy selects how metadata combines with BM25 candidates. The set
// is closed; the orchestrator dispatches on the tag.
type Strategy string

const (
	// StrategyStrict filters candidates: every entity type present in
	// the query must match (names fuzzily, dates exactly).
	StrategyStrict Strategy = "strict"

	// StrategyLoose keeps a candidate when any entity of any type
	// matches.
	StrategyLoose Strategy = "loose"

	// StrategyBoost keeps all candidates and re-ranks by BM25 score
	// plus the weighted metadata boost.
	StrategyBoost Strategy = "boost"

	// StrategyAdaptive tries strict, falls back to loose, then to
	// boost, until enough candidates survive.
	StrategyAdaptive Strategy = "adaptive"

	// StrategyNone returns BM25 results untouched.
	StrategyNone Strategy = "none"
)

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyStrict, StrategyLoose, StrategyBoost, StrategyAdaptive, StrategyNone:
		return true
	}
	return false
}

// QueryEntities holds the typed entities inferred from a query. Slices
// stay sorted and deduplicated so downstream scoring is deterministic.
type QueryEntities struct {
	People        []string
	Organizations []string
	Locations     []string
	Dates         []string
}

// Empty reports whether no entities were found.
func (q QueryEntities) Empty() bool {
	return len(q.People) == 0 && len(q.Organizations) == 0 &&
		len(q.Locations) == 0 && len(q.Dates) == 0
}

// Merge unions other into q, returning the combined sets.
func (q QueryEntities) Merge(other QueryEntities) QueryEntities {
	return QueryEntities{
		People:        mergeSorted(q.People, other.People),
		Organizations: mergeSorted(q.Organizations, other.Organizations),
		Locations:     mergeSorted(q.Locations, other.Locations),
		Dates:         mergeSorted(q.Dates, other.Dates),
	}
}

// Criteria converts the entity sets into store filter criteria.
func (q QueryEntities) Criteria() store.Criteria {
	return store.Criteria{
		People:        q.People,
		Organizations: q.Organizations,
		Locations:     q.Locations,
		Dates:         q.Dates,
	}
}

func mergeSorted(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	set := entity.NewSet(a...)
	for _, v := range b {
		set.Add(v)
	}
	return set.Sorted()
}

// RankedResult is one scored hit returned to the caller.
type RankedResult struct {
	DocID         string
	Filename      string
	BM25Score     float64
	MetadataBoost float64
	FinalScore    float64

	// Matched holds the query entities that actually matched this
	// document, for display.
	Matched QueryEntities

	Preview string
}

// ResultSet is the outcome of one search.
type ResultSet struct {
	Results []RankedResult

	// Strategy is the strategy the caller requested.
	Strategy Strategy

	// Applied is the sub-strategy that produced the results. It differs
	// from Strategy under adaptive, and is none for any strategy when the
	// query yields no entities and no date range is given.
	Applied Strategy

	// Entities are the query entities used for filtering and boosting.
	Entities QueryEntities
}
