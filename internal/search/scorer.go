package search

import (
	"github.com/doclens/doclens/internal/entity"
	"github.com/doclens/doclens/internal/store"
)

// Weights holds the per-type boost weights.
type Weights struct {
	Person   float64
	Location float64
	Org      float64
	Date     float64
}

// DefaultWeights returns the standard boost weights: people dominate,
// places and organizations follow, dates trail.
func DefaultWeights() Weights {
	return Weights{Person: 2.0, Location: 1.5, Org: 1.5, Date: 1.0}
}

// Scorer computes the metadata-match boost for one document against the
// query entities. Stateless beyond its configuration; safe for
// concurrent use.
type Scorer struct {
	matcher *entity.Matcher
	weights Weights
}

// NewScorer builds a scorer over the shared fuzzy matcher.
func NewScorer(matcher *entity.Matcher, weights Weights) *Scorer {
	return &Scorer{matcher: matcher, weights: weights}
}

// Boost returns the unnormalized weighted boost: each matched query
// entity contributes its type weight once.
func (s *Scorer) Boost(q QueryEntities, meta *store.DocumentMetadata) float64 {
	if meta == nil {
		return 0
	}
	return s.weights.Person*float64(s.matcher.MatchCount(q.People, meta.People)) +
		s.weights.Location*float64(s.matcher.MatchCount(q.Locations, meta.Locations)) +
		s.weights.Org*float64(s.matcher.MatchCount(q.Organizations, meta.Organizations)) +
		s.weights.Date*float64(s.matcher.MatchCount(q.Dates, meta.Dates))
}

// NormalizedBoost returns a bounded 0-1 signal: per-type match fractions
// weighted and divided by the summed weights of the types present in the
// query.
func (s *Scorer) NormalizedBoost(q QueryEntities, meta *store.DocumentMetadata) float64 {
	if meta == nil {
		return 0
	}

	var score, total float64
	if len(q.People) > 0 {
		score += s.weights.Person * s.matcher.MatchScore(q.People, meta.People)
		total += s.weights.Person
	}
	if len(q.Locations) > 0 {
		score += s.weights.Location * s.matcher.MatchScore(q.Locations, meta.Locations)
		total += s.weights.Location
	}
	if len(q.Organizations) > 0 {
		score += s.weights.Org * s.matcher.MatchScore(q.Organizations, meta.Organizations)
		total += s.weights.Org
	}
	if len(q.Dates) > 0 {
		score += s.weights.Date * s.matcher.MatchScore(q.Dates, meta.Dates)
		total += s.weights.Date
	}

	if total == 0 {
		return 0
	}
	return score / total
}

// Matched returns the subset of query entities that match the document,
// for per-result display.
func (s *Scorer) Matched(q QueryEntities, meta *store.DocumentMetadata) QueryEntities {
	if meta == nil {
		return QueryEntities{}
	}
	return QueryEntities{
		People:        s.matchedNames(q.People, meta.People),
		Organizations: s.matchedNames(q.Organizations, meta.Organizations),
		Locations:     s.matchedNames(q.Locations, meta.Locations),
		Dates:         s.matchedNames(q.Dates, meta.Dates),
	}
}

func (s *Scorer) matchedNames(query, doc []string) []string {
	var matched []string
	for _, q := range query {
		for _, d := range doc {
			if s.matcher.Match(q, d) {
				matched = append(matched, q)
				break
			}
		}
	}
	return matched
}
