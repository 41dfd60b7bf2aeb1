package entity

import (
	"regexp"
	"strings"
)

// DefaultSimilarityThreshold is the minimum Ratio for a fuzzy match.
const DefaultSimilarityThreshold = 0.85

// namePrefixes are honorifics and articles stripped during
// normalization. Order matters only in that each is tried once.
var namePrefixes = []string{"the ", "mr. ", "ms. ", "mrs. ", "dr. ", "prof. "}

// initialPattern matches single-letter initials like "g. " in "g. maxwell".
var initialPattern = regexp.MustCompile(`\b[a-z]\.\s*`)

// Matcher compares entity names with normalization and fuzzy logic.
// The zero value is not usable; construct with NewMatcher.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher with the given similarity threshold.
// A non-positive threshold selects DefaultSimilarityThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Matcher{threshold: threshold}
}

// Normalize lowercases a name, strips honorifics and leading articles,
// removes single-letter initials, and collapses whitespace.
//
//	"G. Maxwell"             → "maxwell"
//	"The Clinton Foundation" → "clinton foundation"
//	"Dr. Jeffrey Epstein"    → "jeffrey epstein"
func Normalize(name string) string {
	normalized := strings.ToLower(name)

	for _, prefix := range namePrefixes {
		if strings.HasPrefix(normalized, prefix) {
			normalized = normalized[len(prefix):]
			break
		}
	}

	normalized = initialPattern.ReplaceAllString(normalized, "")

	return strings.Join(strings.Fields(normalized), " ")
}

// Match reports whether two names refer to the same entity. Strategies
// in order: exact match after normalization, substring containment,
// similarity ratio at or above the threshold. Symmetric in its arguments.
func (m *Matcher) Match(a, b string) bool {
	an, bn := Normalize(a), Normalize(b)

	if an == bn {
		return true
	}
	if strings.Contains(an, bn) || strings.Contains(bn, an) {
		return true
	}
	return Ratio(an, bn) >= m.threshold
}

// MatchAny reports whether any query name matches any document name.
func (m *Matcher) MatchAny(query, doc []string) bool {
	for _, q := range query {
		for _, d := range doc {
			if m.Match(q, d) {
				return true
			}
		}
	}
	return false
}

// MatchCount returns how many query names have at least one match in doc.
func (m *Matcher) MatchCount(query, doc []string) int {
	count := 0
	for _, q := range query {
		for _, d := range doc {
			if m.Match(q, d) {
				count++
				break
			}
		}
	}
	return count
}

// MatchScore returns the fraction of query names matched in doc, 0 when
// the query is empty.
func (m *Matcher) MatchScore(query, doc []string) float64 {
	if len(query) == 0 {
		return 0.0
	}
	return float64(m.MatchCount(query, doc)) / float64(len(query))
}

// BestMatch returns the document name most similar to the query name and
// its similarity, or ("", 0) when nothing clears the threshold.
// Substring containment scores a flat 0.95 so partial names beat distant
// fuzzy hits.
func (m *Matcher) BestMatch(query string, doc []string) (string, float64) {
	best := ""
	bestScore := 0.0

	qn := Normalize(query)
	for _, d := range doc {
		dn := Normalize(d)

		var similarity float64
		switch {
		case qn == dn:
			similarity = 1.0
		case strings.Contains(qn, dn) || strings.Contains(dn, qn):
			similarity = 0.95
		default:
			similarity = Ratio(qn, dn)
		}

		if similarity > bestScore {
			bestScore = similarity
			best = d
		}
	}

	if bestScore >= m.threshold {
		return best, bestScore
	}
	return "", 0.0
}
