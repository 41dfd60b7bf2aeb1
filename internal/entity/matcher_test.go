package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"G. Maxwell", "maxwell"},
		{"Ghislaine Maxwell", "ghislaine maxwell"},
		{"The Clinton Foundation", "clinton foundation"},
		{"Dr. Jeffrey Epstein", "jeffrey epstein"},
		{"Mrs.  Maxwell", "maxwell"},
		{"  spaced   out  ", "spaced out"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "input %q", tt.input)
	}
}

func TestMatch(t *testing.T) {
	m := NewMatcher(0)

	tests := []struct {
		a, b string
		want bool
	}{
		{"Maxwell", "Ghislaine Maxwell", true}, // substring
		{"Maxwell", "G. Maxwell", true},        // initial stripped, exact
		{"Epstein", "Jeffrey Epstein", true},
		{"Clinton", "Clinton Foundation", true},
		{"Maxwell", "Einstein", false},
		{"Paris", "paris", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Match(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestMatchSymmetry(t *testing.T) {
	m := NewMatcher(0)
	pairs := [][2]string{
		{"Maxwell", "Ghislaine Maxwell"},
		{"Epstein", "Einstein"},
		{"Paris", "London"},
		{"The Clinton Foundation", "Clinton"},
	}

	for _, p := range pairs {
		assert.Equal(t, m.Match(p[0], p[1]), m.Match(p[1], p[0]), "%q vs %q", p[0], p[1])
	}

	for _, s := range []string{"Maxwell", "Jeffrey Epstein", "Paris"} {
		assert.True(t, m.Match(s, s))
	}
}

func TestMatchScore(t *testing.T) {
	m := NewMatcher(0)

	query := []string{"Maxwell", "Paris"}
	doc1 := []string{"Ghislaine Maxwell", "Paris", "London", "Jeffrey Epstein"}
	doc2 := []string{"Bill Clinton", "New York"}

	assert.InDelta(t, 1.0, m.MatchScore(query, doc1), 1e-9)
	assert.InDelta(t, 0.0, m.MatchScore(query, doc2), 1e-9)
	assert.InDelta(t, 0.0, m.MatchScore(nil, doc1), 1e-9)

	half := m.MatchScore([]string{"Maxwell", "Tokyo"}, doc1)
	assert.InDelta(t, 0.5, half, 1e-9)
}

func TestMatchAny(t *testing.T) {
	m := NewMatcher(0)

	assert.True(t, m.MatchAny([]string{"Maxwell"}, []string{"Ghislaine Maxwell"}))
	assert.False(t, m.MatchAny([]string{"Tokyo"}, []string{"Paris", "London"}))
	assert.False(t, m.MatchAny(nil, []string{"Paris"}))
}

func TestBestMatch(t *testing.T) {
	m := NewMatcher(0)

	doc := []string{"Ghislaine Maxwell", "Jeffrey Epstein", "Paris"}

	best, score := m.BestMatch("Maxwell", doc)
	assert.Equal(t, "Ghislaine Maxwell", best)
	assert.GreaterOrEqual(t, score, 0.95)

	best, score = m.BestMatch("Zanzibar", doc)
	assert.Empty(t, best)
	assert.Zero(t, score)
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("abc", "abc"), 1e-9)
	assert.InDelta(t, 1.0, Ratio("", ""), 1e-9)
	assert.InDelta(t, 0.0, Ratio("abc", "xyz"), 1e-9)

	// 2*M/T with M=6 matched ("e" + "stein") of T=15 total.
	got := Ratio("epstein", "einstein")
	require.InDelta(t, 2.0*6.0/15.0, got, 1e-9)

	// Symmetric up to block selection for these inputs.
	assert.InDelta(t, Ratio("maxwell", "ghislaine maxwell"), Ratio("ghislaine maxwell", "maxwell"), 1e-9)
}
