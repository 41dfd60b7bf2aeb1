package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens/internal/entity"
)

func seedFilterStore(t *testing.T) *Store {
	t.Helper()
	s := openTestStore(t)
	ctx := context.Background()

	docs := []*DocumentMetadata{
		{
			DocID:     "d1",
			People:    []string{"Ghislaine Maxwell", "Jeffrey Epstein"},
			Locations: []string{"Paris"},
			Dates:     []string{"2015-07-12"},
		},
		{
			DocID:     "d2",
			People:    []string{"Jeffrey Epstein"},
			Locations: []string{"London"},
			Dates:     []string{"2016-01-01"},
		},
		{
			DocID:         "d3",
			People:        []string{"Bill Clinton"},
			Organizations: []string{"Clinton Foundation"},
			Locations:     []string{"New York"},
		},
	}
	for _, d := range docs {
		require.NoError(t, s.Put(ctx, d))
	}
	return s
}

func TestFilterExactSingleType(t *testing.T) {
	s := seedFilterStore(t)

	ids, err := s.Filter(context.Background(), []string{"d1", "d2", "d3"}, Criteria{
		People: []string{"Jeffrey Epstein"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, ids)
}

func TestFilterANDAcrossTypes(t *testing.T) {
	s := seedFilterStore(t)

	ids, err := s.Filter(context.Background(), []string{"d1", "d2", "d3"}, Criteria{
		People:    []string{"Jeffrey Epstein"},
		Locations: []string{"Paris"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, ids)
}

func TestFilterORWithinType(t *testing.T) {
	s := seedFilterStore(t)

	ids, err := s.Filter(context.Background(), []string{"d1", "d2", "d3"}, Criteria{
		Locations: []string{"Paris", "New York"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d3"}, ids)
}

func TestFilterDateRange(t *testing.T) {
	s := seedFilterStore(t)

	ids, err := s.Filter(context.Background(), []string{"d1", "d2", "d3"}, Criteria{
		DateRange: &DateRange{Low: "2015-01-01", High: "2015-12-31"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, ids)
}

func TestFilterRespectsCandidates(t *testing.T) {
	s := seedFilterStore(t)

	// d1 matches but is not a candidate.
	ids, err := s.Filter(context.Background(), []string{"d2", "d3"}, Criteria{
		People: []string{"Jeffrey Epstein"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d2"}, ids)

	ids, err = s.Filter(context.Background(), nil, Criteria{People: []string{"Jeffrey Epstein"}})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFilterFuzzy(t *testing.T) {
	s := seedFilterStore(t)
	m := entity.NewMatcher(0)

	// "Maxwell" fuzzily matches "Ghislaine Maxwell" in d1 only.
	ids, err := s.FilterFuzzy(context.Background(), []string{"d1", "d2", "d3"}, Criteria{
		People: []string{"Maxwell"},
	}, m)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, ids)

	// AND across types.
	ids, err = s.FilterFuzzy(context.Background(), []string{"d1", "d2", "d3"}, Criteria{
		People:    []string{"Epstein"},
		Locations: []string{"London"},
	}, m)
	require.NoError(t, err)
	assert.Equal(t, []string{"d2"}, ids)
}

func TestFilterFuzzySkipsUnknownDocs(t *testing.T) {
	s := seedFilterStore(t)
	m := entity.NewMatcher(0)

	ids, err := s.FilterFuzzy(context.Background(), []string{"d1", "ghost"}, Criteria{
		People: []string{"Maxwell"},
	}, m)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, ids)
}

func TestFilterAny(t *testing.T) {
	s := seedFilterStore(t)
	m := entity.NewMatcher(0)

	// OR across types: person matches d1/d2, location matches d3.
	ids, err := s.FilterAny(context.Background(), []string{"d1", "d2", "d3"}, Criteria{
		People:    []string{"Epstein"},
		Locations: []string{"New York"},
	}, m)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2", "d3"}, ids)

	ids, err = s.FilterAny(context.Background(), []string{"d1", "d2", "d3"}, Criteria{
		People: []string{"Zanzibar Nobody"},
	}, m)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCriteriaEmpty(t *testing.T) {
	assert.True(t, Criteria{}.Empty())
	assert.False(t, Criteria{People: []string{"x"}}.Empty())
	assert.False(t, Criteria{DateRange: &DateRange{}}.Empty())
}
