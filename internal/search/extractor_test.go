package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens/internal/entity"
	"github.com/doclens/doclens/internal/ner"
)

func newTestExtractor(t *testing.T) *EntityExtractor {
	t.Helper()

	canonicals := map[entity.Type][]string{
		entity.TypePerson: {
			"Jeffrey Epstein",
			"Ghislaine Maxwell",
			"Alan Dershowitz",
		},
		entity.TypeLocation:     {"Paris", "New York"},
		entity.TypeOrganization: {"Clinton Foundation"},
	}

	lookup := entity.LookupFromCanonicals(canonicals)
	return NewEntityExtractor(ner.NewPatternRecognizer(), lookup, canonicals, 0)
}

// newSubstringOnlyExtractor has the same people as newTestExtractor but an
// empty lookup index, so only the NER and substring tiers can resolve names.
func newSubstringOnlyExtractor(t *testing.T) *EntityExtractor {
	t.Helper()

	canonicals := map[entity.Type][]string{
		entity.TypePerson: {"Jeffrey Epstein", "Ghislaine Maxwell", "Alan Dershowitz"},
	}
	lookup := entity.LookupFromCanonicals(map[entity.Type][]string{})
	return NewEntityExtractor(ner.NewPatternRecognizer(), lookup, canonicals, 0)
}

func TestExtractSubstringTier(t *testing.T) {
	e := newSubstringOnlyExtractor(t)

	// "epstein" is lowercase so the NER tier misses it; "investigation"
	// is a stop word. The substring tier recovers the canonical.
	got, err := e.Extract(context.Background(), "epstein investigation")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jeffrey Epstein"}, got.People)
}

func TestExtractLookupTier(t *testing.T) {
	e := newTestExtractor(t)

	// "maxwell" resolves through the alias table in the lookup index.
	got, err := e.Extract(context.Background(), "maxwell case")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ghislaine Maxwell"}, got.People)
}

func TestExtractNERPlusSubstring(t *testing.T) {
	e := newSubstringOnlyExtractor(t)

	got, err := e.Extract(context.Background(), "Jeffrey Epstein and Dershowitz")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Jeffrey Epstein", "Alan Dershowitz"}, got.People)
}

func TestExtractLocations(t *testing.T) {
	e := newTestExtractor(t)

	got, err := e.Extract(context.Background(), "meetings in Paris")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris"}, got.Locations)
}

func TestExtractDatesFromQuery(t *testing.T) {
	e := newTestExtractor(t)

	got, err := e.Extract(context.Background(), "flights on 2015-07-12")
	require.NoError(t, err)
	assert.Equal(t, []string{"2015-07-12"}, got.Dates)
}

func TestExtractNoEntities(t *testing.T) {
	e := newTestExtractor(t)

	got, err := e.Extract(context.Background(), "financial transactions summary")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestExtractStopWordsIgnored(t *testing.T) {
	e := newTestExtractor(t)

	// Every token is a stop word or too short.
	got, err := e.Extract(context.Background(), "the case about documents")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestExtractDeterministic(t *testing.T) {
	e := newTestExtractor(t)

	first, err := e.Extract(context.Background(), "epstein maxwell paris")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := e.Extract(context.Background(), "epstein maxwell paris")
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestSubstringCapBoundsScan(t *testing.T) {
	canonicals := map[entity.Type][]string{
		entity.TypePerson: {"Jeffrey Epstein", "Alan Dershowitz"},
	}
	lookup := entity.LookupFromCanonicals(map[entity.Type][]string{})
	e := NewEntityExtractor(ner.NewPatternRecognizer(), lookup, canonicals, 1)

	// With the cap at 1 only the most frequent person is scanned.
	got, err := e.Extract(context.Background(), "dershowitz filing")
	require.NoError(t, err)
	assert.Empty(t, got.People)

	got, err = e.Extract(context.Background(), "epstein filing")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jeffrey Epstein"}, got.People)
}
