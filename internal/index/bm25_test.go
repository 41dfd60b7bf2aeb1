package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestIndex(t *testing.T, docs []Document) *Index {
	t.Helper()
	idx, err := Build(context.Background(), docs, DefaultConfig())
	require.NoError(t, err)
	return idx
}

func corpusS1() []Document {
	return []Document{
		{ID: "d1", Filename: "d1.txt", Text: "Jeffrey Epstein met with Maxwell in Paris."},
		{ID: "d2", Filename: "d2.txt", Text: "Flight logs show trips to Paris and London."},
		{ID: "d3", Filename: "d3.txt", Text: "Maxwell sent emails about financial transactions."},
	}
}

func TestSearchLexicalRanking(t *testing.T) {
	idx := buildTestIndex(t, corpusS1())

	results, err := idx.Search("Maxwell Paris", 5)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// d1 contains both terms and must rank first.
	assert.Equal(t, "d1", results[0].DocID)
	assert.Positive(t, results[0].Score)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[0].Score, results[2].Score)

	rest := []string{results[1].DocID, results[2].DocID}
	assert.ElementsMatch(t, []string{"d2", "d3"}, rest)
}

func TestSearchEmptyQuery(t *testing.T) {
	idx := buildTestIndex(t, corpusS1())

	results, err := idx.Search("", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Punctuation-only tokenizes to nothing.
	results, err = idx.Search("!!! ??", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchNegativeTopK(t *testing.T) {
	idx := buildTestIndex(t, corpusS1())
	_, err := idx.Search("maxwell", -1)
	assert.Error(t, err)
}

func TestSearchNoMatchesExcluded(t *testing.T) {
	idx := buildTestIndex(t, corpusS1())

	results, err := idx.Search("zanzibar", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchTruncatesToTopK(t *testing.T) {
	idx := buildTestIndex(t, corpusS1())

	results, err := idx.Search("maxwell paris", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d1", results[0].DocID)
}

func TestSearchTieBreakByDocID(t *testing.T) {
	idx := buildTestIndex(t, []Document{
		{ID: "b", Text: "identical content here"},
		{ID: "a", Text: "identical content here"},
	})

	results, err := idx.Search("identical content", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].DocID)
	assert.Equal(t, "b", results[1].DocID)
}

// Adding a document containing only terms absent from the query must not
// change the relative order of previously returned results.
func TestMonotonicityUnderIrrelevantDocument(t *testing.T) {
	base := corpusS1()
	idx := buildTestIndex(t, base)

	before, err := idx.Search("Maxwell Paris", 5)
	require.NoError(t, err)

	extended := append(append([]Document{}, base...), Document{
		ID: "d4", Text: "completely unrelated gardening cooking recipes",
	})
	idx2 := buildTestIndex(t, extended)

	after, err := idx2.Search("Maxwell Paris", 5)
	require.NoError(t, err)

	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].DocID, after[i].DocID)
	}
}

func TestSearchDeterministic(t *testing.T) {
	docs := corpusS1()
	first := buildTestIndex(t, docs)

	want, err := first.Search("Maxwell Paris", 5)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		idx := buildTestIndex(t, docs)
		got, err := idx.Search("Maxwell Paris", 5)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPreviewPopulated(t *testing.T) {
	idx := buildTestIndex(t, corpusS1())

	results, err := idx.Search("maxwell", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	previews := map[string]string{}
	for _, r := range results {
		previews[r.DocID] = r.Preview
	}
	assert.Equal(t, "Jeffrey Epstein met with Maxwell in Paris.", previews["d1"])
}

func TestStatsAndAllIDs(t *testing.T) {
	idx := buildTestIndex(t, corpusS1())

	stats := idx.Stats()
	assert.Equal(t, 3, stats.DocumentCount)
	assert.Positive(t, stats.TermCount)
	assert.Positive(t, stats.AvgDocLength)

	assert.Equal(t, []string{"d1", "d2", "d3"}, idx.AllIDs())
}

func TestEmptyCorpus(t *testing.T) {
	idx := buildTestIndex(t, nil)

	results, err := idx.Search("anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, idx.Stats().DocumentCount)
}
