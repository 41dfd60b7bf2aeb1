package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens/internal/entity"
	"github.com/doclens/doclens/internal/store"
)

func seedExportStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	metas := []*store.DocumentMetadata{
		{DocID: "d1", People: []string{"Jeffrey Epstein", "Ghislaine Maxwell"}, Locations: []string{"Paris"}},
		{DocID: "d2", People: []string{"Jeffrey Epstein"}, Locations: []string{"Paris", "London"}},
		{DocID: "d3", People: []string{"Jeffrey Epstein", "Alan Dershowitz"}},
	}
	for _, m := range metas {
		require.NoError(t, s.Put(ctx, m))
	}
	return s
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestFrequencies(t *testing.T) {
	s := seedExportStore(t)

	var buf bytes.Buffer
	require.NoError(t, Frequencies(context.Background(), &buf, s, nil, 1))

	records := parseCSV(t, buf.Bytes())
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"Entity Type", "Entity", "Document Count"}, records[0])

	// People come first, count descending.
	assert.Equal(t, []string{"people", "Jeffrey Epstein", "3"}, records[1])

	// All people precede all locations.
	var order []string
	for _, r := range records[1:] {
		order = append(order, r[0])
	}
	joined := strings.Join(order, ",")
	assert.Less(t, strings.Index(joined, "people"), strings.Index(joined, "locations"))
}

func TestFrequenciesMinFrequency(t *testing.T) {
	s := seedExportStore(t)

	var buf bytes.Buffer
	require.NoError(t, Frequencies(context.Background(), &buf, s, []entity.Type{entity.TypePerson}, 2))

	records := parseCSV(t, buf.Bytes())
	// Header + only Jeffrey Epstein (count 3).
	require.Len(t, records, 2)
	assert.Equal(t, "Jeffrey Epstein", records[1][1])
}

func TestDocuments(t *testing.T) {
	s := seedExportStore(t)

	var buf bytes.Buffer
	require.NoError(t, Documents(context.Background(), &buf, s, entity.TypePerson))

	records := parseCSV(t, buf.Bytes())
	assert.Equal(t, []string{"Entity", "Document Count", "Document IDs"}, records[0])
	assert.Equal(t, []string{"Jeffrey Epstein", "3", "d1;d2;d3"}, records[1])
}

func TestCooccurrenceMatrix(t *testing.T) {
	s := seedExportStore(t)

	var buf bytes.Buffer
	require.NoError(t, CooccurrenceMatrix(context.Background(), &buf, s, entity.TypePerson, 10))

	records := parseCSV(t, buf.Bytes())
	require.Len(t, records, 4) // header + 3 people

	header := records[0]
	assert.Equal(t, "", header[0])
	assert.Equal(t, "Jeffrey Epstein", header[1]) // most frequent first

	// Diagonal is zero.
	for i := 1; i < len(records); i++ {
		assert.Equal(t, "0", records[i][i])
	}

	// Epstein co-occurs with Maxwell in d1 and with Dershowitz in d3.
	colFor := map[string]int{}
	for j := 1; j < len(header); j++ {
		colFor[header[j]] = j
	}
	epsteinRow := records[1]
	assert.Equal(t, "1", epsteinRow[colFor["Ghislaine Maxwell"]])
	assert.Equal(t, "1", epsteinRow[colFor["Alan Dershowitz"]])
}
