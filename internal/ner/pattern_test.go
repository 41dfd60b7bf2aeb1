package ner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recognize(t *testing.T, text string) map[Label][]string {
	t.Helper()
	r := NewPatternRecognizer()
	spans, err := r.Recognize(context.Background(), text)
	require.NoError(t, err)

	got := make(map[Label][]string)
	for _, s := range spans {
		got[s.Label] = append(got[s.Label], s.Text)
	}
	return got
}

func TestRecognizePeople(t *testing.T) {
	got := recognize(t, "Jeffrey Epstein met with Ghislaine Maxwell in Paris.")

	assert.Contains(t, got[LabelPerson], "Jeffrey Epstein")
	assert.Contains(t, got[LabelPerson], "Ghislaine Maxwell")
	assert.Contains(t, got[LabelGPE], "Paris")
}

func TestRecognizeHonorific(t *testing.T) {
	got := recognize(t, "The deposition of Dr. Epstein was sealed.")
	assert.Contains(t, got[LabelPerson], "Epstein")
}

func TestRecognizeOrganizations(t *testing.T) {
	got := recognize(t, "Representatives from the Clinton Foundation were present.")
	assert.Contains(t, got[LabelOrg], "Clinton Foundation")

	got = recognize(t, "Agents of the FBI seized the records.")
	assert.Contains(t, got[LabelOrg], "FBI")
}

func TestRecognizeLocations(t *testing.T) {
	got := recognize(t, "Flight logs show trips to Paris and London.")
	assert.ElementsMatch(t, []string{"Paris", "London"}, got[LabelGPE])
}

func TestRecognizeSkipsSentenceLeads(t *testing.T) {
	got := recognize(t, "The meeting was short. It ended early.")
	assert.Empty(t, got[LabelPerson])
	assert.Empty(t, got[LabelOrg])
}

func TestRecognizeInitialsSurvivePeriodSplit(t *testing.T) {
	got := recognize(t, "A letter from G. Maxwell arrived.")
	assert.Contains(t, got[LabelPerson], "G. Maxwell")
}

func TestSpanOffsets(t *testing.T) {
	r := NewPatternRecognizer()
	text := "He saw Jeffrey Epstein yesterday."
	spans, err := r.Recognize(context.Background(), text)
	require.NoError(t, err)
	require.NotEmpty(t, spans)

	for _, s := range spans {
		assert.Equal(t, s.Text, text[s.Start:s.End])
	}
}
