// Package extract turns raw documents into structured metadata: typed
// entities from the recognizer, dates and emails from regex, and word
// counts. Candidates flow through the entity validator before anything
// is kept.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/doclens/doclens/internal/entity"
	"github.com/doclens/doclens/internal/ner"
	"github.com/doclens/doclens/internal/textproc"
)

// DefaultNERBound caps the text slice fed to the recognizer. Documents
// beyond the bound still produce metadata for their prefix; this bounds
// latency on pathological inputs, nothing more.
const DefaultNERBound = 100_000

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),     // 2015-07-12
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), // 7/12/2015
		regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{4}\b`), // 7-12-2015
		regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}\b`),
	}
)

// Metadata is the extracted view of one document. Entity slices hold raw
// surface forms here; consolidation rewrites them to canonical names
// before they reach the store.
type Metadata struct {
	DocID         string
	WordCount     int
	People        []string
	Organizations []string
	Locations     []string
	Dates         []string
	Emails        []string
}

// Extractor runs the per-document extraction pipeline.
type Extractor struct {
	recognizer ner.Recognizer
	nerBound   int
}

// New creates an extractor over the given recognizer. nerBound limits
// the characters analyzed by NER; pass 0 for the default.
func New(recognizer ner.Recognizer, nerBound int) (*Extractor, error) {
	if recognizer == nil {
		return nil, fmt.Errorf("extract: nil recognizer")
	}
	if nerBound <= 0 {
		nerBound = DefaultNERBound
	}
	return &Extractor{recognizer: recognizer, nerBound: nerBound}, nil
}

// Extract produces metadata for one document. Dates and emails scan the
// full text; entity recognition sees at most nerBound characters.
func (e *Extractor) Extract(ctx context.Context, docID, text string) (*Metadata, error) {
	bounded := text
	if len(bounded) > e.nerBound {
		bounded = bounded[:e.nerBound]
	}

	spans, err := e.recognizer.Recognize(ctx, bounded)
	if err != nil {
		return nil, fmt.Errorf("recognize %s: %w", docID, err)
	}

	people := entity.NewSet()
	orgs := entity.NewSet()
	locations := entity.NewSet()

	for _, span := range spans {
		switch span.Label {
		case ner.LabelPerson:
			if entity.IsValid(span.Text, entity.TypePerson) {
				people.Add(span.Text)
			}
		case ner.LabelOrg:
			if entity.IsValid(span.Text, entity.TypeOrganization) {
				orgs.Add(span.Text)
			}
		case ner.LabelGPE, ner.LabelLoc:
			if entity.IsValid(span.Text, entity.TypeLocation) {
				locations.Add(span.Text)
			}
		}
	}

	meta := &Metadata{
		DocID:         docID,
		WordCount:     len(textproc.Tokenize(text, 1)),
		People:        people.Sorted(),
		Organizations: orgs.Sorted(),
		Locations:     locations.Sorted(),
		Dates:         Dates(text),
		Emails:        Emails(text),
	}

	slog.Debug("extracted metadata",
		slog.String("doc_id", docID),
		slog.Int("people", len(meta.People)),
		slog.Int("locations", len(meta.Locations)),
		slog.Int("dates", len(meta.Dates)))

	return meta, nil
}

// Dates returns the distinct date surface forms in text, sorted. The
// literal form is preserved; no normalization is promised.
func Dates(text string) []string {
	dates := entity.NewSet()
	for _, p := range datePatterns {
		for _, m := range p.FindAllString(text, -1) {
			dates.Add(m)
		}
	}
	return dates.Sorted()
}

// Emails returns the distinct email addresses in text, sorted.
func Emails(text string) []string {
	emails := entity.NewSet()
	for _, m := range emailPattern.FindAllString(text, -1) {
		emails.Add(m)
	}
	return emails.Sorted()
}
