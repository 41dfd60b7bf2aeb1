// Package ner defines the named-entity recognizer seam. The engine
// treats the recognizer as an external model: it only depends on the
// Recognizer interface, and the concrete implementation is chosen once
// at startup and passed in explicitly.
package ner

import "context"

// Label is the span type emitted by a recognizer. GPE and LOC both map
// to locations downstream.
type Label string

const (
	LabelPerson Label = "PERSON"
	LabelOrg    Label = "ORG"
	LabelGPE    Label = "GPE"
	LabelLoc    Label = "LOC"
	LabelDate   Label = "DATE"
)

// Span is one recognized entity occurrence.
type Span struct {
	Text  string
	Label Label
	Start int // byte offset into the analyzed text
	End   int
}

// Recognizer extracts typed entity spans from text. Implementations
// must be safe for concurrent use; extraction fans out across documents.
type Recognizer interface {
	// Recognize returns all entity spans found in text, in document order.
	Recognize(ctx context.Context, text string) ([]Span, error)

	// Available reports whether the recognizer can serve requests.
	// Checked once at startup; an unavailable recognizer is fatal.
	Available(ctx context.Context) bool

	// ModelName identifies the underlying model for logs and stats.
	ModelName() string

	// Close releases model resources.
	Close() error
}
