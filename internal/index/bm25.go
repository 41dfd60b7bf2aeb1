// Package index implements the in-memory sparse lexical index with
// Okapi BM25 scoring. The index is built once from the corpus and is
// immutable afterwards, so it is safe for concurrent readers without
// locking.
package index

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	derrors "github.com/doclens/doclens/internal/errors"
	"github.com/doclens/doclens/internal/textproc"
)

// Okapi parameters. Overridable through Config.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Config holds the BM25 build parameters.
type Config struct {
	K1             float64
	B              float64
	MinTokenLength int
}

// DefaultConfig returns the standard parameters.
func DefaultConfig() Config {
	return Config{K1: DefaultK1, B: DefaultB, MinTokenLength: textproc.DefaultMinTokenLength}
}

// Document is one corpus document handed to the index builder.
type Document struct {
	ID       string
	Filename string
	Text     string
	Encoding string
}

// Result is a single BM25 hit.
type Result struct {
	DocID    string
	Filename string
	Score    float64
	Preview  string
}

// Stats describes the built index.
type Stats struct {
	DocumentCount int
	TermCount     int
	AvgDocLength  float64
}

// Index is the immutable BM25 index.
type Index struct {
	cfg Config

	docs     []Document
	byID     map[string]int
	tf       []map[string]int // term frequency per document
	dl       []int            // token count per document
	avgdl    float64
	idf      map[string]float64
	termsCnt int
}

// Build tokenizes every document and computes the BM25 statistics.
// Tokenization fans out across CPUs; the result is independent of
// scheduling.
func Build(ctx context.Context, docs []Document, cfg Config) (*Index, error) {
	if cfg.K1 <= 0 {
		cfg.K1 = DefaultK1
	}
	if cfg.B <= 0 {
		cfg.B = DefaultB
	}

	idx := &Index{
		cfg:  cfg,
		docs: docs,
		byID: make(map[string]int, len(docs)),
		tf:   make([]map[string]int, len(docs)),
		dl:   make([]int, len(docs)),
		idf:  make(map[string]float64),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	tokenized := make([][]string, len(docs))
	for i := range docs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tokenized[i] = textproc.Tokenize(docs[i].Text, cfg.MinTokenLength)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	df := make(map[string]int)
	totalLen := 0
	for i, tokens := range tokenized {
		idx.byID[docs[i].ID] = i
		idx.dl[i] = len(tokens)
		totalLen += len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		idx.tf[i] = tf
		for term := range tf {
			df[term]++
		}
	}

	if len(docs) > 0 {
		idx.avgdl = float64(totalLen) / float64(len(docs))
	}

	// Constant-add IDF keeps every term non-negative.
	n := float64(len(docs))
	for term, freq := range df {
		idx.idf[term] = math.Log((n-float64(freq)+0.5)/(float64(freq)+0.5) + 1)
	}
	idx.termsCnt = len(df)

	return idx, nil
}

// Search scores every document against the query and returns up to topK
// results with strictly positive scores, ordered by descending score and
// ascending doc id on ties. An empty query returns an empty list.
func (idx *Index) Search(query string, topK int) ([]Result, error) {
	if topK < 0 {
		return nil, derrors.New(derrors.ErrCodeInvalidTopK, "top_k must not be negative", nil)
	}

	tokens := textproc.Tokenize(query, idx.cfg.MinTokenLength)
	if len(tokens) == 0 || topK == 0 {
		return []Result{}, nil
	}

	type scored struct {
		pos   int
		score float64
	}
	var hits []scored

	for pos := range idx.docs {
		score := idx.score(pos, tokens)
		if score > 0 {
			hits = append(hits, scored{pos: pos, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return idx.docs[hits[i].pos].ID < idx.docs[hits[j].pos].ID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		doc := idx.docs[h.pos]
		results[i] = Result{
			DocID:    doc.ID,
			Filename: doc.Filename,
			Score:    h.score,
			Preview:  textproc.Preview(doc.Text),
		}
	}
	return results, nil
}

// score computes Okapi BM25 for one document. Query tokens contribute
// once per occurrence in the query, multiset-style.
func (idx *Index) score(pos int, tokens []string) float64 {
	tf := idx.tf[pos]
	dl := float64(idx.dl[pos])

	var score float64
	for _, term := range tokens {
		freq := float64(tf[term])
		if freq == 0 {
			continue
		}
		idf := idx.idf[term]
		norm := freq * (idx.cfg.K1 + 1) / (freq + idx.cfg.K1*(1-idx.cfg.B+idx.cfg.B*dl/idx.avgdl))
		score += idf * norm
	}
	return score
}

// Document returns the stored document for an id.
func (idx *Index) Document(id string) (Document, bool) {
	pos, ok := idx.byID[id]
	if !ok {
		return Document{}, false
	}
	return idx.docs[pos], true
}

// AllIDs returns every indexed document id in ascending order, for
// consistency checks against the metadata store.
func (idx *Index) AllIDs() []string {
	ids := make([]string, 0, len(idx.docs))
	for _, d := range idx.docs {
		ids = append(ids, d.ID)
	}
	sort.Strings(ids)
	return ids
}

// Stats returns index statistics.
func (idx *Index) Stats() Stats {
	return Stats{
		DocumentCount: len(idx.docs),
		TermCount:     idx.termsCnt,
		AvgDocLength:  idx.avgdl,
	}
}
