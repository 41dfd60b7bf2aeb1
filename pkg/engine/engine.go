// Package engine is the public facade over the retrieval pipeline. It
// wires loading, extraction, consolidation, persistence, and search,
// and is what the CLI and REPL consume.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/doclens/doclens/internal/config"
	"github.com/doclens/doclens/internal/entity"
	derrors "github.com/doclens/doclens/internal/errors"
	"github.com/doclens/doclens/internal/extract"
	"github.com/doclens/doclens/internal/index"
	"github.com/doclens/doclens/internal/loader"
	"github.com/doclens/doclens/internal/ner"
	"github.com/doclens/doclens/internal/search"
	"github.com/doclens/doclens/internal/store"
)

// Engine bundles the read-only indexes and the orchestrator.
type Engine struct {
	cfg        *config.Config
	recognizer ner.Recognizer
	idx        *index.Index
	store      *store.Store
	searcher   *search.Engine
	metrics    *search.Metrics
	warnings   []loader.Warning
}

// BuildIndex scans cfg.Paths.DataDir for .txt documents, builds the
// BM25 index, extracts and consolidates metadata, and persists it to
// cfg.Paths.StorePath. The recognizer must be available or the build
// fails at startup.
func BuildIndex(ctx context.Context, cfg *config.Config, recognizer ner.Recognizer) (*Engine, error) {
	if !recognizer.Available(ctx) {
		return nil, derrors.New(derrors.ErrCodeNERUnavailable,
			fmt.Sprintf("entity recognizer %q cannot be loaded", recognizer.ModelName()), nil)
	}

	docs, warnings, err := loader.LoadDir(cfg.Paths.DataDir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, derrors.New(derrors.ErrCodeFileUnreadable,
			fmt.Sprintf("no readable documents in %s", cfg.Paths.DataDir), nil)
	}

	idx, err := buildBM25(ctx, docs, cfg)
	if err != nil {
		return nil, err
	}

	extractor, err := extract.New(recognizer, cfg.Extract.NERBound)
	if err != nil {
		return nil, err
	}

	inputs := make([]extract.Input, len(docs))
	for i, d := range docs {
		inputs[i] = extract.Input{DocID: d.ID, Text: d.Text}
	}
	metas, faults, err := extractor.ExtractBatch(ctx, inputs, cfg.Extract.Workers)
	if err != nil {
		return nil, err
	}
	for _, f := range faults {
		warnings = append(warnings, loader.Warning{Path: f.DocID, Err: f.Err})
	}

	groups := consolidateCorpus(metas)
	canonical := canonicalMap(groups)

	st, err := store.Open(cfg.Paths.StorePath)
	if err != nil {
		return nil, err
	}

	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			_ = st.Close()
			return nil, err
		}
		doc := &store.DocumentMetadata{
			DocID:         meta.DocID,
			WordCount:     meta.WordCount,
			People:        rewrite(meta.People, entity.TypePerson, canonical),
			Organizations: rewrite(meta.Organizations, entity.TypeOrganization, canonical),
			Locations:     rewrite(meta.Locations, entity.TypeLocation, canonical),
			Dates:         meta.Dates,
			Emails:        meta.Emails,
		}
		if err := st.Put(ctx, doc); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	e := &Engine{
		cfg:        cfg,
		recognizer: recognizer,
		idx:        idx,
		store:      st,
		warnings:   warnings,
	}
	if err := e.wireSearch(ctx, entity.BuildLookup(groups)); err != nil {
		_ = st.Close()
		return nil, err
	}

	slog.Info("index built",
		slog.Int("documents", len(docs)),
		slog.Int("skipped", len(warnings)),
		slog.String("store", cfg.Paths.StorePath))
	return e, nil
}

// Open loads an existing metadata store and rebuilds the BM25 index
// from the documents on disk. Returns ErrCodeIndexMissing when the
// store has never been built.
func Open(ctx context.Context, cfg *config.Config, recognizer ner.Recognizer) (*Engine, error) {
	if !recognizer.Available(ctx) {
		return nil, derrors.New(derrors.ErrCodeNERUnavailable,
			fmt.Sprintf("entity recognizer %q cannot be loaded", recognizer.ModelName()), nil)
	}

	if cfg.Paths.StorePath != "" {
		if _, err := os.Stat(cfg.Paths.StorePath); err != nil {
			return nil, derrors.New(derrors.ErrCodeIndexMissing,
				fmt.Sprintf("metadata index not found at %s (run 'doclens index' first)", cfg.Paths.StorePath), err)
		}
	}

	docs, warnings, err := loader.LoadDir(cfg.Paths.DataDir)
	if err != nil {
		return nil, err
	}

	idx, err := buildBM25(ctx, docs, cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Paths.StorePath)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		recognizer: recognizer,
		idx:        idx,
		store:      st,
		warnings:   warnings,
	}

	all, err := st.AllEntities(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if err := e.wireSearch(ctx, entity.LookupFromCanonicals(all)); err != nil {
		_ = st.Close()
		return nil, err
	}

	e.checkConsistency(ctx)
	return e, nil
}

func buildBM25(ctx context.Context, docs []loader.Document, cfg *config.Config) (*index.Index, error) {
	indexDocs := make([]index.Document, len(docs))
	for i, d := range docs {
		indexDocs[i] = index.Document{
			ID:       d.ID,
			Filename: d.Filename,
			Text:     d.Text,
			Encoding: d.Encoding,
		}
	}
	return index.Build(ctx, indexDocs, index.Config{
		K1:             cfg.BM25.K1,
		B:              cfg.BM25.B,
		MinTokenLength: cfg.BM25.MinTokenLength,
	})
}

// wireSearch assembles the query-side components over the built state.
func (e *Engine) wireSearch(ctx context.Context, lookup *entity.Lookup) error {
	ranked := make(map[entity.Type][]string)
	for _, typ := range []entity.Type{entity.TypePerson, entity.TypeOrganization, entity.TypeLocation} {
		top, err := e.store.TopEntities(ctx, typ, e.cfg.Search.SubstringCap)
		if err != nil {
			return err
		}
		names := make([]string, len(top))
		for i, ec := range top {
			names[i] = ec.Name
		}
		ranked[typ] = names
	}

	matcher := entity.NewMatcher(e.cfg.Matcher.SimilarityThreshold)
	extractor := search.NewEntityExtractor(e.recognizer, lookup, ranked, e.cfg.Search.SubstringCap)

	e.metrics = search.NewMetrics()
	searcher, err := search.NewEngine(e.idx, e.store, extractor, matcher, search.Config{
		Candidates:    e.cfg.Search.Candidates,
		MinCandidates: e.cfg.Search.MinCandidates,
		MaxCandidates: e.cfg.Search.MaxCandidates,
		Weights: search.Weights{
			Person:   e.cfg.Search.PersonWeight,
			Location: e.cfg.Search.LocationWeight,
			Org:      e.cfg.Search.OrgWeight,
			Date:     e.cfg.Search.DateWeight,
		},
	}, search.WithMetrics(e.metrics))
	if err != nil {
		return err
	}

	e.searcher = searcher
	return nil
}

// checkConsistency compares the BM25 and store document sets. Offenders
// are logged once and treated as no-metadata at query time.
func (e *Engine) checkConsistency(ctx context.Context) {
	storeIDs, err := e.store.AllIDs(ctx)
	if err != nil {
		slog.Warn("consistency check skipped", slog.String("error", err.Error()))
		return
	}

	inStore := make(map[string]struct{}, len(storeIDs))
	for _, id := range storeIDs {
		inStore[id] = struct{}{}
	}

	indexIDs := e.idx.AllIDs()
	inIndex := make(map[string]struct{}, len(indexIDs))
	for _, id := range indexIDs {
		inIndex[id] = struct{}{}
		if _, ok := inStore[id]; !ok {
			slog.Warn("document indexed without metadata", slog.String("doc_id", id))
		}
	}
	for _, id := range storeIDs {
		if _, ok := inIndex[id]; !ok {
			slog.Warn("stored metadata without indexed document", slog.String("doc_id", id))
		}
	}
}

// consolidateCorpus gathers every raw surface form with its document
// set and runs consolidation per type.
func consolidateCorpus(metas []*extract.Metadata) []entity.Group {
	type key struct {
		typ  entity.Type
		name string
	}
	docsBySurface := make(map[key][]string)

	collect := func(typ entity.Type, names []string, docID string) {
		for _, n := range names {
			k := key{typ: typ, name: n}
			docsBySurface[k] = append(docsBySurface[k], docID)
		}
	}
	for _, m := range metas {
		collect(entity.TypePerson, m.People, m.DocID)
		collect(entity.TypeOrganization, m.Organizations, m.DocID)
		collect(entity.TypeLocation, m.Locations, m.DocID)
	}

	surfaces := make([]entity.Surface, 0, len(docsBySurface))
	for k, docIDs := range docsBySurface {
		surfaces = append(surfaces, entity.Surface{Name: k.name, Type: k.typ, DocIDs: docIDs})
	}
	return entity.Consolidate(surfaces)
}

// canonicalMap indexes variant → canonical per type.
func canonicalMap(groups []entity.Group) map[entity.Type]map[string]string {
	m := make(map[entity.Type]map[string]string)
	for _, g := range groups {
		byName, ok := m[g.Type]
		if !ok {
			byName = make(map[string]string)
			m[g.Type] = byName
		}
		for _, v := range g.Variants {
			byName[v] = g.Canonical
		}
	}
	return m
}

// rewrite replaces raw surface forms with their canonical names,
// deduplicating and sorting.
func rewrite(names []string, typ entity.Type, canonical map[entity.Type]map[string]string) []string {
	if len(names) == 0 {
		return nil
	}
	out := entity.NewSet()
	for _, n := range names {
		if c, ok := canonical[typ][n]; ok {
			out.Add(c)
		} else {
			out.Add(n)
		}
	}
	return out.Sorted()
}

// Search runs one query through the orchestrator.
func (e *Engine) Search(ctx context.Context, query string, opts search.Options) (*search.ResultSet, error) {
	return e.searcher.Search(ctx, query, opts)
}

// GetMetadata returns stored metadata for a document, nil when unknown.
func (e *Engine) GetMetadata(ctx context.Context, docID string) (*store.DocumentMetadata, error) {
	return e.store.Get(ctx, docID)
}

// AllEntities lists the distinct canonical names per type.
func (e *Engine) AllEntities(ctx context.Context) (map[entity.Type][]string, error) {
	return e.store.AllEntities(ctx)
}

// Frequencies returns per-document counts for one type.
func (e *Engine) Frequencies(ctx context.Context, typ entity.Type) (map[string]int, error) {
	return e.store.Frequencies(ctx, typ)
}

// TopEntities returns the most frequent canonical names of a type.
func (e *Engine) TopEntities(ctx context.Context, typ entity.Type, limit int) ([]store.EntityCount, error) {
	return e.store.TopEntities(ctx, typ, limit)
}

// Cooccurrences finds same-type entities sharing documents with name.
func (e *Engine) Cooccurrences(ctx context.Context, name string, typ entity.Type, limit int) ([]store.Cooccurrence, error) {
	return e.store.Cooccurrences(ctx, name, typ, limit)
}

// Store exposes the metadata store for exports.
func (e *Engine) Store() *store.Store { return e.store }

// IndexStats returns BM25 index statistics.
func (e *Engine) IndexStats() index.Stats { return e.idx.Stats() }

// Metrics returns the query metrics collector.
func (e *Engine) Metrics() *search.Metrics { return e.metrics }

// Warnings lists files skipped during loading and extraction.
func (e *Engine) Warnings() []loader.Warning { return e.warnings }

// Close releases the store and the recognizer.
func (e *Engine) Close() error {
	err := e.store.Close()
	if rerr := e.recognizer.Close(); err == nil {
		err = rerr
	}
	return err
}
