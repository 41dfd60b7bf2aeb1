package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doclens/doclens/internal/entity"
	derrors "github.com/doclens/doclens/internal/errors"
	"github.com/doclens/doclens/internal/index"
	"github.com/doclens/doclens/internal/store"
)

// Candidate and result bounds.
const (
	DefaultTopK          = 10
	DefaultCandidates    = 500
	DefaultMinCandidates = 50
	DefaultMaxCandidates = 100
)

// Config tunes the orchestrator.
type Config struct {
	// Candidates is how many BM25 hits feed the metadata tiers.
	Candidates int

	// MinCandidates is adaptive's lower bound before falling through.
	MinCandidates int

	// MaxCandidates caps adaptive result sets.
	MaxCandidates int

	// Weights for the metadata boost.
	Weights Weights
}

// DefaultEngineConfig returns the standard bounds.
func DefaultEngineConfig() Config {
	return Config{
		Candidates:    DefaultCandidates,
		MinCandidates: DefaultMinCandidates,
		MaxCandidates: DefaultMaxCandidates,
		Weights:       DefaultWeights(),
	}
}

// Options configures one search call.
type Options struct {
	// TopK is the number of final results (default 10).
	TopK int

	// Strategy selects the metadata policy (default adaptive).
	Strategy Strategy

	// MinCandidates / MaxCandidates override the engine defaults for
	// adaptive when positive.
	MinCandidates int
	MaxCandidates int

	// Filters are explicit entity filters merged with the extracted
	// query entities.
	Filters *QueryEntities

	// DateRange restricts candidates to documents with a date in the
	// inclusive lexicographic range.
	DateRange *store.DateRange
}

// Engine is the enhanced search orchestrator. All referenced indexes
// are read-only at query time, so one Engine serves concurrent queries.
type Engine struct {
	bm25      *index.Index
	meta      *store.Store
	extractor *EntityExtractor
	scorer    *Scorer
	matcher   *entity.Matcher
	cfg       Config
	metrics   *Metrics

	// missingLogged dedupes consistency warnings per doc id.
	missingMu     sync.Mutex
	missingLogged map[string]struct{}
}

// ErrNilDependency is returned when a required dependency is nil.
var ErrNilDependency = fmt.Errorf("nil dependency")

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithMetrics attaches a query metrics collector.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine wires the orchestrator. All dependencies are required.
func NewEngine(
	bm25 *index.Index,
	meta *store.Store,
	extractor *EntityExtractor,
	matcher *entity.Matcher,
	cfg Config,
	opts ...EngineOption,
) (*Engine, error) {
	if bm25 == nil {
		return nil, fmt.Errorf("%w: bm25 index is required", ErrNilDependency)
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: metadata store is required", ErrNilDependency)
	}
	if extractor == nil {
		return nil, fmt.Errorf("%w: entity extractor is required", ErrNilDependency)
	}
	if matcher == nil {
		return nil, fmt.Errorf("%w: matcher is required", ErrNilDependency)
	}

	if cfg.Candidates <= 0 {
		cfg.Candidates = DefaultCandidates
	}
	if cfg.MinCandidates <= 0 {
		cfg.MinCandidates = DefaultMinCandidates
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}

	e := &Engine{
		bm25:          bm25,
		meta:          meta,
		extractor:     extractor,
		scorer:        NewScorer(matcher, cfg.Weights),
		matcher:       matcher,
		cfg:           cfg,
		missingLogged: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Search executes the full pipeline: BM25 retrieval in parallel with
// query entity extraction, then the selected strategy, then truncation
// to top-k. Data issues never raise; they degrade to zero boosts and
// empty filters.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (*ResultSet, error) {
	start := time.Now()

	if opts.TopK < 0 {
		return nil, derrors.New(derrors.ErrCodeInvalidTopK, "top_k must not be negative", nil)
	}
	if opts.TopK == 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyAdaptive
	}
	if !opts.Strategy.Valid() {
		return nil, derrors.New(derrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown strategy %q", opts.Strategy), nil)
	}

	minCandidates := opts.MinCandidates
	if minCandidates <= 0 {
		minCandidates = e.cfg.MinCandidates
	}
	maxCandidates := opts.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = e.cfg.MaxCandidates
	}

	// Lexical retrieval and entity recognition run concurrently; both
	// read immutable state.
	var (
		candidates []index.Result
		entities   QueryEntities
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = e.bm25.Search(query, e.cfg.Candidates)
		return err
	})
	g.Go(func() error {
		var err error
		entities, err = e.extractor.Extract(gctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ResultSet{Strategy: opts.Strategy, Applied: opts.Strategy}

	if len(candidates) == 0 {
		e.record(query, 0, 0, 0, opts.Strategy, opts.Strategy, start)
		return result, nil
	}

	if opts.Filters != nil {
		entities = entities.Merge(*opts.Filters)
	}
	result.Entities = entities

	// Cancellation checkpoint between tiers.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	noFilters := entities.Empty() && opts.DateRange == nil
	if noFilters || opts.Strategy == StrategyNone {
		result.Applied = StrategyNone
		result.Results = e.materialize(ctx, candidates, entities, opts.TopK, false)
		e.record(query, len(candidates), len(candidates), len(result.Results), opts.Strategy, StrategyNone, start)
		return result, nil
	}

	criteria := entities.Criteria()
	criteria.DateRange = opts.DateRange

	var (
		filtered []index.Result
		applied  Strategy
		err      error
	)

	switch opts.Strategy {
	case StrategyStrict:
		filtered, err = e.filterCandidates(ctx, candidates, criteria, false)
		applied = StrategyStrict
	case StrategyLoose:
		filtered, err = e.filterCandidates(ctx, candidates, criteria, true)
		applied = StrategyLoose
	case StrategyBoost:
		// No low-candidate fallback here: boost always re-ranks the
		// full candidate list.
		return e.finishBoost(ctx, query, candidates, entities, opts, start)
	case StrategyAdaptive:
		filtered, applied, err = e.adaptive(ctx, candidates, criteria, minCandidates, maxCandidates)
		if err == nil && applied == StrategyBoost {
			rs, berr := e.finishBoost(ctx, query, candidates, entities, opts, start)
			if berr != nil {
				return nil, berr
			}
			rs.Strategy = StrategyAdaptive
			rs.Applied = StrategyBoost
			return rs, nil
		}
	}
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Applied = applied
	result.Results = e.materialize(ctx, filtered, entities, opts.TopK, false)
	e.record(query, len(candidates), len(filtered), len(result.Results), opts.Strategy, applied, start)

	slog.Debug("search complete",
		slog.String("query", query),
		slog.String("strategy", string(opts.Strategy)),
		slog.String("applied", string(applied)),
		slog.Int("candidates", len(candidates)),
		slog.Int("results", len(result.Results)))

	return result, nil
}

// filterCandidates narrows BM25 candidates through the store, keeping
// BM25 order. anyMode selects OR-across-types (loose) semantics.
func (e *Engine) filterCandidates(ctx context.Context, candidates []index.Result, criteria store.Criteria, anyMode bool) ([]index.Result, error) {
	ids := make([]string, len(candidates))
	byID := make(map[string]index.Result, len(candidates))
	for i, c := range candidates {
		ids[i] = c.DocID
		byID[c.DocID] = c
	}

	var (
		kept []string
		err  error
	)

	// Date ranges go through the indexed exact filter; fuzzy matching
	// applies to names only.
	if criteria.DateRange != nil {
		ids, err = e.meta.Filter(ctx, ids, store.Criteria{DateRange: criteria.DateRange})
		if err != nil {
			return nil, err
		}
		criteria.DateRange = nil
	}
	switch {
	case criteria.Empty():
		// Only a date range was given; the pre-pass already applied it.
		kept = ids
	case anyMode:
		kept, err = e.meta.FilterAny(ctx, ids, criteria, e.matcher)
	default:
		kept, err = e.meta.FilterFuzzy(ctx, ids, criteria, e.matcher)
	}
	if err != nil {
		return nil, err
	}

	filtered := make([]index.Result, 0, len(kept))
	for _, id := range kept {
		filtered = append(filtered, byID[id])
	}
	return filtered, nil
}

// adaptive tries strict, then loose, then signals boost. The returned
// list is capped at maxCandidates.
func (e *Engine) adaptive(ctx context.Context, candidates []index.Result, criteria store.Criteria, minCandidates, maxCandidates int) ([]index.Result, Strategy, error) {
	strict, err := e.filterCandidates(ctx, candidates, criteria, false)
	if err != nil {
		return nil, "", err
	}
	if len(strict) >= minCandidates {
		return capCandidates(strict, maxCandidates), StrategyStrict, nil
	}

	loose, err := e.filterCandidates(ctx, candidates, criteria, true)
	if err != nil {
		return nil, "", err
	}
	if len(loose) >= minCandidates {
		return capCandidates(loose, maxCandidates), StrategyLoose, nil
	}

	// Not enough matches either way: boost over the original
	// candidates. This fallback exists only inside adaptive.
	return nil, StrategyBoost, nil
}

func capCandidates(candidates []index.Result, max int) []index.Result {
	if max > 0 && len(candidates) > max {
		return candidates[:max]
	}
	return candidates
}

// finishBoost scores every candidate and re-sorts by final score,
// stable on the original BM25 rank.
func (e *Engine) finishBoost(ctx context.Context, query string, candidates []index.Result, entities QueryEntities, opts Options, start time.Time) (*ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := e.materialize(ctx, candidates, entities, len(candidates), true)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}

	rs := &ResultSet{
		Results:  results,
		Strategy: opts.Strategy,
		Applied:  StrategyBoost,
		Entities: entities,
	}
	e.record(query, len(candidates), len(candidates), len(results), opts.Strategy, StrategyBoost, start)
	return rs, nil
}

// materialize converts candidates into ranked results, computing boosts
// when requested and attaching matched entities. Missing metadata is a
// consistency fault: logged once per doc id, scored as zero.
func (e *Engine) materialize(ctx context.Context, candidates []index.Result, entities QueryEntities, limit int, withBoost bool) []RankedResult {
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]RankedResult, 0, len(candidates))
	for _, c := range candidates {
		meta, err := e.meta.Get(ctx, c.DocID)
		if err != nil || meta == nil {
			e.logMissing(c.DocID, err)
		}

		r := RankedResult{
			DocID:      c.DocID,
			Filename:   c.Filename,
			BM25Score:  c.Score,
			FinalScore: c.Score,
			Preview:    c.Preview,
		}
		if meta != nil {
			r.Matched = e.scorer.Matched(entities, meta)
			if withBoost {
				r.MetadataBoost = e.scorer.Boost(entities, meta)
				r.FinalScore = r.BM25Score + r.MetadataBoost
			}
		}
		results = append(results, r)
	}
	return results
}

func (e *Engine) logMissing(docID string, err error) {
	e.missingMu.Lock()
	defer e.missingMu.Unlock()

	if _, seen := e.missingLogged[docID]; seen {
		return
	}
	e.missingLogged[docID] = struct{}{}

	attrs := []any{slog.String("doc_id", docID)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	slog.Warn("document indexed without metadata", attrs...)
}

func (e *Engine) record(query string, bm25Count, filteredCount, finalCount int, strategy, applied Strategy, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.Record(QueryRecord{
		Query:          query,
		BM25Candidates: bm25Count,
		AfterFiltering: filteredCount,
		FinalResults:   finalCount,
		Strategy:       strategy,
		Applied:        applied,
		Duration:       time.Since(start),
	})
}
