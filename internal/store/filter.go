package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/doclens/doclens/internal/entity"
	derrors "github.com/doclens/doclens/internal/errors"
)

// DateRange is an inclusive lexicographic range over stored date
// strings. Chronological semantics require ISO-8601 inputs; the store
// compares raw surface forms.
type DateRange struct {
	Low  string
	High string
}

// Criteria filters candidates: AND across entity types, OR within a
// type's value list. Empty fields are ignored.
type Criteria struct {
	People        []string
	Organizations []string
	Locations     []string
	Dates         []string
	DateRange     *DateRange
}

// Empty reports whether no criterion is set.
func (c Criteria) Empty() bool {
	return len(c.People) == 0 && len(c.Organizations) == 0 &&
		len(c.Locations) == 0 && len(c.Dates) == 0 && c.DateRange == nil
}

// Filter returns the subset of candidateIDs satisfying all criteria,
// matching stored canonical names exactly. Every criterion narrows the
// set through an indexed lookup. Result order follows candidateIDs.
func (s *Store) Filter(ctx context.Context, candidateIDs []string, criteria Criteria) ([]string, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	surviving := make(map[string]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		surviving[id] = struct{}{}
	}

	narrow := func(table, column string, values []string) error {
		if len(values) == 0 || len(surviving) == 0 {
			return nil
		}
		matched, err := s.docsMatching(ctx, table, column, values, surviving)
		if err != nil {
			return err
		}
		for id := range surviving {
			if _, ok := matched[id]; !ok {
				delete(surviving, id)
			}
		}
		return nil
	}

	if err := narrow("people", "name", criteria.People); err != nil {
		return nil, err
	}
	if err := narrow("organizations", "name", criteria.Organizations); err != nil {
		return nil, err
	}
	if err := narrow("locations", "name", criteria.Locations); err != nil {
		return nil, err
	}
	if err := narrow("dates", "date_str", criteria.Dates); err != nil {
		return nil, err
	}

	if criteria.DateRange != nil && len(surviving) > 0 {
		matched, err := s.docsInDateRange(ctx, *criteria.DateRange, surviving)
		if err != nil {
			return nil, err
		}
		for id := range surviving {
			if _, ok := matched[id]; !ok {
				delete(surviving, id)
			}
		}
	}

	var result []string
	for _, id := range candidateIDs {
		if _, ok := surviving[id]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}

// docsMatching returns candidate docs holding any of the values in the
// given table, via the name index.
func (s *Store) docsMatching(ctx context.Context, table, column string, values []string, candidates map[string]struct{}) (map[string]struct{}, error) {
	ids := sortedKeys(candidates)

	query := fmt.Sprintf(
		`SELECT DISTINCT doc_id FROM %s WHERE %s IN (%s) AND doc_id IN (%s)`,
		table, column, placeholders(len(values)), placeholders(len(ids)))

	args := make([]any, 0, len(values)+len(ids))
	for _, v := range values {
		args = append(args, v)
	}
	for _, id := range ids {
		args = append(args, id)
	}

	return s.queryIDSet(ctx, query, args)
}

func (s *Store) docsInDateRange(ctx context.Context, r DateRange, candidates map[string]struct{}) (map[string]struct{}, error) {
	ids := sortedKeys(candidates)

	query := fmt.Sprintf(
		`SELECT DISTINCT doc_id FROM dates WHERE date_str BETWEEN ? AND ? AND doc_id IN (%s)`,
		placeholders(len(ids)))

	args := make([]any, 0, len(ids)+2)
	args = append(args, r.Low, r.High)
	for _, id := range ids {
		args = append(args, id)
	}

	return s.queryIDSet(ctx, query, args)
}

func (s *Store) queryIDSet(ctx context.Context, query string, args []any) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
	}
	defer rows.Close()

	matched := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
		}
		matched[id] = struct{}{}
	}
	return matched, rows.Err()
}

// FilterFuzzy applies the same AND-across-types, OR-within-type
// semantics with fuzzy name matching. This is the per-document scan
// path; the metadata cache keeps repeated scans cheap. Result order
// follows candidateIDs. Dates still compare exactly — fuzzy matching
// names makes sense, fuzzy matching date strings does not.
func (s *Store) FilterFuzzy(ctx context.Context, candidateIDs []string, criteria Criteria, matcher *entity.Matcher) ([]string, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	var result []string
	for _, id := range candidateIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		meta, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if meta == nil {
			continue // missing metadata: strict semantics reject
		}

		if len(criteria.People) > 0 && !matcher.MatchAny(criteria.People, meta.People) {
			continue
		}
		if len(criteria.Organizations) > 0 && !matcher.MatchAny(criteria.Organizations, meta.Organizations) {
			continue
		}
		if len(criteria.Locations) > 0 && !matcher.MatchAny(criteria.Locations, meta.Locations) {
			continue
		}
		if len(criteria.Dates) > 0 && !containsAny(criteria.Dates, meta.Dates) {
			continue
		}
		result = append(result, id)
	}
	return result, nil
}

// FilterAny keeps a candidate when any criterion of any type matches
// fuzzily: the OR counterpart of FilterFuzzy, backing the loose search
// strategy.
func (s *Store) FilterAny(ctx context.Context, candidateIDs []string, criteria Criteria, matcher *entity.Matcher) ([]string, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	var result []string
	for _, id := range candidateIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		meta, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if meta == nil {
			continue
		}

		switch {
		case len(criteria.People) > 0 && matcher.MatchAny(criteria.People, meta.People):
		case len(criteria.Organizations) > 0 && matcher.MatchAny(criteria.Organizations, meta.Organizations):
		case len(criteria.Locations) > 0 && matcher.MatchAny(criteria.Locations, meta.Locations):
		case len(criteria.Dates) > 0 && containsAny(criteria.Dates, meta.Dates):
		default:
			continue
		}
		result = append(result, id)
	}
	return result, nil
}

func containsAny(query, doc []string) bool {
	for _, q := range query {
		for _, d := range doc {
			if q == d {
				return true
			}
		}
	}
	return false
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
