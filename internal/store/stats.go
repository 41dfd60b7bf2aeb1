package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/doclens/doclens/internal/entity"
	derrors "github.com/doclens/doclens/internal/errors"
)

// EntityCount pairs a canonical name with a document count.
type EntityCount struct {
	Name  string
	Count int
}

// tableFor resolves the table and value column for a type.
func tableFor(typ entity.Type) (table, column string, err error) {
	for _, et := range entityTables {
		if et.typ == typ {
			return et.table, et.column, nil
		}
	}
	return "", "", derrors.New(derrors.ErrCodeInvalidInput,
		fmt.Sprintf("unknown entity type %q", typ), nil)
}

// AllEntities returns the distinct canonical names per type, sorted.
func (s *Store) AllEntities(ctx context.Context) (map[entity.Type][]string, error) {
	result := make(map[entity.Type][]string, len(entityTables))

	for _, et := range entityTables {
		query := fmt.Sprintf(`SELECT DISTINCT %s FROM %s ORDER BY %s`,
			et.column, et.table, et.column)
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
		}

		var names []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				_ = rows.Close()
				return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
			}
			names = append(names, name)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
		}
		_ = rows.Close()

		result[et.typ] = names
	}
	return result, nil
}

// Frequencies returns, for one type, how many distinct documents contain
// each canonical name.
func (s *Store) Frequencies(ctx context.Context, typ entity.Type) (map[string]int, error) {
	table, column, err := tableFor(typ)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s, COUNT(DISTINCT doc_id) FROM %s GROUP BY %s`,
		column, table, column)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
	}
	defer rows.Close()

	freqs := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
		}
		freqs[name] = count
	}
	return freqs, rows.Err()
}

// TopEntities returns the most frequent canonical names of a type,
// ordered by count descending then name ascending.
func (s *Store) TopEntities(ctx context.Context, typ entity.Type, limit int) ([]EntityCount, error) {
	freqs, err := s.Frequencies(ctx, typ)
	if err != nil {
		return nil, err
	}

	counts := make([]EntityCount, 0, len(freqs))
	for name, count := range freqs {
		counts = append(counts, EntityCount{Name: name, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})

	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// SearchEntities returns stored canonical names containing the query
// substring, case-insensitive, grouped by type.
func (s *Store) SearchEntities(ctx context.Context, query string) (map[entity.Type][]string, error) {
	all, err := s.AllEntities(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(query)
	result := make(map[entity.Type][]string)
	for typ, names := range all {
		var matches []string
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), lower) {
				matches = append(matches, name)
			}
		}
		if len(matches) > 0 {
			result[typ] = matches
		}
	}
	return result, nil
}

// EntityDocuments returns, for one type, the distinct document ids per
// canonical name, each list sorted. Feeds the CSV exports.
func (s *Store) EntityDocuments(ctx context.Context, typ entity.Type) (map[string][]string, error) {
	table, column, err := tableFor(typ)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT DISTINCT %s, doc_id FROM %s ORDER BY %s, doc_id`,
		column, table, column)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var name, docID string
		if err := rows.Scan(&name, &docID); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
		}
		result[name] = append(result[name], docID)
	}
	return result, rows.Err()
}

// Cooccurrence pairs an entity with how many documents it shares with
// the probe entity.
type Cooccurrence struct {
	Name  string
	Count int
}

// Cooccurrences finds entities of the same type appearing in documents
// that contain the given canonical name, ordered by shared-document
// count descending.
func (s *Store) Cooccurrences(ctx context.Context, name string, typ entity.Type, limit int) ([]Cooccurrence, error) {
	table, column, err := tableFor(typ)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %[2]s, COUNT(DISTINCT doc_id) AS cnt
		FROM %[1]s
		WHERE doc_id IN (SELECT doc_id FROM %[1]s WHERE %[2]s = ?)
		  AND %[2]s != ?
		GROUP BY %[2]s
		ORDER BY cnt DESC, %[2]s
		LIMIT ?`, table, column)

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, query, name, name, limit)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
	}
	defer rows.Close()

	var result []Cooccurrence
	for rows.Next() {
		var c Cooccurrence
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Stats summarizes the stored corpus.
type Stats struct {
	DocumentCount int
	UniqueCounts  map[entity.Type]int
}

// CorpusStats returns document and per-type unique entity counts.
func (s *Store) CorpusStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{UniqueCounts: make(map[entity.Type]int)}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents`).Scan(&stats.DocumentCount); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
	}

	for _, et := range entityTables {
		query := fmt.Sprintf(`SELECT COUNT(DISTINCT %s) FROM %s`, et.column, et.table)
		var count int
		if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
		}
		stats.UniqueCounts[et.typ] = count
	}
	return stats, nil
}
