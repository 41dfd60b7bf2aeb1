// Package export writes entity analytics as CSV: frequencies per
// entity, documents per entity, and type-scoped co-occurrence matrices.
package export

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/doclens/doclens/internal/entity"
	"github.com/doclens/doclens/internal/store"
)

// exportTypes fixes the type order for multi-type exports.
var exportTypes = []entity.Type{
	entity.TypePerson,
	entity.TypeOrganization,
	entity.TypeLocation,
	entity.TypeDate,
	entity.TypeEmail,
}

// typeLabels are the human-readable type names used in CSV output.
var typeLabels = map[entity.Type]string{
	entity.TypePerson:       "people",
	entity.TypeOrganization: "organizations",
	entity.TypeLocation:     "locations",
	entity.TypeDate:         "dates",
	entity.TypeEmail:        "emails",
}

// Frequencies writes the "Entity Type, Entity, Document Count" layout,
// sorted by type then count descending (names ascending on ties).
// Entities below minFrequency are omitted.
func Frequencies(ctx context.Context, w io.Writer, s *store.Store, types []entity.Type, minFrequency int) error {
	if len(types) == 0 {
		types = exportTypes
	}
	if minFrequency < 1 {
		minFrequency = 1
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Entity Type", "Entity", "Document Count"}); err != nil {
		return err
	}

	for _, typ := range types {
		counts, err := s.TopEntities(ctx, typ, 0)
		if err != nil {
			return err
		}
		for _, ec := range counts {
			if ec.Count < minFrequency {
				continue
			}
			record := []string{typeLabels[typ], ec.Name, strconv.Itoa(ec.Count)}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Documents writes the "Entity, Document Count, Document IDs" layout
// for one type, count descending, ids semicolon-separated within the
// quoted field.
func Documents(ctx context.Context, w io.Writer, s *store.Store, typ entity.Type) error {
	byEntity, err := s.EntityDocuments(ctx, typ)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(byEntity))
	for name := range byEntity {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(byEntity[names[i]]) != len(byEntity[names[j]]) {
			return len(byEntity[names[i]]) > len(byEntity[names[j]])
		}
		return names[i] < names[j]
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Entity", "Document Count", "Document IDs"}); err != nil {
		return err
	}
	for _, name := range names {
		docs := byEntity[name]
		record := []string{name, strconv.Itoa(len(docs)), strings.Join(docs, ";")}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CooccurrenceMatrix writes a square matrix over the top-limit entities
// of one type: cell (i, j) counts documents containing both entities,
// with a zero diagonal by convention.
func CooccurrenceMatrix(ctx context.Context, w io.Writer, s *store.Store, typ entity.Type, limit int) error {
	top, err := s.TopEntities(ctx, typ, limit)
	if err != nil {
		return err
	}
	byEntity, err := s.EntityDocuments(ctx, typ)
	if err != nil {
		return err
	}

	names := make([]string, len(top))
	docSets := make([]map[string]struct{}, len(top))
	for i, ec := range top {
		names[i] = ec.Name
		set := make(map[string]struct{}, len(byEntity[ec.Name]))
		for _, id := range byEntity[ec.Name] {
			set[id] = struct{}{}
		}
		docSets[i] = set
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, names...)); err != nil {
		return err
	}

	for i, name := range names {
		row := make([]string, 0, len(names)+1)
		row = append(row, name)
		for j := range names {
			if i == j {
				row = append(row, "0")
				continue
			}
			row = append(row, strconv.Itoa(intersectionSize(docSets[i], docSets[j])))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	count := 0
	for id := range a {
		if _, ok := b[id]; ok {
			count++
		}
	}
	return count
}
