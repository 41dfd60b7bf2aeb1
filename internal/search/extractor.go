package search

import (
	"context"
	"strings"

	"github.com/doclens/doclens/internal/entity"
	"github.com/doclens/doclens/internal/extract"
	"github.com/doclens/doclens/internal/ner"
)

// DefaultSubstringCap bounds the substring tier to the most-frequent
// canonicals per type. A cost-quality trade-off, not a correctness knob.
const DefaultSubstringCap = 2000

// queryStopWords are tokens never treated as entity candidates in the
// lookup and substring tiers.
var queryStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "from": {}, "by": {}, "about": {},
	"investigation": {}, "case": {}, "documents": {}, "files": {},
}

// EntityExtractor infers typed entities from free-form queries with a
// three-tier fallback: recognizer spans, normalized lookup, bounded
// substring scan. Read-only after construction.
type EntityExtractor struct {
	recognizer ner.Recognizer
	lookup     *entity.Lookup

	// ranked holds canonical names per type, most frequent first,
	// truncated to the substring-tier bound.
	ranked map[entity.Type][]string
}

// NewEntityExtractor builds a query-entity extractor. ranked must list
// canonical names per type in descending document frequency; limit <= 0
// selects DefaultSubstringCap.
func NewEntityExtractor(recognizer ner.Recognizer, lookup *entity.Lookup, ranked map[entity.Type][]string, limit int) *EntityExtractor {
	if limit <= 0 {
		limit = DefaultSubstringCap
	}

	bounded := make(map[entity.Type][]string, len(ranked))
	for typ, names := range ranked {
		if len(names) > limit {
			names = names[:limit]
		}
		bounded[typ] = names
	}

	return &EntityExtractor{
		recognizer: recognizer,
		lookup:     lookup,
		ranked:     bounded,
	}
}

// substringTierOrder fixes the type scan order for determinism.
var substringTierOrder = []entity.Type{
	entity.TypePerson,
	entity.TypeOrganization,
	entity.TypeLocation,
}

// Extract runs all three tiers and unions the findings. Dates come from
// the same regex patterns used at index time.
func (e *EntityExtractor) Extract(ctx context.Context, query string) (QueryEntities, error) {
	people := entity.NewSet()
	orgs := entity.NewSet()
	locations := entity.NewSet()

	add := func(typ entity.Type, name string) {
		switch typ {
		case entity.TypePerson:
			people.Add(name)
		case entity.TypeOrganization:
			orgs.Add(name)
		case entity.TypeLocation:
			locations.Add(name)
		}
	}

	// Tier 1: recognizer spans that survive validation.
	spans, err := e.recognizer.Recognize(ctx, query)
	if err != nil {
		return QueryEntities{}, err
	}
	for _, span := range spans {
		switch span.Label {
		case ner.LabelPerson:
			if entity.IsValid(span.Text, entity.TypePerson) {
				add(entity.TypePerson, span.Text)
			}
		case ner.LabelOrg:
			if entity.IsValid(span.Text, entity.TypeOrganization) {
				add(entity.TypeOrganization, span.Text)
			}
		case ner.LabelGPE, ner.LabelLoc:
			if entity.IsValid(span.Text, entity.TypeLocation) {
				add(entity.TypeLocation, span.Text)
			}
		}
	}

	contains := func(typ entity.Type, name string) bool {
		switch typ {
		case entity.TypePerson:
			return people.Contains(name)
		case entity.TypeOrganization:
			return orgs.Contains(name)
		default:
			return locations.Contains(name)
		}
	}

	// Tier 2: known-entity lookup on normalized tokens.
	tokens := queryTokens(query)
	for _, tok := range tokens {
		for _, ref := range e.lookup.Find(tok) {
			add(ref.Type, ref.Canonical)
		}
	}

	// Tier 3: bounded substring scan, first match wins per token.
	for _, tok := range tokens {
		if len(tok) < 4 {
			continue
		}
		lower := strings.ToLower(tok)

		found := false
		for _, typ := range substringTierOrder {
			for _, canonical := range e.ranked[typ] {
				if !strings.Contains(strings.ToLower(canonical), lower) {
					continue
				}
				if !contains(typ, canonical) {
					add(typ, canonical)
				}
				found = true
				break
			}
			if found {
				break
			}
		}
	}

	return QueryEntities{
		People:        people.Sorted(),
		Organizations: orgs.Sorted(),
		Locations:     locations.Sorted(),
		Dates:         extract.Dates(query),
	}, nil
}

// queryTokens splits the query on whitespace, lowercases, and drops
// short tokens and stop words.
func queryTokens(query string) []string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.ToLower(strings.Trim(f, `.,;:!?"'()`))
		if len(tok) < 3 {
			continue
		}
		if _, stop := queryStopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
