package entity

import (
	"sort"
	"strings"
	"unicode"
)

// particles stay lowercase inside person names unless leading.
var particles = map[string]struct{}{
	"von": {}, "van": {}, "de": {}, "la": {}, "le": {}, "of": {}, "the": {},
}

// Consolidate partitions surface forms into groups per type and elects
// one canonical name per group. Two forms share a group when their
// consolidation keys are equal or the alias table maps them to the same
// target. The canonical is the alias target when one exists, otherwise
// the longest surface form (ties: most documents, then lexicographic).
// A group's document set is the union of its variants' document sets.
// Deterministic for a fixed input and alias table.
func Consolidate(surfaces []Surface) []Group {
	type bucket struct {
		typ      Type
		aliased  string // predefined canonical, "" when none
		variants []Surface
	}

	buckets := make(map[string]*bucket)
	for _, s := range surfaces {
		key := consolidationKey(s.Name)
		aliased := ""
		if target, ok := aliasTarget(s.Name); ok {
			key = target
			aliased = target
		}
		id := string(s.Type) + "\x00" + key
		b, ok := buckets[id]
		if !ok {
			b = &bucket{typ: s.Type, aliased: aliased}
			buckets[id] = b
		}
		if aliased != "" {
			b.aliased = aliased
		}
		b.variants = append(b.variants, s)
	}

	ids := make([]string, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	groups := make([]Group, 0, len(buckets))
	for _, id := range ids {
		b := buckets[id]

		canonical := electCanonical(b.variants, b.aliased, b.typ)

		docs := NewSet()
		variants := NewSet()
		for _, v := range b.variants {
			variants.Add(v.Name)
			for _, d := range v.DocIDs {
				docs.Add(d)
			}
		}

		groups = append(groups, Group{
			Canonical: canonical,
			Type:      b.typ,
			Variants:  variants.Sorted(),
			DocIDs:    docs.Sorted(),
		})
	}
	return groups
}

// electCanonical picks the group's canonical name. With a predefined
// alias target the target wins (re-capitalized for its type); otherwise
// the longest surface form, breaking ties by document count descending
// then by the lexicographically greater name.
func electCanonical(variants []Surface, aliased string, typ Type) string {
	if aliased != "" {
		return Capitalize(aliased, typ)
	}

	best := variants[0]
	for _, v := range variants[1:] {
		switch {
		case len(v.Name) > len(best.Name):
			best = v
		case len(v.Name) == len(best.Name) && len(v.DocIDs) > len(best.DocIDs):
			best = v
		case len(v.Name) == len(best.Name) && len(v.DocIDs) == len(best.DocIDs) && v.Name > best.Name:
			best = v
		}
	}
	return Capitalize(best.Name, typ)
}

// Capitalize applies display capitalization per type. Person names keep
// nobiliary particles lowercase except when leading and title-case every
// other word; locations and organizations of at most four characters stay
// acronyms when already all caps or when they are an alias-table key;
// dates and emails pass through untouched.
func Capitalize(name string, typ Type) string {
	switch typ {
	case TypePerson:
		words := strings.Fields(name)
		for i, w := range words {
			lower := strings.ToLower(w)
			if i > 0 {
				if _, ok := particles[lower]; ok {
					words[i] = lower
					continue
				}
			}
			words[i] = titleWord(w)
		}
		return strings.Join(words, " ")
	case TypeLocation, TypeOrganization:
		if len(name) <= 4 && name == strings.ToUpper(name) && name != strings.ToLower(name) {
			return strings.ToUpper(name)
		}
		if len(name) <= 4 {
			// Short aliases like "fbi" surface as acronyms.
			if _, ok := aliasGroups[consolidationKey(name)]; ok {
				return strings.ToUpper(name)
			}
		}
		words := strings.Fields(name)
		for i, w := range words {
			words[i] = titleWord(w)
		}
		return strings.Join(words, " ")
	default:
		return name
	}
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
