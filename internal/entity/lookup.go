package entity

import "sort"

// Ref identifies one canonical entity of a given type.
type Ref struct {
	Canonical string
	Type      Type
}

// Lookup maps normalized surface forms to the canonical entities they
// may refer to. It is built once after consolidation and read-only
// afterwards, so it can be shared across queries without locking.
type Lookup struct {
	byForm map[string][]Ref
}

// BuildLookup indexes every canonical name and every consolidation
// variant under its normalized form.
func BuildLookup(groups []Group) *Lookup {
	l := &Lookup{byForm: make(map[string][]Ref)}
	for _, g := range groups {
		ref := Ref{Canonical: g.Canonical, Type: g.Type}
		l.add(Normalize(g.Canonical), ref)
		for _, v := range g.Variants {
			l.add(Normalize(v), ref)
		}
	}
	l.sortRefs()
	return l
}

// LookupFromCanonicals rebuilds a lookup from persisted canonical names
// alone, re-deriving variants from the static alias table. This is the
// open-an-existing-index path, where raw variants were consolidated away
// before persistence.
func LookupFromCanonicals(byType map[Type][]string) *Lookup {
	l := &Lookup{byForm: make(map[string][]Ref)}
	for typ, names := range byType {
		for _, name := range names {
			ref := Ref{Canonical: name, Type: typ}
			l.add(Normalize(name), ref)
			if variants, ok := aliasGroups[consolidationKey(name)]; ok {
				for _, v := range variants {
					l.add(Normalize(v), ref)
				}
			}
		}
	}
	l.sortRefs()
	return l
}

// Find returns the canonical entities registered under the normalized
// form of the given token, or nil.
func (l *Lookup) Find(form string) []Ref {
	return l.byForm[Normalize(form)]
}

// Size returns the number of distinct normalized forms indexed.
func (l *Lookup) Size() int { return len(l.byForm) }

func (l *Lookup) add(form string, ref Ref) {
	if form == "" {
		return
	}
	for _, existing := range l.byForm[form] {
		if existing == ref {
			return
		}
	}
	l.byForm[form] = append(l.byForm[form], ref)
}

// sortRefs fixes iteration order so tier-2 extraction is deterministic.
func (l *Lookup) sortRefs() {
	for form, refs := range l.byForm {
		sort.Slice(refs, func(i, j int) bool {
			if refs[i].Type != refs[j].Type {
				return refs[i].Type < refs[j].Type
			}
			return refs[i].Canonical < refs[j].Canonical
		})
		l.byForm[form] = refs
	}
}
