package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s_%03d", prefix, i)
	}
	return ids
}

func TestConsolidateAliasGroup(t *testing.T) {
	// Overlapping doc sets: union must deduplicate, not sum.
	shared := docs("doc", 30)
	surfaces := []Surface{
		{Name: "U.S.", Type: TypeLocation, DocIDs: shared[:10]},
		{Name: "US", Type: TypeLocation, DocIDs: shared[8:13]},
		{Name: "United States", Type: TypeLocation, DocIDs: shared[5:25]},
		{Name: "America", Type: TypeLocation, DocIDs: shared[27:30]},
	}

	groups := Consolidate(surfaces)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "United States", g.Canonical)
	assert.Equal(t, TypeLocation, g.Type)
	assert.Len(t, g.Variants, 4)
	// 0..12 ∪ 5..24 ∪ 27..29 = 28 distinct docs
	assert.Len(t, g.DocIDs, 28)
}

func TestConsolidateUnionNotSum(t *testing.T) {
	// Doc sets of sizes 10, 5, 20, 3, where the 5 and the 3 are subsets of
	// the 10: the union holds 30 ids, while summing the sizes would give 38.
	surfaces := []Surface{
		{Name: "U.S.", Type: TypeLocation, DocIDs: docs("a", 10)},
		{Name: "US", Type: TypeLocation, DocIDs: docs("a", 5)},     // subset of U.S. docs
		{Name: "United States", Type: TypeLocation, DocIDs: docs("b", 20)},
		{Name: "America", Type: TypeLocation, DocIDs: docs("a", 3)}, // subset again
	}

	groups := Consolidate(surfaces)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].DocIDs, 30)
}

func TestConsolidatePartition(t *testing.T) {
	surfaces := []Surface{
		{Name: "Ghislaine Maxwell", Type: TypePerson, DocIDs: docs("p", 4)},
		{Name: "Maxwell", Type: TypePerson, DocIDs: docs("q", 2)},
		{Name: "Paris", Type: TypeLocation, DocIDs: docs("r", 3)},
		{Name: "paris", Type: TypeLocation, DocIDs: docs("s", 1)},
	}

	groups := Consolidate(surfaces)
	require.Len(t, groups, 2)

	// Each surface form appears in exactly one group of its type.
	seen := map[string]int{}
	for _, g := range groups {
		for _, v := range g.Variants {
			seen[string(g.Type)+":"+v]++
		}
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, "surface %s mapped to %d groups", key, count)
	}
}

func TestConsolidateCanonicalElection(t *testing.T) {
	// No alias entry and different keys: two groups, no election between them.
	groups := Consolidate([]Surface{
		{Name: "Wexner", Type: TypePerson, DocIDs: docs("a", 9)},
		{Name: "Leslie Wexner", Type: TypePerson, DocIDs: docs("b", 2)},
	})
	require.Len(t, groups, 2) // "wexner" and "leslie wexner" differ after normalization

	// Same key via possessive stripping.
	groups = Consolidate([]Surface{
		{Name: "Leslie Wexner's", Type: TypePerson, DocIDs: docs("a", 1)},
		{Name: "Leslie Wexner", Type: TypePerson, DocIDs: docs("b", 2)},
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "Leslie Wexner's", groups[0].Canonical) // longest surface form
}

func TestConsolidateFullTieBreak(t *testing.T) {
	// Equal length, equal document count: the lexicographically greater
	// surface form wins the election.
	groups := Consolidate([]Surface{
		{Name: "ACME", Type: TypeOrganization, DocIDs: docs("a", 2)},
		{Name: "Acme", Type: TypeOrganization, DocIDs: docs("b", 2)},
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "Acme", groups[0].Canonical)
}

func TestConsolidateCrossTypeIndependent(t *testing.T) {
	groups := Consolidate([]Surface{
		{Name: "United States", Type: TypeLocation, DocIDs: docs("a", 2)},
		{Name: "United States", Type: TypeOrganization, DocIDs: docs("b", 2)},
	})
	require.Len(t, groups, 2)

	types := map[Type]bool{}
	for _, g := range groups {
		assert.Equal(t, "United States", g.Canonical)
		types[g.Type] = true
	}
	assert.True(t, types[TypeLocation])
	assert.True(t, types[TypeOrganization])
}

func TestConsolidateDeterministic(t *testing.T) {
	surfaces := []Surface{
		{Name: "U.S.", Type: TypeLocation, DocIDs: docs("a", 10)},
		{Name: "Ghislaine Maxwell", Type: TypePerson, DocIDs: docs("b", 4)},
		{Name: "Maxwell", Type: TypePerson, DocIDs: docs("c", 2)},
		{Name: "FBI", Type: TypeOrganization, DocIDs: docs("d", 7)},
	}

	first := Consolidate(surfaces)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Consolidate(surfaces))
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Ludwig von Mises", Capitalize("ludwig von mises", TypePerson))
	assert.Equal(t, "Jeffrey Epstein", Capitalize("jeffrey epstein", TypePerson))
	assert.Equal(t, "FBI", Capitalize("fbi", TypeOrganization))
	assert.Equal(t, "New York", Capitalize("new york", TypeLocation))
	assert.Equal(t, "2015-07-12", Capitalize("2015-07-12", TypeDate))
}
