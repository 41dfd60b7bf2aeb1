package entity

import "strings"

// aliasGroups maps a canonical name to the surface-form variants that
// should consolidate into it. Keys and variants are written in the
// normalized form produced by consolidationKey. The table is static and
// seeded with aliases that recur throughout the corpus.
var aliasGroups = map[string][]string{
	// Countries and regions
	"united states":  {"us", "usa", "the united states", "america", "united states"},
	"united kingdom": {"uk", "britain", "england", "the uk", "united kingdom"},
	"european union": {"eu", "european union"},

	// Cities
	"new york":    {"ny", "nyc", "new york city", "new york"},
	"washington":  {"washington dc", "dc", "washington"},
	"los angeles": {"la", "los angeles"},

	// Organizations
	"fbi":                 {"federal bureau of investigation", "fbi"},
	"cia":                 {"central intelligence agency", "cia"},
	"new york times":      {"nyt", "the new york times", "ny times", "new york times"},
	"wall street journal": {"wsj", "the wall street journal", "wall street journal"},
	"washington post":     {"the washington post", "wapo", "washington post"},
	"cnn":                 {"cable news network", "cnn"},
	"bbc":                 {"british broadcasting corporation", "bbc"},
	"harvard university":  {"harvard", "harvard university"},
	"white house":         {"the white house", "white house"},

	// People
	"jeffrey epstein":   {"jeffrey e", "jeff epstein", "epstein", "jeffrey epstein"},
	"donald trump":      {"trump", "donald", "donald trump"},
	"bill clinton":      {"clinton", "bill", "bill clinton", "william clinton"},
	"hillary clinton":   {"hillary", "hillary clinton"},
	"ghislaine maxwell": {"maxwell", "ghislaine", "g maxwell", "ghislaine maxwell"},
	"barack obama":      {"obama", "barack", "barack obama"},
	"prince andrew":     {"andrew", "prince andrew"},
	"alan dershowitz":   {"dershowitz", "alan dershowitz"},
}

// aliasToCanonical is the reverse lookup, built once at init.
var aliasToCanonical = func() map[string]string {
	m := make(map[string]string)
	for canonical, variants := range aliasGroups {
		for _, v := range variants {
			m[consolidationKey(v)] = canonical
		}
	}
	return m
}()

// consolidationKey normalizes a surface form for grouping: lowercase,
// leading "the" stripped, trailing possessive stripped, dots removed,
// whitespace collapsed.
func consolidationKey(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.TrimPrefix(normalized, "the ")
	normalized = strings.TrimSuffix(normalized, "'s")
	normalized = strings.ReplaceAll(normalized, ".", "")
	return strings.Join(strings.Fields(normalized), " ")
}

// aliasTarget returns the predefined canonical for a surface form, if
// the alias table knows it.
func aliasTarget(name string) (string, bool) {
	canonical, ok := aliasToCanonical[consolidationKey(name)]
	return canonical, ok
}
