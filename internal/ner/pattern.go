package ner

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

// PatternRecognizer is the built-in recognizer: capitalization runs,
// honorific and suffix cues, and a small gazetteer. It exists so the
// engine works out of the box without an external model; a served NER
// model plugs in behind the same interface.
type PatternRecognizer struct{}

// NewPatternRecognizer creates the pattern-based recognizer.
func NewPatternRecognizer() *PatternRecognizer {
	return &PatternRecognizer{}
}

var _ Recognizer = (*PatternRecognizer)(nil)

// honorifics preceding a capitalized run force a PERSON reading.
var honorifics = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sir": {},
	"judge": {}, "justice": {}, "president": {}, "senator": {},
}

// orgSuffixes mark a run as an organization when its last word matches.
var orgSuffixes = map[string]struct{}{
	"inc": {}, "corp": {}, "llc": {}, "ltd": {}, "co": {},
	"foundation": {}, "university": {}, "college": {}, "institute": {},
	"bank": {}, "committee": {}, "department": {}, "agency": {},
	"bureau": {}, "association": {}, "group": {}, "times": {}, "post": {},
	"journal": {}, "network": {}, "house": {}, "service": {}, "fund": {},
}

// knownPlaces is a closed gazetteer of locations the heuristics cannot
// infer structurally. Lowercased.
var knownPlaces = map[string]struct{}{
	"paris": {}, "london": {}, "new york": {}, "washington": {},
	"florida": {}, "manhattan": {}, "france": {}, "england": {},
	"virgin islands": {}, "palm beach": {}, "miami": {}, "tokyo": {},
	"moscow": {}, "berlin": {}, "rome": {}, "madrid": {}, "geneva": {},
	"united states": {}, "united kingdom": {}, "america": {},
	"california": {}, "texas": {}, "chicago": {}, "boston": {},
	"los angeles": {}, "san francisco": {}, "seattle": {},
	"new mexico": {}, "santa fe": {}, "st. thomas": {},
}

// connectors may appear lowercase inside a capitalized run.
var connectors = map[string]struct{}{
	"of": {}, "the": {}, "de": {}, "la": {}, "van": {}, "von": {},
}

// sentenceLeads are capitalized only by position and never entities on
// their own.
var sentenceLeads = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "in": {}, "on": {}, "at": {}, "it": {},
	"he": {}, "she": {}, "they": {}, "we": {}, "this": {}, "that": {},
	"there": {}, "his": {}, "her": {}, "their": {}, "and": {}, "but": {},
	"or": {}, "if": {}, "when": {}, "while": {}, "after": {}, "before": {},
	"representatives": {}, "meeting": {}, "flight": {}, "from": {}, "to": {},
}

var wordPattern = regexp.MustCompile(`\S+`)

type word struct {
	text  string // trimmed of edge punctuation
	start int
	end   int
}

// Recognize scans text for entity spans. Errors are impossible for the
// pattern recognizer; the signature carries them for model-backed
// implementations.
func (p *PatternRecognizer) Recognize(ctx context.Context, text string) ([]Span, error) {
	var spans []Span

	for _, sentence := range splitSentences(text) {
		words := sentenceWords(text, sentence.start, sentence.end)
		spans = append(spans, scanSentence(text, words)...)
	}
	return spans, nil
}

// Available always reports true: the pattern recognizer has no model to
// load.
func (p *PatternRecognizer) Available(ctx context.Context) bool { return true }

// ModelName identifies the recognizer in logs and stats output.
func (p *PatternRecognizer) ModelName() string { return "pattern" }

// Close is a no-op.
func (p *PatternRecognizer) Close() error { return nil }

type segment struct{ start, end int }

// splitSentences cuts text on sentence punctuation and newlines. Offsets
// index the original text.
func splitSentences(text string) []segment {
	var segs []segment
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			// A period between capitalized initials ("G. Maxwell") or
			// inside an abbreviation does not end the sentence.
			if r == '.' && isAbbreviationDot(text, i) {
				continue
			}
			if i > start {
				segs = append(segs, segment{start, i})
			}
			start = i + 1
		}
	}
	if start < len(text) {
		segs = append(segs, segment{start, len(text)})
	}
	return segs
}

// isAbbreviationDot reports whether the dot at i follows a short
// capitalized token like "Mr", "St", or a single initial.
func isAbbreviationDot(text string, i int) bool {
	j := i
	for j > 0 && (unicode.IsLetter(rune(text[j-1]))) {
		j--
	}
	tok := text[j:i]
	if len(tok) == 1 && unicode.IsUpper(rune(tok[0])) {
		return true
	}
	lower := strings.ToLower(tok)
	_, honorific := honorifics[lower]
	return honorific || lower == "st" || lower == "jr" || lower == "sr"
}

func sentenceWords(text string, start, end int) []word {
	var words []word
	for _, loc := range wordPattern.FindAllStringIndex(text[start:end], -1) {
		raw := text[start+loc[0] : start+loc[1]]
		trimmed := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
		})
		trimmed = strings.TrimSuffix(trimmed, ".")
		if trimmed == "" {
			continue
		}
		words = append(words, word{
			text:  trimmed,
			start: start + loc[0],
			end:   start + loc[1],
		})
	}
	return words
}

// scanSentence extracts capitalized runs from one sentence and
// classifies them.
func scanSentence(text string, words []word) []Span {
	var spans []Span

	i := 0
	for i < len(words) {
		if !startsUpper(words[i].text) {
			i++
			continue
		}

		// Honorific prefix: note it, then classify the following run.
		personHint := false
		if _, ok := honorifics[strings.ToLower(words[i].text)]; ok {
			personHint = true
			i++
			if i >= len(words) || !startsUpper(words[i].text) {
				continue
			}
		}

		runStart := i
		j := i + 1
		for j < len(words) {
			if startsUpper(words[j].text) {
				j++
				continue
			}
			// Lowercase connector between capitalized words stays in the run.
			if _, ok := connectors[strings.ToLower(words[j].text)]; ok &&
				j+1 < len(words) && startsUpper(words[j+1].text) {
				j += 2
				continue
			}
			break
		}

		span := classifyRun(text, words[runStart:j], runStart == 0, personHint)
		if span != nil {
			spans = append(spans, *span)
		}
		i = j
	}
	return spans
}

func classifyRun(text string, run []word, sentenceInitial bool, personHint bool) *Span {
	if len(run) == 0 {
		return nil
	}

	startOff := run[0].start
	surface := text[startOff:run[len(run)-1].end]

	trimmedLeft := strings.TrimLeftFunc(surface, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	startOff += len(surface) - len(trimmedLeft)
	surface = strings.TrimRightFunc(trimmedLeft, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})
	surface = strings.TrimSuffix(surface, ".")
	if surface == "" {
		return nil
	}
	lower := strings.ToLower(surface)
	lowerNoDots := strings.ReplaceAll(lower, ".", "")

	span := &Span{Text: surface, Start: startOff, End: startOff + len(surface)}

	if _, ok := knownPlaces[lower]; ok {
		span.Label = LabelGPE
		return span
	}
	if _, ok := knownPlaces[lowerNoDots]; ok {
		span.Label = LabelGPE
		return span
	}

	last := strings.ToLower(run[len(run)-1].text)
	if _, ok := orgSuffixes[last]; ok && len(run) > 1 {
		span.Label = LabelOrg
		return span
	}

	if personHint {
		span.Label = LabelPerson
		return span
	}

	if len(run) == 1 {
		w := run[0].text
		// Acronyms read as organizations.
		if len(w) >= 2 && len(w) <= 5 && w == strings.ToUpper(w) && w != strings.ToLower(w) {
			span.Label = LabelOrg
			return span
		}
		// A lone capitalized word at sentence start is position, not
		// identity. Elsewhere it is too ambiguous to label; the lookup
		// and substring tiers recover these at query time.
		return nil
	}

	// Multi-word capitalized run with no org cue: read as a person,
	// unless it opens the sentence with a function word.
	if sentenceInitial {
		if _, ok := sentenceLeads[strings.ToLower(run[0].text)]; ok {
			return nil
		}
	}
	span.Label = LabelPerson
	return span
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
