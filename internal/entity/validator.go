package entity

import (
	"regexp"
	"strings"
	"unicode"
)

// Name length bounds for a plausible entity.
const (
	minNameLength = 3
	maxNameLength = 100
)

// invalidPatterns reject structured-data debris that NER models pick up
// from JSON, HTML, and email dumps. A match on any pattern rejects the
// candidate.
var invalidPatterns = []*regexp.Regexp{
	// JSON / HTML / XML
	regexp.MustCompile(`[{}\[\]<>]`),
	regexp.MustCompile(`(?i)&[a-z]+;`),
	regexp.MustCompile(`</?\w+`),
	regexp.MustCompile(`(?i)href=|target=|class=|style=`),

	// Dates are extracted separately, never stored as names.
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),

	// Special characters
	regexp.MustCompile(`^[%&@#$]+`),
	regexp.MustCompile(`^\d+\s*$`),
	regexp.MustCompile("[|\\\\~`]"),

	// Email artifacts
	regexp.MustCompile(`(?i)@\w+\.(com|org|net|edu)`),
	regexp.MustCompile(`(?i)mailto:`),
	regexp.MustCompile(`(?i)^(Sender|Subject|From|To):`),

	// Structured-data keys and programming artifacts
	regexp.MustCompile(`(?i)textStyle|layout|identifier`),
	regexp.MustCompile(`HASH\(0x`),
	regexp.MustCompile(`Default\w+Name`),

	// Encoding damage
	regexp.MustCompile(`=\d{2}`),
	regexp.MustCompile(`Â©|â€™`),

	// URLs
	regexp.MustCompile(`(?i)https?://`),
	regexp.MustCompile(`(?i)www\.`),
}

// rejectExactWords are surface forms that are never entities regardless
// of type: day and month abbreviations, email header keywords, and a few
// recurring NER false positives.
var rejectExactWords = map[string]struct{}{
	"sender": {}, "subject": {}, "from": {}, "to": {}, "sent": {}, "unauthorized": {},
	"mon": {}, "tue": {}, "wed": {}, "thu": {}, "fri": {}, "sat": {}, "sun": {},
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "may": {}, "jun": {},
	"jul": {}, "aug": {}, "sep": {}, "oct": {}, "nov": {}, "dec": {},
	"twitter": {}, "facebook": {}, "instagram": {},
	"brexit": {},
}

// personStopWords are common words spaCy-style models mislabel as PERSON.
var personStopWords = map[string]struct{}{
	"the": {}, "and": {}, "page": {}, "chapter": {}, "section": {},
}

// IsValid reports whether an extracted surface form passes the quality
// checks for its type. It filters entities a recognizer already produced;
// it never re-runs extraction. Pure and side-effect free.
func IsValid(name string, typ Type) bool {
	text := strings.TrimSpace(name)

	if len(text) < minNameLength || len(text) > maxNameLength {
		return false
	}
	if strings.ContainsRune(text, '\n') {
		return false
	}
	if _, ok := rejectExactWords[strings.ToLower(text)]; ok {
		return false
	}

	for _, p := range invalidPatterns {
		if p.MatchString(text) {
			return false
		}
	}

	if !containsLetter(text) {
		return false
	}

	switch typ {
	case TypePerson:
		// All-caps beyond acronym length is a code, not a name.
		if len(text) > 5 && text == strings.ToUpper(text) && strings.ToLower(text) != text {
			return false
		}
		for _, word := range strings.Fields(strings.ToLower(text)) {
			if _, ok := personStopWords[word]; ok {
				return false
			}
		}
	case TypeLocation:
		if strings.ContainsRune("&%#@", rune(text[0])) {
			return false
		}
		special := 0
		for _, r := range text {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' && r != '-' && r != '.' {
				special++
			}
		}
		if special > 2 {
			return false
		}
	case TypeOrganization:
		special := 0
		for _, r := range text {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
				special++
			}
		}
		if float64(special)/float64(len([]rune(text))) > 0.3 {
			return false
		}
	}

	return true
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
