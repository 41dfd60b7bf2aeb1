// Package textproc cleans and tokenizes raw document text for indexing
// and search. All operations are pure and deterministic.
package textproc

import (
	"regexp"
	"strings"
)

// DefaultMinTokenLength is the minimum token length kept by Tokenize.
const DefaultMinTokenLength = 2

// PreviewLength is the number of characters kept by Preview.
const PreviewLength = 200

var (
	// controlChars matches control characters except newline and tab.
	controlChars = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")

	// horizontalSpace matches runs of spaces and tabs.
	horizontalSpace = regexp.MustCompile(`[ \t]+`)

	// blankRuns matches a newline followed by blank lines.
	blankRuns = regexp.MustCompile(`\n\s*\n`)

	// nonToken matches anything that is not a word character. Replaced
	// with whitespace before splitting.
	nonToken = regexp.MustCompile(`[^\w\s]`)
)

// Clean normalizes raw text: control characters are stripped (newlines
// and tabs survive), horizontal whitespace collapses to a single space,
// and runs of blank lines collapse to one.
func Clean(text string) string {
	text = controlChars.ReplaceAllString(text, "")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Tokenize lowercases text, substitutes punctuation with whitespace,
// splits on whitespace, and drops tokens shorter than minLen. Pass 0 for
// the default minimum length.
func Tokenize(text string, minLen int) []string {
	if minLen <= 0 {
		minLen = DefaultMinTokenLength
	}

	text = strings.ToLower(text)
	text = nonToken.ReplaceAllString(text, " ")

	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= minLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Preview returns the first PreviewLength characters of text, with an
// ellipsis appended when the text was truncated. Operates on runes so a
// multi-byte character is never split.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength]) + "..."
}
