package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPerson(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"real name", "Jeffrey Epstein", true},
		{"too short", "%%", false},
		{"stop word in name", "Page 33", false},
		{"json key fragment", `","textStyle":`, false},
		{"all caps beyond acronym length", "ALLCAPSCORP", false},
		{"short acronym allowed", "JFK", true},
		{"pure digits", "12345", false},
		{"day abbreviation", "Fri", false},
		{"month abbreviation", "Jan", false},
		{"html entity", "John &amp; Jane", false},
		{"embedded newline", "John\nDoe", false},
		{"url", "https://example.com", false},
		{"email header", "From: John", false},
		{"too long", string(make([]byte, 101)), false},
		{"name with particle", "Ludwig von Mises", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.input, TypePerson))
		})
	}
}

func TestIsValidLocation(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Paris", true},
		{"New York", true},
		{"&Paris", false},
		{"P@r!s#+", false},
		{"St. Thomas", true},
		{"Winston-Salem", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValid(tt.input, TypeLocation), "input %q", tt.input)
	}
}

func TestIsValidOrganization(t *testing.T) {
	// More than 30% special characters is noise.
	assert.False(t, IsValid("a*b*c*d", TypeOrganization))
	assert.True(t, IsValid("Clinton Foundation", TypeOrganization))
	assert.True(t, IsValid("AT&T Inc", TypeOrganization))
}

// Repeated calls must return the same result: the validator is pure.
func TestIsValidDeterministic(t *testing.T) {
	inputs := []string{"Jeffrey Epstein", "%%", "Page 33", "ALLCAPSCORP", "Paris"}
	for _, in := range inputs {
		first := IsValid(in, TypePerson)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, IsValid(in, TypePerson))
		}
	}
}
