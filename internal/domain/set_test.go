package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSetTitles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"no tokens", "just some text", nil},
		{"single token", "{Fiction}", []string{"Fiction"}},
		{"two tokens", "{Fiction}{Sci-Fi}", []string{"Fiction", "Sci-Fi"}},
		{"tokens with separator text", "{Fiction} and {Sci-Fi}", []string{"Fiction", "Sci-Fi"}},
		{"whitespace kept verbatim", "{ Fiction }", []string{" Fiction "}},
		{"duplicate tokens", "{Fiction}{Fiction}", []string{"Fiction", "Fiction"}},
		{"multi-word title", "{To Read This Year}", []string{"To Read This Year"}},
		{"unclosed brace ignored", "{Fiction", nil},
		{"empty braces not a token", "{}", nil},
		{"nested-looking braces", "{{Fiction}}", []string{"{Fiction"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSetTitles(tt.input))
		})
	}
}

func TestParseSetTitles_DistinctWhitespaceTitles(t *testing.T) {
	// "Fiction" and " Fiction" name different sets; parsing must not trim.
	titles := ParseSetTitles("{Fiction}{ Fiction}")
	assert.Equal(t, []string{"Fiction", " Fiction"}, titles)
}
