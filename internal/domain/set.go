package domain

import (
	"regexp"
	"time"
)

// Set is a user-owned named collection grouping zero or more books,
// entered as {Brace Delimited} tags on the book form. Titles are kept
// verbatim: "Fiction" and " Fiction" are distinct sets.
type Set struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// BookIDs lists member books, when loaded.
	BookIDs []string `json:"book_ids,omitempty"`
	// BookCount is the member count, populated by list queries.
	BookCount int `json:"book_count"`
}

// Touch updates the UpdatedAt timestamp.
func (s *Set) Touch() {
	s.UpdatedAt = time.Now()
}

// setTitlePattern matches one brace-delimited tag token, non-greedy so
// multiple tokens in one string each match separately.
var setTitlePattern = regexp.MustCompile(`\{(.+?)\}`)

// ParseSetTitles extracts set titles from a raw tag string.
//
// Token text is whatever lies between each { and } pair, taken verbatim,
// whitespace included. An empty or token-free input yields nil. Duplicate
// tokens are returned as-is; reconciliation treats them idempotently.
func ParseSetTitles(raw string) []string {
	matches := setTitlePattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}

	titles := make([]string, 0, len(matches))
	for _, m := range matches {
		titles = append(titles, m[1])
	}
	return titles
}
