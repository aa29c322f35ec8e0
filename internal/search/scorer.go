package search

import "strings"

// RelevanceScore scores text against a query, case-insensitively:
// +100 when text contains the whole query, +20 for every query word found in
// text, +50 when text starts with the query. Empty input scores 0.
func RelevanceScore(text, query string) float64 {
	if text == "" || query == "" {
		return 0
	}

	t := strings.ToLower(text)
	q := strings.ToLower(query)

	var score float64
	if strings.Contains(t, q) {
		score += 100
	}
	for _, word := range strings.Fields(q) {
		if strings.Contains(t, word) {
			score += 20
		}
	}
	if strings.HasPrefix(t, q) {
		score += 50
	}

	return score
}

// matches reports whether any of the fields contains the lower-cased query.
// The fields are joined the same way they would be displayed, so a query may
// span two adjacent fields.
func matches(lowerQuery string, fields ...string) bool {
	return strings.Contains(strings.ToLower(strings.Join(fields, " ")), lowerQuery)
}

const descriptionLimit = 150

// excerpt returns the first 150 characters followed by an ellipsis.
func excerpt(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) > descriptionLimit {
		r = r[:descriptionLimit]
	}
	return string(r) + "..."
}
