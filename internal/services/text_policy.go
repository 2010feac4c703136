package services

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var plainTextPolicy = bluemonday.StrictPolicy()

// StripMarkup removes every HTML element from free text and returns the
// trimmed plain text.
func StripMarkup(raw string) string {
	return strings.TrimSpace(html.UnescapeString(plainTextPolicy.Sanitize(raw)))
}

func runeLength(value string) int {
	return utf8.RuneCountInString(value)
}
