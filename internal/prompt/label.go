package prompt

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLabelChars is the number of characters of an idea kept in a record label.
const MaxLabelChars = 60

// DefaultLabel is used when a record would otherwise have an empty label.
const DefaultLabel = "Otomatik Kayıt"

// suggestionMarker separates the field name from the advice in a suggestion.
const suggestionMarker = "için şunu deneyin:"

// placeholderRegex matches bracketed placeholder tokens like [TARGET_AUDIENCE].
var placeholderRegex = regexp.MustCompile(`\[[A-Z][A-Z0-9_]*\]`)

// Label builds the display label of a saved record from an idea.
// Ideas longer than MaxLabelChars runes are cut and suffixed with "...".
func Label(idea string) string {
	if idea == "" {
		return DefaultLabel
	}
	if utf8.RuneCountInString(idea) <= MaxLabelChars {
		return idea
	}
	runes := []rune(idea)
	return string(runes[:MaxLabelChars]) + "..."
}

// RefinedLabel labels a record produced by a refinement: "{idea} ({label})".
func RefinedLabel(idea string, r Refinement) string {
	return Label(idea + " (" + r.Label() + ")")
}

// IsBlank reports whether an idea has no non-whitespace content.
func IsBlank(idea string) bool {
	return strings.TrimSpace(idea) == ""
}

// Placeholders returns the distinct placeholder tokens in text, in order of first appearance.
func Placeholders(text string) []string {
	matches := placeholderRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// SplitSuggestion splits "Daha iyi bir X için şunu deneyin: Y" into ("Daha iyi bir X", "Y").
// Suggestions without the marker are returned as advice with an empty field.
func SplitSuggestion(s string) (field, advice string) {
	before, after, ok := strings.Cut(s, suggestionMarker)
	if !ok {
		return "", strings.TrimSpace(s)
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
