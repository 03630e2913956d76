package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var reKeywordSep = regexp.MustCompile(`\s*,\s*`)

// decomposeStrip returns a fresh transformer; transform.Chain keeps state and
// must not be shared.
func decomposeStrip() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
}

// StripDiacritics applies canonical decomposition and drops combining marks.
// The result is left decomposed.
func StripDiacritics(input string) string {
	out, _, err := transform.String(decomposeStrip(), input)
	if err != nil {
		return norm.NFD.String(input)
	}
	return out
}

// SplitKeywords splits a comma delimited facet list. Inner empty entries are
// kept, trailing empty entries are dropped.
func SplitKeywords(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := reKeywordSep.Split(input, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
