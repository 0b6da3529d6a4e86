package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold returns the comparison form of s: trimmed, accent-stripped and
// case-folded. Transformers and casers carry state, so both are built per
// call to keep fold safe for concurrent scoring.
func fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// foldAll folds every value and drops the blank ones.
func foldAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if f := fold(v); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range foldAll(values) {
		set[v] = struct{}{}
	}
	return set
}
