package geocode

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	parenRe = regexp.MustCompile(`\(.*?\)`)
	allowRe = regexp.MustCompile(`[^a-zA-Z0-9가-힣\s\-,]`)
)

// DefaultSubstitutions returns the known-typo corrections applied before
// any other cleanup. Keys are exact substrings as they appear in the source
// spreadsheets.
func DefaultSubstitutions() map[string]string {
	return map[string]string{
		"청게천":   "청계천",
		"을지로지하": "을지로 지하",
	}
}

// Normalizer canonicalizes raw address strings. It is pure and safe for
// concurrent use.
type Normalizer struct {
	replacer *strings.Replacer
}

// NewNormalizer builds a Normalizer with the given substitution table.
// A nil table falls back to DefaultSubstitutions.
func NewNormalizer(substitutions map[string]string) *Normalizer {
	if substitutions == nil {
		substitutions = DefaultSubstitutions()
	}
	pairs := make([]string, 0, len(substitutions)*2)
	for from, to := range substitutions {
		pairs = append(pairs, from, to)
	}
	return &Normalizer{replacer: strings.NewReplacer(pairs...)}
}

// Normalize cleans a raw address: NFC-folds mixed jamo, corrects known
// typos, drops parenthesized segments, strips everything outside the
// letters/digits/Hangul/whitespace/hyphen/comma allow-set, and collapses
// whitespace. Returns "" for inputs that are empty or placeholder values;
// callers treat "" as unresolvable and skip tiering.
func (n *Normalizer) Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "nan" || s == "None" {
		return ""
	}

	s = norm.NFC.String(s)
	s = n.replacer.Replace(s)
	s = parenRe.ReplaceAllString(s, "")
	s = allowRe.ReplaceAllString(s, "")

	return strings.Join(strings.Fields(s), " ")
}
