package keyword_variant

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Threshold is the similarity at which a transcript token counts as the keyword itself.
const Threshold = 75

// Similarity is the edit similarity of a and b on a 0..100 scale, case-insensitive.
func Similarity(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (longest - dist) * 100 / longest
}

// Matches reports whether token is at least Threshold-similar to any of the variants.
func Matches(token string, variants []string) bool {
	for _, v := range variants {
		if Similarity(token, v) >= Threshold {
			return true
		}
	}
	return false
}

// Clean tokenizes a transcript, strips particles and drops tokens that look like a keyword variant.
// The result is empty when nothing but the keyword was said.
func Clean(transcript string, variants []string) string {
	tokens := Tokenize(transcript)
	kept := tokens[:0]
	for _, tok := range tokens {
		stem := StripSuffix(tok)
		if Matches(stem, variants) || Matches(tok, variants) {
			continue
		}
		kept = append(kept, stem)
	}
	return strings.Join(kept, " ")
}
