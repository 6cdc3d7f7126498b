package keyword_variant

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Trailing particles and endings, longest first.
var suffixes = []string{
	"입니다", "이에요", "에서는", "에게서",
	"에서", "에게", "으로", "이야", "이랑", "처럼", "까지", "부터", "에요", "예요", "하고", "한테",
	"랑", "은", "는", "이", "가", "을", "를", "의", "에", "로", "와", "과", "도", "만", "야", "아",
}

const minStemRunes = 2

// Normalize composes Hangul, lowercases and replaces everything but letters and digits with single spaces.
func Normalize(s string) string {
	s = strings.ToLower(norm.NFC.String(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

// StripSuffix removes one trailing grammatical suffix from a Hangul token.
// The remaining stem is never shorter than two runes.
func StripSuffix(token string) string {
	last, _ := utf8.DecodeLastRuneInString(token)
	if !isSyllable(last) {
		return token
	}
	for _, sfx := range suffixes {
		if !strings.HasSuffix(token, sfx) {
			continue
		}
		stem := strings.TrimSuffix(token, sfx)
		if utf8.RuneCountInString(stem) >= minStemRunes {
			return stem
		}
	}
	return token
}
