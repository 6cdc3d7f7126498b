package keyword_variant

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/humanbelnik/singalong/core/internal/model"
)

// Variants lists the normalized renderings of a keyword that a transcript may contain:
// the name, aliases, their initials, single vowel swaps and the words of multi-word names.
func Variants(kw model.Keyword) []string {
	names := make([]string, 0, len(kw.Aliases)+1)
	for _, n := range append([]string{kw.Name}, kw.Aliases...) {
		if n = Normalize(n); n != "" {
			names = append(names, n)
		}
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(names)*4)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	for _, n := range names {
		add(n)
	}
	for _, n := range names {
		if ini := Initials(n); utf8.RuneCountInString(ini) >= 2 {
			add(ini)
		}
		for _, v := range VowelSwaps(n) {
			add(v)
		}
		if words := strings.Fields(n); len(words) > 1 {
			add(strings.Join(words, ""))
			for _, w := range words {
				if utf8.RuneCountInString(w) >= 2 {
					add(w)
				}
			}
		}
	}
	return out
}

// Initials renders Hangul syllables as their leading consonants and other words as their first letter.
// "윤미래" becomes "ㅇㅁㄹ", "red velvet" becomes "rv".
func Initials(s string) string {
	var b strings.Builder
	for _, word := range strings.Fields(s) {
		first, _ := utf8.DecodeRuneInString(word)
		if !isSyllable(first) {
			if unicode.IsLetter(first) || unicode.IsDigit(first) {
				b.WriteRune(unicode.ToLower(first))
			}
			continue
		}
		for _, r := range word {
			if isSyllable(r) {
				cho, _, _ := decompose(r)
				b.WriteRune(choseong[cho])
			}
		}
	}
	return b.String()
}

// VowelSwaps returns every rendering of s with exactly one syllable's vowel replaced by a confusable one.
func VowelSwaps(s string) []string {
	runes := []rune(s)
	var out []string
	for i, r := range runes {
		if !isSyllable(r) {
			continue
		}
		cho, jung, jong := decompose(r)
		for _, alt := range vowelSwaps[jung] {
			swapped := make([]rune, len(runes))
			copy(swapped, runes)
			swapped[i] = compose(cho, alt, jong)
			out = append(out, string(swapped))
		}
	}
	return out
}
