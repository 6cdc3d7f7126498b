package usecase_recognition

import (
	"regexp"
	"strings"

	"github.com/humanbelnik/singalong/core/internal/model"
)

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	bracketChars  = regexp.MustCompile(`[()\[\]]`)
	collaboration = regexp.MustCompile(`,|&|/|\bfeat\b\.?|\bwith\b`)
)

// Match reports whether a candidate (title, performer) answers the keyword.
func Match(kw model.Keyword, title, performer string) bool {
	name := strings.TrimSpace(kw.Name)
	if name == "" {
		return false
	}

	if kw.ByTitle() {
		return title != "" && strings.Contains(strings.ToLower(title), strings.ToLower(name))
	}

	if performer == "" {
		return false
	}
	if strings.EqualFold(performer, name) {
		return true
	}
	if p := NormalizePerformer(performer); p != "" && p == NormalizePerformer(name) {
		return true
	}
	lowered := strings.ToLower(performer)
	for _, alias := range kw.Aliases {
		if alias = strings.TrimSpace(alias); alias != "" && strings.Contains(lowered, strings.ToLower(alias)) {
			return true
		}
	}
	return false
}

// NormalizePerformer lowercases, drops parenthesized parts and cuts at the first collaboration separator.
// "RED VELVET (레드벨벳)" and "Red Velvet feat. X" both become "red velvet".
func NormalizePerformer(s string) string {
	s = strings.ToLower(s)
	s = parenthetical.ReplaceAllString(s, " ")
	s = bracketChars.ReplaceAllString(s, " ")
	if loc := collaboration.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.Join(strings.Fields(s), " ")
}
