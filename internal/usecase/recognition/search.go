package usecase_recognition

import (
	"regexp"
	"strings"

	"github.com/humanbelnik/singalong/core/internal/model"
)

var (
	lyricsTail  = regexp.MustCompile(`(?i)(가사|lyrics|official).*$`)
	storeTail   = regexp.MustCompile(`(?i)\s*[-–—/]\s*(벅스|bugs|지니|genie|멜론|melon|vibe).*$`)
	parenPair   = regexp.MustCompile(`^(.+?)\s*\(\s*([^)]+?)\s*\)$`)
	separators  = []string{" - ", " – ", " — ", " / ", "/"}
	panelTypes  = map[string]struct{}{"song": {}, "single": {}}
	maxQueryLen = 100
)

const querySuffix = " 가사"

// searchQuery builds the lyrics query, or "" when the search should be skipped.
func searchQuery(cleaned string) string {
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}
	if r := []rune(cleaned); len(r) > maxQueryLen {
		cleaned = strings.TrimSpace(string(r[:maxQueryLen]))
	}
	return cleaned + querySuffix
}

// pickSong extracts (title, performer) preferring the knowledge panel over organic result titles.
func pickSong(res model.SearchResult, domains []string) (title, performer string) {
	if p := res.Panel; p != nil {
		if _, ok := panelTypes[strings.ToLower(p.Type)]; ok {
			title, performer = p.Title, p.Performer
		}
	}
	if title != "" && performer != "" {
		return title, performer
	}

	for _, it := range boostOfficial(res.Organic, domains) {
		t, a, ok := parseResultTitle(it.Title)
		if !ok {
			continue
		}
		if title == "" {
			title = t
		}
		if performer == "" {
			performer = a
		}
		break
	}
	return title, performer
}

// parseResultTitle splits a search result title like "곡명 - 가수 가사" into its parts.
func parseResultTitle(raw string) (title, performer string, ok bool) {
	raw = strings.TrimSpace(lyricsTail.ReplaceAllString(raw, ""))
	raw = strings.TrimSpace(storeTail.ReplaceAllString(raw, ""))

	for _, sep := range separators {
		if left, right, found := strings.Cut(raw, sep); found {
			left, right = strings.TrimSpace(left), strings.TrimSpace(right)
			if left != "" && right != "" {
				return left, right, true
			}
		}
	}

	if m := parenPair.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	return "", "", false
}

func boostOfficial(items []model.OrganicResult, domains []string) []model.OrganicResult {
	out := make([]model.OrganicResult, 0, len(items))
	var rest []model.OrganicResult
	for _, it := range items {
		if isOfficial(it.Link, domains) {
			out = append(out, it)
		} else {
			rest = append(rest, it)
		}
	}
	return append(out, rest...)
}

// officialLinks returns organic links on allow-listed catalog domains in result order.
func officialLinks(items []model.OrganicResult, domains []string) []string {
	var links []string
	for _, it := range items {
		if isOfficial(it.Link, domains) {
			links = append(links, it.Link)
		}
	}
	return links
}

func isOfficial(link string, domains []string) bool {
	for _, d := range domains {
		if d != "" && strings.Contains(link, d) {
			return true
		}
	}
	return false
}
