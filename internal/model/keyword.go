package model

import "strings"

type KeywordType string

const (
	KeywordByTitle     KeywordType = "title"
	KeywordByPerformer KeywordType = "artist"
)

// ParseKeywordType accepts both the english and the korean spelling used in keyword datasets.
// Anything that is not a title keyword is treated as a performer keyword.
func ParseKeywordType(raw string) KeywordType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "title", "제목":
		return KeywordByTitle
	default:
		return KeywordByPerformer
	}
}

type Keyword struct {
	Type    KeywordType `json:"type"`
	Name    string      `json:"name"`
	Aliases []string    `json:"alias"`
}

func (k Keyword) ByTitle() bool {
	return k.Type == KeywordByTitle
}
