package model

type Source string

const (
	SourceNone        Source = "none"
	SourceFingerprint Source = "fingerprint"
	SourceTranscript  Source = "transcript"
)

type Verdict struct {
	Matched   bool   `json:"matched"`
	Title     string `json:"title,omitempty"`
	Performer string `json:"artist,omitempty"`
	Score     int    `json:"score"`
	Source    Source `json:"source"`
	Artwork   string `json:"image,omitempty"`
}

func UnmatchedVerdict() Verdict {
	return Verdict{Source: SourceNone}
}

// Candidate is one ranked answer of the fingerprint service. Confidence is in [0, 1].
type Candidate struct {
	Title      string
	Performer  string
	Confidence float64
}

type KnowledgePanel struct {
	Type      string
	Title     string
	Performer string
}

type OrganicResult struct {
	Title string
	Link  string
}

type SearchResult struct {
	Panel   *KnowledgePanel
	Organic []OrganicResult
}
