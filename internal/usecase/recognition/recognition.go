package usecase_recognition

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/humanbelnik/singalong/core/internal/model"
	"github.com/humanbelnik/singalong/core/internal/service/keyword_variant"
)

const (
	fingerprintSampleRate   = 8000
	transcriptionSampleRate = 16000
	maxArtworkAttempts      = 3
)

var ErrDeadlineMissed = errors.New("recognition missed its deadline")

//go:generate mockery --name=Fingerprinter --output=./mocks/fingerprinter --filename=fingerprinter.go
type Fingerprinter interface {
	Identify(ctx context.Context, wav []byte) ([]model.Candidate, error)
}

//go:generate mockery --name=Transcriber --output=./mocks/transcriber --filename=transcriber.go
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

//go:generate mockery --name=Searcher --output=./mocks/searcher --filename=searcher.go
type Searcher interface {
	Search(ctx context.Context, query string) (model.SearchResult, error)
}

//go:generate mockery --name=ArtworkFetcher --output=./mocks/artwork --filename=artwork.go
type ArtworkFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

//go:generate mockery --name=Converter --output=./mocks/converter --filename=converter.go
type Converter interface {
	Convert(ctx context.Context, raw []byte, sampleRate int) ([]byte, error)
}

type Scorer interface {
	Fingerprint(confidence float64) int
	Transcript(confidence float64) int
}

type Usecase struct {
	Fingerprinter Fingerprinter
	Transcriber   Transcriber
	Searcher      Searcher
	Artwork       ArtworkFetcher
	Converter     Converter
	Scorer        Scorer

	officialDomains []string
	// Upper bound for a detached computation nobody cancels.
	maxLifetime time.Duration
	logger      *slog.Logger
}

func New(
	fingerprinter Fingerprinter,
	transcriber Transcriber,
	searcher Searcher,
	artwork ArtworkFetcher,
	converter Converter,
	scorer Scorer,
	officialDomains []string,
) *Usecase {
	return &Usecase{
		Fingerprinter:   fingerprinter,
		Transcriber:     transcriber,
		Searcher:        searcher,
		Artwork:         artwork,
		Converter:       converter,
		Scorer:          scorer,
		officialDomains: officialDomains,
		maxLifetime:     time.Minute,
		logger:          slog.Default(),
	}
}

// Handle is a recognition running in the background.
type Handle struct {
	cancel  context.CancelFunc
	done    chan struct{}
	verdict model.Verdict
}

// Wait returns the verdict, or an unmatched verdict with an error when ctx ends first.
func (h *Handle) Wait(ctx context.Context) (model.Verdict, error) {
	select {
	case <-h.done:
		return h.verdict, nil
	case <-ctx.Done():
		return model.UnmatchedVerdict(), errors.Join(ErrDeadlineMissed, ctx.Err())
	}
}

func (h *Handle) Cancel() {
	h.cancel()
}

// Start launches Resolve detached from ctx cancellation. The caller owns the deadline through Wait and Cancel.
func (u *Usecase) Start(ctx context.Context, raw []byte, kw model.Keyword) *Handle {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.maxLifetime)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer cancel()
		h.verdict = u.Resolve(runCtx, raw, kw)
		close(h.done)
	}()
	return h
}

// Resolve never fails: every unavailable signal just stops contributing evidence.
func (u *Usecase) Resolve(ctx context.Context, raw []byte, kw model.Keyword) model.Verdict {
	var (
		wg         sync.WaitGroup
		candidates []model.Candidate
		transcript string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		candidates = u.identify(ctx, raw)
	}()
	go func() {
		defer wg.Done()
		transcript = u.transcribe(ctx, raw)
	}()
	wg.Wait()

	if ctx.Err() != nil {
		return model.UnmatchedVerdict()
	}

	title, performer, artwork := u.search(ctx, u.queryFor(transcript, kw))

	for _, c := range candidates {
		if Match(kw, c.Title, c.Performer) {
			return model.Verdict{
				Matched:   true,
				Title:     c.Title,
				Performer: c.Performer,
				Score:     u.Scorer.Fingerprint(c.Confidence),
				Source:    model.SourceFingerprint,
				Artwork:   artwork,
			}
		}
	}

	if title != "" && performer != "" && Match(kw, title, performer) {
		return model.Verdict{
			Matched:   true,
			Title:     title,
			Performer: performer,
			Score:     u.Scorer.Transcript(TranscriptConfidence(transcript, title, performer)),
			Source:    model.SourceTranscript,
			Artwork:   artwork,
		}
	}

	return model.UnmatchedVerdict()
}

// TranscriptConfidence weighs literal mentions and edit similarity of the transcript to the found song, in [0, 1].
func TranscriptConfidence(transcript, title, performer string) float64 {
	if transcript == "" {
		return 0
	}
	lowered := strings.ToLower(transcript)
	titleIn := boolWeight(strings.Contains(lowered, strings.ToLower(title)))
	performerIn := boolWeight(strings.Contains(lowered, strings.ToLower(performer)))
	titleSim := float64(keyword_variant.Similarity(transcript, title)) / 100
	performerSim := float64(keyword_variant.Similarity(transcript, performer)) / 100

	return 0.2*titleIn + 0.2*performerIn + 0.6*(0.5*titleSim+0.5*performerSim)
}

func (u *Usecase) queryFor(transcript string, kw model.Keyword) string {
	if transcript == "" {
		return ""
	}
	if kw.ByTitle() {
		return searchQuery(transcript)
	}
	return searchQuery(keyword_variant.Clean(transcript, keyword_variant.Variants(kw)))
}

func (u *Usecase) identify(ctx context.Context, raw []byte) []model.Candidate {
	if u.Fingerprinter == nil {
		return nil
	}
	wav, err := u.convert(ctx, raw, fingerprintSampleRate)
	if err != nil {
		u.logger.Warn("fingerprint conversion failed", "error", err)
		return nil
	}
	candidates, err := u.Fingerprinter.Identify(ctx, wav)
	if err != nil {
		u.logger.Warn("fingerprint unavailable", "error", err)
		return nil
	}
	return candidates
}

func (u *Usecase) transcribe(ctx context.Context, raw []byte) string {
	if u.Transcriber == nil {
		return ""
	}
	wav, err := u.convert(ctx, raw, transcriptionSampleRate)
	if err != nil {
		u.logger.Warn("transcription conversion failed", "error", err)
		return ""
	}
	text, err := u.Transcriber.Transcribe(ctx, wav)
	if err != nil {
		u.logger.Warn("transcription unavailable", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

func (u *Usecase) search(ctx context.Context, query string) (title, performer, artwork string) {
	if query == "" || u.Searcher == nil {
		return "", "", ""
	}
	res, err := u.Searcher.Search(ctx, query)
	if err != nil {
		u.logger.Warn("search unavailable", "error", err)
		return "", "", ""
	}
	title, performer = pickSong(res, u.officialDomains)
	return title, performer, u.fetchArtwork(ctx, res)
}

func (u *Usecase) fetchArtwork(ctx context.Context, res model.SearchResult) string {
	if u.Artwork == nil {
		return ""
	}
	for i, link := range officialLinks(res.Organic, u.officialDomains) {
		if i == maxArtworkAttempts {
			break
		}
		img, err := u.Artwork.Fetch(ctx, link)
		if err != nil {
			u.logger.Debug("artwork fetch failed", "link", link, "error", err)
			continue
		}
		if img != "" {
			return img
		}
	}
	return ""
}

func (u *Usecase) convert(ctx context.Context, raw []byte, sampleRate int) ([]byte, error) {
	if u.Converter == nil {
		return raw, nil
	}
	return u.Converter.Convert(ctx, raw, sampleRate)
}

func boolWeight(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
