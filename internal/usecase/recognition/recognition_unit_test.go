package usecase_recognition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/humanbelnik/singalong/core/internal/model"
	"github.com/humanbelnik/singalong/core/internal/service/score_band"
	artwork_mocks "github.com/humanbelnik/singalong/core/internal/usecase/recognition/mocks/artwork"
	converter_mocks "github.com/humanbelnik/singalong/core/internal/usecase/recognition/mocks/converter"
	fingerprinter_mocks "github.com/humanbelnik/singalong/core/internal/usecase/recognition/mocks/fingerprinter"
	searcher_mocks "github.com/humanbelnik/singalong/core/internal/usecase/recognition/mocks/searcher"
	transcriber_mocks "github.com/humanbelnik/singalong/core/internal/usecase/recognition/mocks/transcriber"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UsecaseRecognitionUnitSuite struct {
	suite.Suite
}

var officialDomains = []string{"music.bugs.co.kr", "www.genie.co.kr"}

type resources struct {
	usecase       *Usecase
	fingerprinter *fingerprinter_mocks.Fingerprinter
	transcriber   *transcriber_mocks.Transcriber
	searcher      *searcher_mocks.Searcher
	artwork       *artwork_mocks.ArtworkFetcher
	converter     *converter_mocks.Converter
	scorer        *score_band.Scorer
	ctx           context.Context
}

func initResources(t provider.T) *resources {
	r := &resources{
		fingerprinter: fingerprinter_mocks.NewFingerprinter(t),
		transcriber:   transcriber_mocks.NewTranscriber(t),
		searcher:      searcher_mocks.NewSearcher(t),
		artwork:       artwork_mocks.NewArtworkFetcher(t),
		converter:     converter_mocks.NewConverter(t),
		scorer:        score_band.New(nil, 0),
		ctx:           context.Background(),
	}
	r.usecase = New(r.fingerprinter, r.transcriber, r.searcher, r.artwork, r.converter, r.scorer, officialDomains)

	r.converter.On("Convert", mock.Anything, validRecording(), fingerprintSampleRate).Return(humWAV(), nil).Maybe()
	r.converter.On("Convert", mock.Anything, validRecording(), transcriptionSampleRate).Return(sttWAV(), nil).Maybe()
	return r
}

func validRecording() []byte { return []byte("raw-webm") }
func humWAV() []byte         { return []byte("wav-8k") }
func sttWAV() []byte         { return []byte("wav-16k") }

func redVelvet() model.Keyword {
	return model.Keyword{Type: model.KeywordByPerformer, Name: "Red Velvet", Aliases: []string{"레드벨벳"}}
}

func (s *UsecaseRecognitionUnitSuite) TestResolve(t provider.T) {
	t.Parallel()

	t.Run("Should prefer the first matching fingerprint candidate", func(t provider.T) {
		t.Parallel()
		r := initResources(t)

		r.fingerprinter.On("Identify", mock.Anything, humWAV()).Return([]model.Candidate{
			{Title: "Next Level", Performer: "aespa", Confidence: 0.9},
			{Title: "빨간 맛", Performer: "Red Velvet", Confidence: 0.5},
			{Title: "Psycho", Performer: "Red Velvet", Confidence: 0.4},
		}, nil).Once()
		r.transcriber.On("Transcribe", mock.Anything, sttWAV()).Return("레드벨벳의 빨간 맛", nil).Once()
		r.searcher.On("Search", mock.Anything, "빨간 맛 가사").Return(model.SearchResult{
			Organic: []model.OrganicResult{
				{Title: "random blog", Link: "https://blog.example.com/x"},
				{Title: "빨간 맛 - Red Velvet 가사", Link: "https://music.bugs.co.kr/track/1"},
			},
		}, nil).Once()
		r.artwork.On("Fetch", mock.Anything, "https://music.bugs.co.kr/track/1").Return("https://image.bugs.co.kr/1.jpg", nil).Once()

		v := r.usecase.Resolve(r.ctx, validRecording(), redVelvet())

		assert.True(t, v.Matched)
		assert.Equal(t, model.SourceFingerprint, v.Source)
		assert.Equal(t, "빨간 맛", v.Title)
		assert.Equal(t, 80, v.Score)
		assert.Equal(t, "https://image.bugs.co.kr/1.jpg", v.Artwork)
	})

	t.Run("Should fall back to transcript search with a lower score", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		transcript := "빨간 맛 궁금해 허니"

		r.fingerprinter.On("Identify", mock.Anything, humWAV()).Return(nil, errors.New("acr down")).Once()
		r.transcriber.On("Transcribe", mock.Anything, sttWAV()).Return(transcript, nil).Once()
		r.searcher.On("Search", mock.Anything, transcript+" 가사").Return(model.SearchResult{
			Panel: &model.KnowledgePanel{Type: "Song", Title: "빨간 맛", Performer: "Red Velvet"},
		}, nil).Once()

		v := r.usecase.Resolve(r.ctx, validRecording(), redVelvet())

		assert.True(t, v.Matched)
		assert.Equal(t, model.SourceTranscript, v.Source)
		assert.Equal(t, "Red Velvet", v.Performer)
		assert.Equal(t, r.scorer.Transcript(TranscriptConfidence(transcript, "빨간 맛", "Red Velvet")), v.Score)
		assert.Less(t, v.Score, score_band.FingerprintBand.Floor)
		assert.Empty(t, v.Artwork)
	})

	t.Run("Should return unmatched when every signal fails", func(t provider.T) {
		t.Parallel()
		r := initResources(t)

		r.fingerprinter.On("Identify", mock.Anything, humWAV()).Return(nil, errors.New("acr down")).Once()
		r.transcriber.On("Transcribe", mock.Anything, sttWAV()).Return("", errors.New("stt down")).Once()

		v := r.usecase.Resolve(r.ctx, validRecording(), redVelvet())

		assert.Equal(t, model.UnmatchedVerdict(), v)
		r.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("Should skip search when only the name was sung", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		kw := model.Keyword{Type: model.KeywordByPerformer, Name: "윤미래"}

		r.fingerprinter.On("Identify", mock.Anything, humWAV()).Return([]model.Candidate{}, nil).Once()
		r.transcriber.On("Transcribe", mock.Anything, sttWAV()).Return("윤미래가 윤미레", nil).Once()

		v := r.usecase.Resolve(r.ctx, validRecording(), kw)

		assert.False(t, v.Matched)
		assert.Equal(t, 0, v.Score)
		r.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("Should search the raw transcript for title keywords", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		kw := model.Keyword{Type: model.KeywordByTitle, Name: "봄날"}

		r.fingerprinter.On("Identify", mock.Anything, humWAV()).Return(nil, nil).Once()
		r.transcriber.On("Transcribe", mock.Anything, sttWAV()).Return(" 보고 싶다 이렇게 말하니까 ", nil).Once()
		r.searcher.On("Search", mock.Anything, "보고 싶다 이렇게 말하니까 가사").Return(model.SearchResult{
			Organic: []model.OrganicResult{{Title: "봄날 - 방탄소년단 가사", Link: "https://www.genie.co.kr/a"}},
		}, nil).Once()
		r.artwork.On("Fetch", mock.Anything, "https://www.genie.co.kr/a").Return("", errors.New("timeout")).Once()

		v := r.usecase.Resolve(r.ctx, validRecording(), kw)

		assert.True(t, v.Matched)
		assert.Equal(t, model.SourceTranscript, v.Source)
		assert.Equal(t, "봄날", v.Title)
		assert.Equal(t, "방탄소년단", v.Performer)
		assert.Empty(t, v.Artwork)
	})
}

func (s *UsecaseRecognitionUnitSuite) TestHandle(t provider.T) {
	t.Parallel()

	t.Run("Should deliver the verdict through Wait", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.fingerprinter.On("Identify", mock.Anything, humWAV()).Return([]model.Candidate{
			{Title: "Psycho", Performer: "Red Velvet", Confidence: 1},
		}, nil).Once()
		r.transcriber.On("Transcribe", mock.Anything, sttWAV()).Return("", nil).Once()

		h := r.usecase.Start(r.ctx, validRecording(), redVelvet())
		v, err := h.Wait(r.ctx)

		assert.NoError(t, err)
		assert.Equal(t, 100, v.Score)
	})

	t.Run("Should report a missed deadline", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.fingerprinter.On("Identify", mock.Anything, humWAV()).Return(nil, nil).Once()
		r.transcriber.On("Transcribe", mock.Anything, sttWAV()).After(200*time.Millisecond).Return("빨간 맛", nil).Once()

		h := r.usecase.Start(r.ctx, validRecording(), redVelvet())

		ctx, cancel := context.WithTimeout(r.ctx, 20*time.Millisecond)
		defer cancel()
		v, err := h.Wait(ctx)

		assert.ErrorIs(t, err, ErrDeadlineMissed)
		assert.Equal(t, model.UnmatchedVerdict(), v)

		h.Cancel()
		v, err = h.Wait(r.ctx)
		assert.NoError(t, err)
		assert.False(t, v.Matched, "cancelled computation never searches")
		r.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})
}

func (s *UsecaseRecognitionUnitSuite) TestTranscriptConfidence(t provider.T) {
	t.Parallel()

	assert.Equal(t, 0.0, TranscriptConfidence("", "a", "b"))
	assert.InDelta(t, 1.0, TranscriptConfidence("psycho", "psycho", "psycho"), 1e-9)

	c := TranscriptConfidence("빨간 맛 레드벨벳", "빨간 맛", "Red Velvet")
	assert.Greater(t, c, 0.2)
	assert.Less(t, c, 1.0)
}

func TestUsecaseRecognitionUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseRecognitionUnitSuite))
}
