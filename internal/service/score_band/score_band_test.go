package score_band

import (
	"math/rand"
	"testing"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type ScoreBandSuite struct {
	suite.Suite
}

// fixedNoise always draws the same value.
type fixedNoise int

func (n fixedNoise) Intn(int) int { return int(n) }

func (s *ScoreBandSuite) TestBandScore(t provider.T) {
	t.Parallel()

	band := Band{Floor: 60, Ceiling: 100}

	assert.Equal(t, 60, band.Score(0, 0))
	assert.Equal(t, 80, band.Score(0.5, 0))
	assert.Equal(t, 100, band.Score(1, 0))
	assert.Equal(t, 100, band.Score(1, 5), "offset never crosses the ceiling")
	assert.Equal(t, 60, band.Score(0, -5), "offset never crosses the floor")
	assert.Equal(t, 100, band.Score(3, 0), "confidence is clamped")
}

func (s *ScoreBandSuite) TestDisjointBands(t provider.T) {
	t.Parallel()

	t.Run("Should rank transcript below fingerprint for equal confidence", func(t provider.T) {
		// worst case: transcript jitters up, fingerprint jitters down
		up := New(fixedNoise(10), 5)
		down := New(fixedNoise(0), 5)

		for i := 0; i <= 100; i++ {
			confidence := float64(i) / 100
			assert.Less(t, up.Transcript(confidence), down.Fingerprint(confidence))
		}
	})

	t.Run("Should stay inside bands with random noise", func(t provider.T) {
		scorer := New(rand.New(rand.NewSource(42)), 5)

		for i := 0; i < 1000; i++ {
			confidence := float64(i%101) / 100
			fp := scorer.Fingerprint(confidence)
			tr := scorer.Transcript(confidence)

			assert.GreaterOrEqual(t, fp, FingerprintBand.Floor)
			assert.LessOrEqual(t, fp, FingerprintBand.Ceiling)
			assert.GreaterOrEqual(t, tr, TranscriptBand.Floor)
			assert.LessOrEqual(t, tr, TranscriptBand.Ceiling)
		}
	})
}

func (s *ScoreBandSuite) TestDeterministicWithoutNoise(t provider.T) {
	t.Parallel()

	scorer := New(nil, 5)

	assert.Equal(t, 80, scorer.Fingerprint(0.5))
	assert.Equal(t, 40, scorer.Transcript(0.5))
}

func TestScoreBandSuite(t *testing.T) {
	suite.RunSuite(t, new(ScoreBandSuite))
}
