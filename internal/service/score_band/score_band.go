package score_band

import (
	"math"
	"sync"
)

// Noise is the random source of score jitter. *rand.Rand satisfies it.
type Noise interface {
	Intn(n int) int
}

// Band is an inclusive score range.
type Band struct {
	Floor   int
	Ceiling int
}

var (
	FingerprintBand = Band{Floor: 60, Ceiling: 100}
	TranscriptBand  = Band{Floor: 20, Ceiling: 59}
)

// Score maps a confidence in [0, 1] into the band and applies offset without leaving it.
func (b Band) Score(confidence float64, offset int) int {
	confidence = math.Max(0, math.Min(1, confidence))
	base := b.Floor + int(math.Round(confidence*float64(b.Ceiling-b.Floor)))
	return min(b.Ceiling, max(b.Floor, base+offset))
}

type Scorer struct {
	fingerprint Band
	transcript  Band
	jitter      int

	mu    sync.Mutex
	noise Noise
}

func New(noise Noise, jitter int) *Scorer {
	if jitter < 0 {
		jitter = 0
	}
	return &Scorer{
		fingerprint: FingerprintBand,
		transcript:  TranscriptBand,
		jitter:      jitter,
		noise:       noise,
	}
}

func (s *Scorer) Fingerprint(confidence float64) int {
	return s.fingerprint.Score(confidence, s.offset())
}

func (s *Scorer) Transcript(confidence float64) int {
	return s.transcript.Score(confidence, s.offset())
}

func (s *Scorer) offset() int {
	if s.jitter == 0 || s.noise == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noise.Intn(2*s.jitter+1) - s.jitter
}
