package infra_audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWAV(t *testing.T, samples []int, sampleRate int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func readSamples(t *testing.T, data []byte) ([]int, int) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.wav")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	return buf.Data, int(dec.SampleRate)
}

func TestNormalizeBoostsQuietAudio(t *testing.T) {
	in := writeWAV(t, []int{0, 1000, -2000, 500}, 16000)

	out, err := Normalize(in)
	require.NoError(t, err)

	samples, rate := readSamples(t, out)
	assert.Equal(t, 16000, rate)
	require.Len(t, samples, 4)
	// gain capped at 8x
	assert.Equal(t, []int{0, 8000, -16000, 4000}, samples)
}

func TestNormalizeKeepsLoudAudio(t *testing.T) {
	in := writeWAV(t, []int{30000, -32000, 100}, 8000)

	out, err := Normalize(in)
	require.NoError(t, err)

	samples, _ := readSamples(t, out)
	assert.Equal(t, []int{30000, -32000, 100}, samples)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("definitely not a wav"))
	assert.ErrorIs(t, err, ErrInvalidWAV)
}

func TestApplyGain(t *testing.T) {
	buf := &audio.IntBuffer{Data: []int{0, 0}, SourceBitDepth: 16}
	applyGain(buf)
	assert.Equal(t, []int{0, 0}, buf.Data, "silence stays silent")

	buf = &audio.IntBuffer{Data: []int{10000, -5000}, SourceBitDepth: 16}
	applyGain(buf)
	assert.InDelta(t, 0.9*32767, buf.Data[0], 1)
}
