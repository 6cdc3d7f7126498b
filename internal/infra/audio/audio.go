package infra_audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/humanbelnik/singalong/core/internal/config"
)

const (
	bitDepth  = 16
	pcmFormat = 1

	// Quiet captures are boosted until their peak reaches this share of full scale.
	targetPeak = 0.9
	maxGain    = 8.0
)

var (
	ErrConvert    = errors.New("audio conversion failed")
	ErrInvalidWAV = errors.New("invalid wav data")
)

type Converter struct {
	cfg config.Audio
}

func New(cfg config.Audio) *Converter {
	return &Converter{cfg: cfg}
}

// Convert transcodes any browser capture into mono PCM16 WAV at sampleRate and normalizes quiet input.
func (c *Converter) Convert(ctx context.Context, raw []byte, sampleRate int) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok && c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	dir, err := os.MkdirTemp("", "singalong-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	defer os.RemoveAll(dir)

	converted := filepath.Join(dir, "converted.wav")
	cmd := exec.CommandContext(
		ctx,
		c.cfg.FFmpegPath,
		"-y",
		"-v", "quiet",
		"-i", "pipe:0",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		converted,
	)
	cmd.Stdin = bytes.NewReader(raw)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrConvert, ctx.Err())
		}
		return nil, fmt.Errorf("%w: ffmpeg: %v (%s)", ErrConvert, err, out)
	}

	return normalizeFile(converted, filepath.Join(dir, "normalized.wav"))
}

// Normalize rewrites a PCM WAV as PCM16 with quiet input amplified.
func Normalize(wavData []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "singalong-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.wav")
	if err := os.WriteFile(in, wavData, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	return normalizeFile(in, filepath.Join(dir, "out.wav"))
}

func normalizeFile(inPath, outPath string) ([]byte, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	defer in.Close()

	decoder := wav.NewDecoder(in)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}
	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(decoder.BitDepth)
	}

	applyGain(buf)

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	encoder := wav.NewEncoder(out, buf.Format.SampleRate, bitDepth, buf.Format.NumChannels, pcmFormat)
	if err := encoder.Write(to16Bit(buf)); err != nil {
		out.Close()
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	if err := encoder.Close(); err != nil {
		out.Close()
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	return os.ReadFile(outPath)
}

// applyGain scales samples so the peak lands near targetPeak of full scale, never attenuating.
func applyGain(buf *audio.IntBuffer) {
	full := float64(int(1)<<(uint(buf.SourceBitDepth)-1)) - 1
	peak := 0
	for _, v := range buf.Data {
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	if peak == 0 {
		return
	}

	gain := min(maxGain, targetPeak*full/float64(peak))
	if gain <= 1 {
		return
	}
	for i, v := range buf.Data {
		buf.Data[i] = int(float64(v) * gain)
	}
}

func to16Bit(buf *audio.IntBuffer) *audio.IntBuffer {
	if buf.SourceBitDepth == bitDepth {
		return buf
	}
	shift := buf.SourceBitDepth - bitDepth
	data := make([]int, len(buf.Data))
	for i, v := range buf.Data {
		if shift > 0 {
			data[i] = v >> uint(shift)
		} else {
			data[i] = v << uint(-shift)
		}
	}
	return &audio.IntBuffer{Format: buf.Format, Data: data, SourceBitDepth: bitDepth}
}
