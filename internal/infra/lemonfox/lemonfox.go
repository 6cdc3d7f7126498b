package infra_lemonfox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/humanbelnik/singalong/core/internal/config"
)

var (
	ErrDisabled = errors.New("lemonfox api key is not configured")
	ErrUpstream = errors.New("lemonfox request failed")
)

type Client struct {
	url      string
	apiKey   string
	language string
	http     *http.Client
}

func New(cfg config.LemonFox) *Client {
	return &Client{
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends a 16 kHz mono WAV to the whisper-compatible endpoint.
func (c *Client) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if c.apiKey == "" {
		return "", ErrDisabled
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if c.language != "" {
		if err := w.WriteField("language", c.language); err != nil {
			return "", fmt.Errorf("%w: %w", ErrUpstream, err)
		}
	}
	if err := w.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return strings.TrimSpace(out.Text), nil
}
