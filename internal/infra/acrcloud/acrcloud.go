package infra_acrcloud

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/humanbelnik/singalong/core/internal/config"
	"github.com/humanbelnik/singalong/core/internal/model"
)

const (
	identifyURI      = "/v1/identify"
	dataType         = "audio"
	signatureVersion = "1"

	statusSuccess  = 0
	statusNoResult = 1001
)

var (
	ErrDisabled = errors.New("acrcloud credentials are not configured")
	ErrUpstream = errors.New("acrcloud request failed")
)

type Client struct {
	baseURL   string
	accessKey string
	secret    string
	http      *http.Client
	now       func() time.Time
}

// New builds a client for cfg.Host. A host without scheme is called over https.
func New(cfg config.ACRCloud) *Client {
	base := cfg.Host
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &Client{
		baseURL:   strings.TrimSuffix(base, "/"),
		accessKey: cfg.AccessKey,
		secret:    cfg.Secret,
		http:      &http.Client{Timeout: cfg.Timeout},
		now:       time.Now,
	}
}

type artist struct {
	Name string `json:"name"`
}

type track struct {
	Title   string   `json:"title"`
	Artists []artist `json:"artists"`
	Score   float64  `json:"score"`
}

type identifyResponse struct {
	Status struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"status"`
	Metadata struct {
		Humming []track `json:"humming"`
		Music   []track `json:"music"`
	} `json:"metadata"`
}

// Identify returns humming matches first, then exact music matches, in service rank order.
func (c *Client) Identify(ctx context.Context, wav []byte) ([]model.Candidate, error) {
	if c.accessKey == "" || c.secret == "" {
		return nil, ErrDisabled
	}

	ts := strconv.FormatInt(c.now().Unix(), 10)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"access_key", c.accessKey},
		{"data_type", dataType},
		{"signature_version", signatureVersion},
		{"signature", Sign(c.secret, c.accessKey, ts)},
		{"sample_bytes", strconv.Itoa(len(wav))},
		{"timestamp", ts},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
	}
	part, err := w.CreateFormFile("sample", "sample.wav")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if _, err := part.Write(wav); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+identifyURI, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out identifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	switch out.Status.Code {
	case statusSuccess:
	case statusNoResult:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: code %d %s", ErrUpstream, out.Status.Code, out.Status.Msg)
	}

	tracks := append(out.Metadata.Humming, out.Metadata.Music...)
	candidates := make([]model.Candidate, 0, len(tracks))
	for _, t := range tracks {
		var performer string
		if len(t.Artists) > 0 {
			performer = t.Artists[0].Name
		}
		candidates = append(candidates, model.Candidate{
			Title:      t.Title,
			Performer:  performer,
			Confidence: normalizeScore(t.Score),
		})
	}
	return candidates, nil
}

// Sign is the v1 request signature: base64(HMAC-SHA1(secret, method\nuri\nkey\ntype\nversion\ntimestamp)).
func Sign(secret, accessKey, timestamp string) string {
	payload := strings.Join([]string{http.MethodPost, identifyURI, accessKey, dataType, signatureVersion, timestamp}, "\n")
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// The service reports humming scores either as a fraction or as a percentage.
func normalizeScore(score float64) float64 {
	if score > 1 {
		score /= 100
	}
	return max(0, min(1, score))
}
