package infra_artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/humanbelnik/singalong/core/internal/config"
	"golang.org/x/net/html"
)

const (
	userAgent    = "Mozilla/5.0"
	maxPageBytes = 2 << 20
)

var (
	ErrNotFound = errors.New("page has no og:image")
	ErrFetch    = errors.New("page fetch failed")
)

type Fetcher struct {
	http *http.Client
}

func New(cfg config.Artwork) *Fetcher {
	return &Fetcher{
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch loads a catalog page and returns the absolute URL of its og:image.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	img, err := OGImage(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return resolve(resp.Request.URL, img), nil
}

// OGImage scans an HTML document for <meta property="og:image" content="...">.
func OGImage(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return "", ErrNotFound
			}
			return "", fmt.Errorf("%w: %w", ErrFetch, z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "meta" {
				continue
			}
			var property, content string
			for _, a := range tok.Attr {
				switch strings.ToLower(a.Key) {
				case "property", "name":
					property = strings.ToLower(a.Val)
				case "content":
					content = strings.TrimSpace(a.Val)
				}
			}
			if property == "og:image" && content != "" {
				return content, nil
			}
		}
	}
}

func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil || base == nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
