package infra_serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/humanbelnik/singalong/core/internal/config"
	"github.com/humanbelnik/singalong/core/internal/model"
)

var (
	ErrDisabled = errors.New("serper api key is not configured")
	ErrUpstream = errors.New("serper request failed")
)

const (
	resultsNum = 10
	country    = "kr"
	language   = "ko"
)

type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

func New(cfg config.Serper) *Client {
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
}

type knowledgeGraph struct {
	Title      string            `json:"title"`
	Type       string            `json:"type"`
	Artist     string            `json:"artist"`
	Attributes map[string]string `json:"attributes"`
}

type organic struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type searchResponse struct {
	KnowledgeGraph *knowledgeGraph `json:"knowledgeGraph"`
	Organic        []organic       `json:"organic"`
}

func (c *Client) Search(ctx context.Context, query string) (model.SearchResult, error) {
	if c.apiKey == "" {
		return model.SearchResult{}, ErrDisabled
	}

	payload, err := json.Marshal(searchRequest{Q: query, Num: resultsNum, GL: country, HL: language})
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.SearchResult{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.SearchResult{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return toModel(out), nil
}

func toModel(out searchResponse) model.SearchResult {
	var res model.SearchResult
	if kg := out.KnowledgeGraph; kg != nil {
		res.Panel = &model.KnowledgePanel{
			Type:      kg.Type,
			Title:     kg.Title,
			Performer: panelPerformer(kg),
		}
	}
	for _, o := range out.Organic {
		res.Organic = append(res.Organic, model.OrganicResult{Title: o.Title, Link: o.Link})
	}
	return res
}

// Attribute keys come capitalized ("Artist", "Artists").
func panelPerformer(kg *knowledgeGraph) string {
	attrs := make(map[string]string, len(kg.Attributes))
	for k, v := range kg.Attributes {
		attrs[strings.ToLower(k)] = v
	}
	for _, key := range []string{"artist", "artists"} {
		if v := strings.TrimSpace(attrs[key]); v != "" {
			return v
		}
	}
	return strings.TrimSpace(kg.Artist)
}
