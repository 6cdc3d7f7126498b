package infra_search_cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/singalong/core/internal/model"
)

// Store is the subset of *redis.Client the cache needs.
type Store interface {
	Get(key string) *redis.StringCmd
	Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type Searcher interface {
	Search(ctx context.Context, query string) (model.SearchResult, error)
}

// Driver memoizes search results in redis. Cache failures fall through to the wrapped searcher.
type Driver struct {
	store  Store
	key    string
	ttl    time.Duration
	next   Searcher
	logger *slog.Logger
}

func New(
	store Store,
	key string,
	ttl time.Duration,
	next Searcher,
) *Driver {
	return &Driver{
		store:  store,
		key:    key,
		ttl:    ttl,
		next:   next,
		logger: slog.Default(),
	}
}

type cachedPanel struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Performer string `json:"performer"`
}

type cachedOrganic struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type cachedResult struct {
	Panel   *cachedPanel    `json:"panel,omitempty"`
	Organic []cachedOrganic `json:"organic"`
}

func (d *Driver) Search(ctx context.Context, query string) (model.SearchResult, error) {
	fullKey := d.getFullKey(query)

	val, err := d.store.Get(fullKey).Result()
	switch {
	case err == nil:
		var cached cachedResult
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return cached.toModel(), nil
		}
		d.logger.Warn("corrupted search cache entry", "key", fullKey)
	case err != redis.Nil:
		d.logger.Warn("search cache unavailable", "error", err)
	}

	res, err := d.next.Search(ctx, query)
	if err != nil {
		return model.SearchResult{}, err
	}

	payload, err := json.Marshal(fromModel(res))
	if err != nil {
		return res, nil
	}
	if err := d.store.Set(fullKey, string(payload), d.ttl).Err(); err != nil {
		d.logger.Warn("search cache write failed", "error", err)
	}
	return res, nil
}

func (d *Driver) getFullKey(query string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	key := hex.EncodeToString(sum[:])
	if d.key != "" {
		return d.key + ":" + key
	}
	return key
}

func fromModel(res model.SearchResult) cachedResult {
	var out cachedResult
	if p := res.Panel; p != nil {
		out.Panel = &cachedPanel{Type: p.Type, Title: p.Title, Performer: p.Performer}
	}
	for _, o := range res.Organic {
		out.Organic = append(out.Organic, cachedOrganic{Title: o.Title, Link: o.Link})
	}
	return out
}

func (c cachedResult) toModel() model.SearchResult {
	var res model.SearchResult
	if p := c.Panel; p != nil {
		res.Panel = &model.KnowledgePanel{Type: p.Type, Title: p.Title, Performer: p.Performer}
	}
	for _, o := range c.Organic {
		res.Organic = append(res.Organic, model.OrganicResult{Title: o.Title, Link: o.Link})
	}
	return res
}
