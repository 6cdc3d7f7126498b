package infra_search_cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/singalong/core/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data   map[string]string
	getErr error
	ttl    time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	val, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (m *memStore) Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = value.(string)
	m.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

type countingSearcher struct {
	calls int
	res   model.SearchResult
	err   error
}

func (c *countingSearcher) Search(_ context.Context, _ string) (model.SearchResult, error) {
	c.calls++
	return c.res, c.err
}

func TestSearch_CachesUpstreamResult(t *testing.T) {
	store := newMemStore()
	upstream := &countingSearcher{res: model.SearchResult{
		Panel:   &model.KnowledgePanel{Type: "song", Title: "Hype Boy", Performer: "NewJeans"},
		Organic: []model.OrganicResult{{Title: "Hype Boy - Bugs", Link: "https://music.bugs.co.kr/track/1"}},
	}}
	d := New(store, "search", time.Minute, upstream)

	first, err := d.Search(context.Background(), "  Hype Boy 가사")
	require.NoError(t, err)
	second, err := d.Search(context.Background(), "hype boy 가사")
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, time.Minute, store.ttl)
	for k := range store.data {
		assert.Contains(t, k, "search:")
	}
}

func TestSearch_StoreFailureFallsThrough(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	upstream := &countingSearcher{}
	d := New(store, "", time.Minute, upstream)

	_, err := d.Search(context.Background(), "q")
	require.NoError(t, err)
	_, err = d.Search(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, 2, upstream.calls)
}

func TestSearch_UpstreamErrorNotCached(t *testing.T) {
	store := newMemStore()
	upstream := &countingSearcher{err: errors.New("quota")}
	d := New(store, "search", time.Minute, upstream)

	_, err := d.Search(context.Background(), "q")
	assert.Error(t, err)
	assert.Empty(t, store.data)
}
