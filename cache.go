package autoblog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/eringen/autoblog/generate"
)

// ModelLister connects to a provider to list its models.
type ModelLister func(ctx context.Context, provider, apiKey string) ([]string, error)

// DefaultModelLister opens a provider client, lists its models and closes it.
func DefaultModelLister(ctx context.Context, provider, apiKey string) ([]string, error) {
	p, err := generate.NewProvider(ctx, provider, apiKey)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.ListModels(ctx)
}

type modelEntry struct {
	models  []string
	fetched time.Time
}

// ModelCache is an in-memory cache of provider model lists with TTL, keyed by
// provider and a hash of the API key.
type ModelCache struct {
	mu      sync.RWMutex
	entries map[string]modelEntry
	ttl     time.Duration
	list    ModelLister
}

// NewModelCache creates a ModelCache that loads through list.
func NewModelCache(list ModelLister, ttl time.Duration) *ModelCache {
	return &ModelCache{
		entries: make(map[string]modelEntry),
		ttl:     ttl,
		list:    list,
	}
}

func cacheKey(provider, apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return generate.NormalizeProvider(provider) + ":" + hex.EncodeToString(sum[:8])
}

func (c *ModelCache) valid(e modelEntry) bool {
	return e.models != nil && time.Since(e.fetched) < c.ttl
}

// Models returns the cached model list for provider and key, loading it when
// missing or expired. Failed loads are not cached.
func (c *ModelCache) Models(ctx context.Context, provider, apiKey string) ([]string, error) {
	key := cacheKey(provider, apiKey)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.valid(e) {
		return e.models, nil
	}

	models, err := c.list(ctx, provider, apiKey)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []string{}
	}

	c.mu.Lock()
	c.entries[key] = modelEntry{models: models, fetched: time.Now()}
	c.mu.Unlock()
	return models, nil
}

// Cached returns the model list for provider and key without loading it.
func (c *ModelCache) Cached(provider, apiKey string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[cacheKey(provider, apiKey)]
	if !ok || !c.valid(e) {
		return nil, false
	}
	return e.models, true
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ModelCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]modelEntry)
	c.mu.Unlock()
}
