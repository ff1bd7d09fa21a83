package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/toolshed-ai/toolfusion/src/cache"
)

// CacheInvalidator is implemented by generators that can evict a cached
// response. Retry loops call it after rejecting a response, so the next
// attempt with the same turns reaches the model again instead of replaying
// the rejected output.
type CacheInvalidator interface {
	Invalidate(turns []Turn)
}

// CachedGenerator wraps a Generator and caches responses keyed by the full
// turn list. Useful when re-running the same query against an unchanged
// catalog, and it makes the demo CLI cheap to iterate with. Responses a
// caller rejects must be evicted via Invalidate before retrying.
type CachedGenerator struct {
	Generator Generator
	Cache     *cache.LRUCache
	FilePath  string
}

// NewCachedGenerator creates a new CachedGenerator wrapper.
func NewCachedGenerator(gen Generator, size int, ttl time.Duration, filePath string) *CachedGenerator {
	c := &CachedGenerator{
		Generator: gen,
		Cache:     cache.NewLRUCache(size, ttl),
		FilePath:  filePath,
	}
	if filePath != "" {
		c.load()
	}
	return c
}

func (c *CachedGenerator) load() {
	f, err := os.Open(c.FilePath)
	if err != nil {
		return // ignore errors (file not found, etc)
	}
	defer f.Close()

	var dump map[string]cache.Entry
	if err := json.NewDecoder(f).Decode(&dump); err == nil {
		c.Cache.Restore(dump)
	}
}

func (c *CachedGenerator) save() {
	if c.FilePath == "" {
		return
	}
	dump := c.Cache.Dump()

	// Atomic write: write to temp, then rename.
	tmp := c.FilePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return
	}

	if err := json.NewEncoder(f).Encode(dump); err != nil {
		f.Close()
		os.Remove(tmp)
		return
	}
	f.Close()
	os.Rename(tmp, c.FilePath)
}

func turnsKey(turns []Turn) string {
	h := sha256.New()
	for _, t := range turns {
		h.Write([]byte(t.Role))
		h.Write([]byte{0})
		h.Write([]byte(t.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Generate checks the cache before calling the underlying generator.
func (c *CachedGenerator) Generate(ctx context.Context, turns []Turn) (string, error) {
	key := turnsKey(turns)
	if val, ok := c.Cache.Get(key); ok {
		return val, nil
	}

	res, err := c.Generator.Generate(ctx, turns)
	if err != nil {
		return "", err
	}

	c.Cache.Set(key, res)
	c.save()
	return res, nil
}

// Invalidate evicts the cached response for the given turns.
func (c *CachedGenerator) Invalidate(turns []Turn) {
	c.Cache.Remove(turnsKey(turns))
	c.save()
}

var _ Generator = (*CachedGenerator)(nil)
var _ CacheInvalidator = (*CachedGenerator)(nil)

// TryCacheGenerator checks env vars and wraps the generator if caching is enabled.
func TryCacheGenerator(gen Generator) Generator {
	sizeStr := os.Getenv("FUSION_LLM_CACHE_SIZE")
	if sizeStr == "" {
		return gen
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 {
		return gen
	}

	ttlStr := os.Getenv("FUSION_LLM_CACHE_TTL")
	ttl := 300 * time.Second // default 5 mins
	if ttlStr != "" {
		if sec, err := strconv.Atoi(ttlStr); err == nil && sec > 0 {
			ttl = time.Duration(sec) * time.Second
		}
	}

	path := os.Getenv("FUSION_LLM_CACHE_PATH")
	if path == "" {
		path = ".fusion_cache.json"
	}

	return NewCachedGenerator(gen, size, ttl, path)
}
