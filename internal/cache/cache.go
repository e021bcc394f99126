package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/ppiankov/medqa/internal/model"
)

// Store is a byte-oriented key/value cache with per-entry TTL
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a URL
func Key(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return "medqa:v1:" + hex.EncodeToString(hash[:])
}

// Page is a cached fetch result
type Page struct {
	URL         string    `json:"url"`
	FinalURL    string    `json:"final_url"`
	ContentType string    `json:"content_type"`
	HTML        string    `json:"html"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Pages caches fetched pages by their request URL. A nil *Pages is a
// valid cache that never hits.
type Pages struct {
	store Store
	ttl   time.Duration
}

// NewPages wraps store. ttl=0 uses the store's default.
func NewPages(store Store, ttl time.Duration) *Pages {
	return &Pages{store: store, ttl: ttl}
}

// FromConfig builds the memory+disk page cache, or nil when disabled
func FromConfig(cfg model.CacheConfig) *Pages {
	if !cfg.Enabled {
		return nil
	}
	return NewPages(NewLayered(
		NewMemory(cfg.MemoryTTL, 10*time.Minute),
		NewDisk(cfg.Dir, cfg.DiskTTL),
	), 0)
}

// Get returns the cached page for rawURL
func (p *Pages) Get(rawURL string) (*Page, bool) {
	if p == nil || p.store == nil {
		return nil, false
	}
	data, ok := p.store.Get(Key(rawURL))
	if !ok {
		return nil, false
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		_ = p.store.Delete(Key(rawURL))
		return nil, false
	}
	return &page, true
}

// Put stores page under its request URL
func (p *Pages) Put(page *Page) error {
	if p == nil || p.store == nil || page == nil {
		return nil
	}
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return p.store.Set(Key(page.URL), data, p.ttl)
}
