// Package results keeps metadata for recently generated images so clients can
// look a generation up by id after the response has been delivered.
package results

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"stylegen/internal/domain"
	"stylegen/internal/imagegen"
)

// DefaultTTL applies when the configured ttl is not positive.
const DefaultTTL = 30 * time.Minute

// Record is the stored view of one finished generation.
type Record struct {
	ID             string                  `json:"id"`
	Mode           string                  `json:"mode"`
	Style          string                  `json:"style,omitempty"`
	Key            string                  `json:"key"`
	URL            string                  `json:"url"`
	Spec           imagegen.GenerationSpec `json:"spec"`
	BackendSkipped bool                    `json:"backend_skipped"`
	GenerationTime float64                 `json:"generation_time"`
	CreatedAt      time.Time               `json:"created_at"`
}

// Cache is an expiring in-memory index of records.
type Cache struct {
	items *cache.Cache
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{items: cache.New(ttl, 2*ttl)}
}

func (c *Cache) Put(rec Record) {
	if rec.ID == "" {
		return
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	c.items.SetDefault(rec.ID, rec)
}

// Get fails with domain.ErrNotFound once a record expired or never existed.
func (c *Cache) Get(id string) (Record, error) {
	v, ok := c.items.Get(id)
	if !ok {
		return Record{}, fmt.Errorf("result %q: %w", id, domain.ErrNotFound)
	}
	rec, ok := v.(Record)
	if !ok {
		return Record{}, fmt.Errorf("result %q: %w", id, domain.ErrNotFound)
	}
	return rec, nil
}

func (c *Cache) Len() int {
	return c.items.ItemCount()
}
