package search

import (
	"context"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes successful searches in a fixed-size LRU.
// Failed searches are never cached.
type Cache struct {
	next    Searcher
	entries *lru.Cache[string, *Response]
}

// NewCache wraps next with an LRU of the given size.
// A size of zero or less disables caching and returns next unchanged.
func NewCache(next Searcher, size int) (Searcher, error) {
	if size <= 0 {
		return next, nil
	}

	entries, err := lru.New[string, *Response](size)
	if err != nil {
		return nil, fmt.Errorf("create search cache: %w", err)
	}

	return &Cache{next: next, entries: entries}, nil
}

func (c *Cache) Hybrid(ctx context.Context, q Query) (*Response, error) {
	key, err := cacheKey(q)
	if err != nil {
		return c.next.Hybrid(ctx, q)
	}

	if resp, ok := c.entries.Get(key); ok {
		return resp, nil
	}

	resp, err := c.next.Hybrid(ctx, q)
	if err != nil {
		return nil, err
	}

	c.entries.Add(key, resp)
	return resp, nil
}

// Len reports the number of cached responses.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func cacheKey(q Query) (string, error) {
	filters, err := json.Marshal(q.Filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\x00%d\x00%g\x00%s", q.Query, q.Limit, q.Alpha, filters), nil
}
