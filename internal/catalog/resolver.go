package catalog

import (
	"context"
	"fmt"
	"strings"
)

type Fetcher interface {
	FullShelfmark(ctx context.Context, bibid string) (string, error)
}

// Resolver turns a bibid into its full shelfmark, consulting the cache first.
type Resolver struct {
	cache   ShelfmarkCache
	fetcher Fetcher
	fetches int
}

func NewResolver(cache ShelfmarkCache, fetcher Fetcher) *Resolver {
	return &Resolver{cache: cache, fetcher: fetcher}
}

// Resolve returns the cached value for bibid or fetches and caches it. When
// the record yields an empty shelfmark the candidate is used instead.
func (r *Resolver) Resolve(ctx context.Context, bibid, shelfmark string) (string, error) {
	if cached, ok, err := r.cache.Lookup(bibid); err != nil {
		return "", fmt.Errorf("shelfmark cache lookup bibid=%s: %w", bibid, err)
	} else if ok {
		return cached, nil
	}

	r.fetches++
	full, err := r.fetcher.FullShelfmark(ctx, bibid)
	if err != nil {
		return "", err
	}
	full = strings.TrimSpace(full)
	if full == "" {
		full = strings.TrimSpace(shelfmark)
	}
	if err := r.cache.Store(bibid, full); err != nil {
		return "", fmt.Errorf("shelfmark cache store bibid=%s: %w", bibid, err)
	}
	return full, nil
}

// Fetches reports how many external lookups were attempted.
func (r *Resolver) Fetches() int { return r.fetches }
