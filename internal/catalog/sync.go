package catalog

import (
	"context"
	"time"

	"mssprep/internal"
	"mssprep/internal/storage"
)

type SyncService struct {
	db       *storage.DB
	resolver *Resolver
}

type WarmResult struct {
	Requested int
	Fetched   int
}

func NewSyncService(db *storage.DB, resolver *Resolver) *SyncService {
	return &SyncService{db: db, resolver: resolver}
}

// Warm resolves every request so later runs hit the cache. It stops at the
// first fetch failure; entries resolved before it stay in the cache.
func (s *SyncService) Warm(ctx context.Context, requests []internal.ShelfmarkRequest) (WarmResult, error) {
	before := s.resolver.Fetches()
	result := WarmResult{Requested: len(requests)}
	for _, req := range requests {
		if _, err := s.resolver.Resolve(ctx, req.BibID, req.Shelfmark); err != nil {
			result.Fetched = s.resolver.Fetches() - before
			return result, err
		}
	}
	result.Fetched = s.resolver.Fetches() - before
	if s.db != nil {
		_ = s.db.SetMetadata("cache.last_warm", time.Now().UTC().Format(time.RFC3339))
	}
	return result, nil
}
