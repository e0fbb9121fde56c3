package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sawari/internal/domain"
)

// CacheStore is the bounded identity-profile cache. Entries expire on a
// short TTL and are explicitly invalidated whenever the underlying profile
// mutates (e.g. running totals updated at settlement); there is no implicit
// process-wide memoization.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// PartyCacheTTL bounds how stale a cached profile can get even without an
// explicit invalidation.
const PartyCacheTTL = 60 * time.Second

// CachedParty represents a cached identity profile of any kind.
type CachedParty struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Name string `json:"name"`
	// TotalEarnings is only meaningful for organizations and drivers.
	TotalEarnings float64 `json:"total_earnings,omitempty"`
}

func partyCacheKey(ref domain.PartyRef) string {
	return fmt.Sprintf("cache:party:%s:%s", ref.Kind, ref.ID)
}

// GetParty retrieves a profile from cache. A nil result is a cache miss.
func (s *CacheStore) GetParty(ctx context.Context, ref domain.PartyRef) (*CachedParty, error) {
	data, err := s.client.Get(ctx, partyCacheKey(ref)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var party CachedParty
	if err := json.Unmarshal(data, &party); err != nil {
		return nil, err
	}
	return &party, nil
}

// SetParty stores a profile in cache.
func (s *CacheStore) SetParty(ctx context.Context, ref domain.PartyRef, party *CachedParty) error {
	data, err := json.Marshal(party)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, partyCacheKey(ref), data, PartyCacheTTL).Err()
}

// InvalidateParty removes a profile from cache. Called after any mutation
// of the underlying row.
func (s *CacheStore) InvalidateParty(ctx context.Context, ref domain.PartyRef) error {
	return s.client.Del(ctx, partyCacheKey(ref)).Err()
}
