package redis

import (
	"context"
	"time"

	"sawari/internal/domain"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireSettlementLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error)
	ReleaseSettlementLock(ctx context.Context, tripID string) error
}

// CacheStoreInterface defines the interface for the identity-profile cache.
type CacheStoreInterface interface {
	GetParty(ctx context.Context, ref domain.PartyRef) (*CachedParty, error)
	SetParty(ctx context.Context, ref domain.PartyRef, party *CachedParty) error
	InvalidateParty(ctx context.Context, ref domain.PartyRef) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
