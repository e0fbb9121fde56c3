package service

import (
	"context"
	"log"

	"sawari/internal/domain"
	"sawari/internal/redis"
	"sawari/internal/repository"
)

// partyLookup loads one party profile of a fixed kind from storage.
type partyLookup func(ctx context.Context, id string) (*redis.CachedParty, error)

// PartyResolver resolves party references to profiles through a per-kind
// lookup registry, fronted by the bounded redis profile cache.
type PartyResolver struct {
	cache   redis.CacheStoreInterface
	lookups map[domain.PartyKind]partyLookup
}

// NewPartyResolver creates a PartyResolver over the three party
// repositories. cache is optional.
func NewPartyResolver(
	cache redis.CacheStoreInterface,
	orgRepo repository.OrganizationRepository,
	driverRepo repository.DriverRepository,
	passengerRepo repository.PassengerRepository,
) *PartyResolver {
	return &PartyResolver{
		cache: cache,
		lookups: map[domain.PartyKind]partyLookup{
			domain.PartyOrganization: func(ctx context.Context, id string) (*redis.CachedParty, error) {
				org, err := orgRepo.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return &redis.CachedParty{
					Kind:          string(domain.PartyOrganization),
					ID:            org.ID,
					Name:          org.Name,
					TotalEarnings: org.TotalEarnings,
				}, nil
			},
			domain.PartyDriver: func(ctx context.Context, id string) (*redis.CachedParty, error) {
				driver, err := driverRepo.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return &redis.CachedParty{
					Kind:          string(domain.PartyDriver),
					ID:            driver.ID,
					Name:          driver.Name,
					TotalEarnings: driver.TotalEarnings,
				}, nil
			},
			domain.PartyPassenger: func(ctx context.Context, id string) (*redis.CachedParty, error) {
				passenger, err := passengerRepo.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return &redis.CachedParty{
					Kind: string(domain.PartyPassenger),
					ID:   passenger.ID,
					Name: passenger.Name,
				}, nil
			},
		},
	}
}

// Resolve returns the profile for a party reference, serving from cache
// when possible. An unknown kind or a missing row returns
// repository.ErrNotFound semantics from the underlying repo.
func (r *PartyResolver) Resolve(ctx context.Context, ref domain.PartyRef) (*redis.CachedParty, error) {
	lookup, ok := r.lookups[ref.Kind]
	if !ok {
		return nil, ErrUnauthorized
	}

	if r.cache != nil {
		cached, err := r.cache.GetParty(ctx, ref)
		if err != nil {
			log.Printf("party cache read failed for %s: %v", ref, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	party, err := lookup(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetParty(ctx, ref, party); err != nil {
			log.Printf("party cache write failed for %s: %v", ref, err)
		}
	}

	return party, nil
}
