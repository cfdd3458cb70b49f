package services

import (
	"context"
	"sync"

	"anneta.link/models"
	"anneta.link/repositories"
)

// IOrganizationResolver maps external organization keys to catalog records
// through an in-process read-through cache.
type IOrganizationResolver interface {
	FindByKey(ctx context.Context, key string) (*models.Organization, error)
	FindManyByKeys(ctx context.Context, keys []string) (map[string]models.Organization, error)
	IsActive(ctx context.Context, key string) (bool, error)
	Invalidate()
}

// OrganizationResolver caches positive lookups forever; there is no TTL and
// misses are not cached, so every lookup of a missing key hits the catalog
// again. Both are deliberate: catalog edits call Invalidate, and negative
// caching would mask a just-created organization. Staleness between edits
// is tolerated.
type OrganizationResolver struct {
	catalog repositories.IOrganizationRepository

	mu    sync.RWMutex
	cache map[string]models.Organization
}

func NewOrganizationResolver() IOrganizationResolver {
	return &OrganizationResolver{
		catalog: repositories.NewOrganizationRepository(),
		cache:   make(map[string]models.Organization),
	}
}

// NewOrganizationResolverWithCatalog wires an explicit catalog repository.
func NewOrganizationResolverWithCatalog(catalog repositories.IOrganizationRepository) IOrganizationResolver {
	return &OrganizationResolver{
		catalog: catalog,
		cache:   make(map[string]models.Organization),
	}
}

func (r *OrganizationResolver) FindByKey(ctx context.Context, key string) (*models.Organization, error) {
	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return &cached, nil
	}

	org, err := r.catalog.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = *org
	r.mu.Unlock()
	return org, nil
}

// FindManyByKeys returns partial results: unknown keys are absent from the
// map, not an error. The catalog is queried once, for the uncached
// remainder only; duplicate input keys collapse.
func (r *OrganizationResolver) FindManyByKeys(ctx context.Context, keys []string) (map[string]models.Organization, error) {
	result := make(map[string]models.Organization, len(keys))
	seen := make(map[string]bool, len(keys))
	var missing []string

	r.mu.RLock()
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		if cached, ok := r.cache[key]; ok {
			result[key] = cached
		} else {
			missing = append(missing, key)
		}
	}
	r.mu.RUnlock()

	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := r.catalog.FindManyByKeys(ctx, missing)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	for _, org := range fetched {
		r.cache[org.Key] = org
		result[org.Key] = org
	}
	r.mu.Unlock()

	return result, nil
}

func (r *OrganizationResolver) IsActive(ctx context.Context, key string) (bool, error) {
	org, err := r.FindByKey(ctx, key)
	if err != nil {
		return false, err
	}
	return org.Active, nil
}

// Invalidate drops every cached entry. Call after catalog edits.
func (r *OrganizationResolver) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[string]models.Organization)
	r.mu.Unlock()
}

var _ IOrganizationResolver = (*OrganizationResolver)(nil)
