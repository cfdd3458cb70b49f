package services

import (
	"context"
	"testing"

	"anneta.link/models"
	"anneta.link/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(orgs ...models.Organization) (*OrganizationResolver, *fakeCatalogRepo) {
	catalog := newFakeCatalogRepo(orgs...)
	return &OrganizationResolver{
		catalog: catalog,
		cache:   make(map[string]models.Organization),
	}, catalog
}

func TestResolverCachesPositiveLookups(t *testing.T) {
	resolver, catalog := newTestResolver(models.Organization{Key: "A", Name: "Alpha", Active: true})
	ctx := context.Background()

	org, err := resolver.FindByKey(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", org.Name)
	assert.Equal(t, 1, catalog.singleCalls)

	_, err = resolver.FindByKey(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.singleCalls, "second lookup must come from cache")
}

func TestResolverDoesNotCacheMisses(t *testing.T) {
	resolver, catalog := newTestResolver()
	ctx := context.Background()

	_, err := resolver.FindByKey(ctx, "ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = resolver.FindByKey(ctx, "ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Equal(t, 2, catalog.singleCalls, "misses are re-queried every time")
}

func TestResolverBatchQueriesOnlyUncachedKeys(t *testing.T) {
	resolver, catalog := newTestResolver(
		models.Organization{Key: "A", Name: "Alpha", Active: true},
		models.Organization{Key: "B", Name: "Beta", Active: true},
	)
	ctx := context.Background()

	result, err := resolver.FindManyByKeys(ctx, []string{"A", "B"})
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, 1, catalog.batchCalls)

	// Fully cached: no catalog query at all.
	result, err = resolver.FindManyByKeys(ctx, []string{"A", "B"})
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, 1, catalog.batchCalls)
	assert.Equal(t, 0, catalog.singleCalls)
}

func TestResolverBatchCollapsesDuplicatesAndToleratesUnknowns(t *testing.T) {
	resolver, catalog := newTestResolver(models.Organization{Key: "A", Name: "Alpha", Active: true})
	ctx := context.Background()

	result, err := resolver.FindManyByKeys(ctx, []string{"A", "A", "missing", "missing"})
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Contains(t, result, "A")
	assert.NotContains(t, result, "missing")
	assert.Equal(t, 1, catalog.batchCalls)
}

func TestResolverInvalidateDropsCache(t *testing.T) {
	resolver, catalog := newTestResolver(models.Organization{Key: "A", Name: "Alpha", Active: true})
	ctx := context.Background()

	_, err := resolver.FindByKey(ctx, "A")
	require.NoError(t, err)
	resolver.Invalidate()

	_, err = resolver.FindByKey(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.singleCalls)
}

func TestResolverIsActive(t *testing.T) {
	resolver, _ := newTestResolver(
		models.Organization{Key: "on", Active: true},
		models.Organization{Key: "off", Active: false},
	)
	ctx := context.Background()

	active, err := resolver.IsActive(ctx, "on")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = resolver.IsActive(ctx, "off")
	require.NoError(t, err)
	assert.False(t, active)
}
