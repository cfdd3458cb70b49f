package services

import (
	"context"
	"testing"

	"anneta.link/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalogService(catalog *fakeCatalogRepo, donationRefs, recurringRefs map[string]int64) (*CatalogService, *OrganizationResolver) {
	donationRepo := newFakeDonationRepo()
	if donationRefs != nil {
		donationRepo.splitCount = donationRefs
	}
	resolver := &OrganizationResolver{catalog: catalog, cache: make(map[string]models.Organization)}
	svc := &CatalogService{
		catalogRepo:   catalog,
		donationRepo:  donationRepo,
		recurringRepo: &fakeRecurringRepo{splitCount: recurringRefs},
		resolver:      resolver,
	}
	return svc, resolver
}

func TestDeleteOrganizationBlockedByLedgerReferences(t *testing.T) {
	catalog := newFakeCatalogRepo(models.Organization{Key: "mtu", Name: "MTÜ", Active: true})
	svc, _ := newTestCatalogService(catalog, map[string]int64{"mtu": 3}, map[string]int64{"mtu": 2})

	err := svc.DeleteOrganization(context.Background(), "mtu")
	require.ErrorIs(t, err, ErrOrganizationReferenced)
	assert.Contains(t, err.Error(), "3 donation splits")
	assert.Contains(t, err.Error(), "2 recurring splits")
	assert.Empty(t, catalog.deletedKeys, "no deletion may happen")
}

func TestDeleteOrganizationWithoutReferencesSucceeds(t *testing.T) {
	catalog := newFakeCatalogRepo(models.Organization{Key: "idle", Name: "Idle", Active: true})
	svc, resolver := newTestCatalogService(catalog, nil, nil)

	// Warm the resolver cache, then prove deletion invalidates it.
	_, err := resolver.FindByKey(context.Background(), "idle")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrganization(context.Background(), "idle"))
	assert.Equal(t, []string{"idle"}, catalog.deletedKeys)

	_, err = resolver.FindByKey(context.Background(), "idle")
	assert.Error(t, err, "cache must have been invalidated")
}

func TestDeleteOrganizationsBulkGuardIsAllOrNothing(t *testing.T) {
	catalog := newFakeCatalogRepo(
		models.Organization{Key: "clean", Active: true},
		models.Organization{Key: "dirty", Active: true},
	)
	svc, _ := newTestCatalogService(catalog, map[string]int64{"dirty": 1}, nil)

	err := svc.DeleteOrganizations(context.Background(), []string{"clean", "dirty"})
	require.ErrorIs(t, err, ErrOrganizationReferenced)
	assert.Empty(t, catalog.deletedKeys, "guard failure must delete nothing")
}

func TestDeactivateOrganization(t *testing.T) {
	catalog := newFakeCatalogRepo(models.Organization{Key: "mtu", Active: true})
	svc, _ := newTestCatalogService(catalog, map[string]int64{"mtu": 10}, nil)

	// Deactivation is allowed no matter how much history exists.
	require.NoError(t, svc.DeactivateOrganization(context.Background(), "mtu"))
	assert.Equal(t, []string{"mtu"}, catalog.deactivated)

	err := svc.DeactivateOrganization(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}
