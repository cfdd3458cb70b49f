package services

import (
	"context"
	"errors"
	"fmt"

	"anneta.link/configs/configslog"
	"anneta.link/models"
	"anneta.link/repositories"

	"go.uber.org/zap"
)

// CatalogServiceError are the catalog management failures.
type CatalogServiceError string

func (e CatalogServiceError) Error() string { return string(e) }

const (
	ErrOrganizationNotFound CatalogServiceError = "organization not found"
	// ErrOrganizationReferenced blocks deletion of an organization that
	// still has ledger rows; deactivate it instead.
	ErrOrganizationReferenced CatalogServiceError = "organization still has ledger references, deactivate it instead"
)

// ICatalogService manages the organization catalog and guards it against
// deletions that would orphan ledger history. This guard is the only place
// the catalog and ledger stores must agree synchronously.
type ICatalogService interface {
	CreateOrganization(ctx context.Context, org *models.Organization) error
	UpdateOrganization(ctx context.Context, org *models.Organization) error
	DeleteOrganization(ctx context.Context, key string) error
	DeleteOrganizations(ctx context.Context, keys []string) error
	DeactivateOrganization(ctx context.Context, key string) error
	GetActiveOrganizations(ctx context.Context) ([]models.Organization, error)
	GetActiveCauses(ctx context.Context) ([]models.Cause, error)
}

type CatalogService struct {
	catalogRepo   repositories.IOrganizationRepository
	donationRepo  repositories.IDonationRepository
	recurringRepo repositories.IRecurringDonationRepository
	resolver      IOrganizationResolver
}

func NewCatalogService(resolver IOrganizationResolver) ICatalogService {
	return &CatalogService{
		catalogRepo:   repositories.NewOrganizationRepository(),
		donationRepo:  repositories.NewDonationRepository(),
		recurringRepo: repositories.NewRecurringDonationRepository(),
		resolver:      resolver,
	}
}

func (s *CatalogService) CreateOrganization(ctx context.Context, org *models.Organization) error {
	if err := s.catalogRepo.Create(ctx, org); err != nil {
		return err
	}
	s.resolver.Invalidate()
	return nil
}

func (s *CatalogService) UpdateOrganization(ctx context.Context, org *models.Organization) error {
	if err := s.catalogRepo.Update(ctx, org); err != nil {
		return err
	}
	s.resolver.Invalidate()
	return nil
}

// DeleteOrganization removes a catalog organization, but only when no
// donation or recurring-donation split references its key. Otherwise it
// fails with both counts so the operator knows what is holding the record.
func (s *CatalogService) DeleteOrganization(ctx context.Context, key string) error {
	donationRefs, err := s.donationRepo.CountSplitsByOrganizationKey(ctx, key)
	if err != nil {
		return err
	}
	recurringRefs, err := s.recurringRepo.CountSplitsByOrganizationKey(ctx, key)
	if err != nil {
		return err
	}
	if donationRefs > 0 || recurringRefs > 0 {
		configslog.Log.Warn("organization deletion blocked by ledger references",
			zap.String("key", key),
			zap.Int64("donationSplits", donationRefs),
			zap.Int64("recurringSplits", recurringRefs))
		return fmt.Errorf("%w: %d donation splits, %d recurring splits reference %q",
			ErrOrganizationReferenced, donationRefs, recurringRefs, key)
	}

	if err := s.catalogRepo.DeleteByKey(ctx, key); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrganizationNotFound
		}
		return err
	}
	s.resolver.Invalidate()
	configslog.SLog.Infof("organization %q deleted", key)
	return nil
}

// DeleteOrganizations applies the same guard to every key before deleting
// any of them, so a bulk delete is all-or-nothing with respect to the guard.
func (s *CatalogService) DeleteOrganizations(ctx context.Context, keys []string) error {
	for _, key := range keys {
		donationRefs, err := s.donationRepo.CountSplitsByOrganizationKey(ctx, key)
		if err != nil {
			return err
		}
		recurringRefs, err := s.recurringRepo.CountSplitsByOrganizationKey(ctx, key)
		if err != nil {
			return err
		}
		if donationRefs > 0 || recurringRefs > 0 {
			return fmt.Errorf("%w: %d donation splits, %d recurring splits reference %q",
				ErrOrganizationReferenced, donationRefs, recurringRefs, key)
		}
	}
	for _, key := range keys {
		if err := s.catalogRepo.DeleteByKey(ctx, key); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
	}
	s.resolver.Invalidate()
	return nil
}

// DeactivateOrganization retires an organization without touching history.
// Always allowed; this is the path the deletion guard points operators to.
func (s *CatalogService) DeactivateOrganization(ctx context.Context, key string) error {
	if err := s.catalogRepo.SetActive(ctx, key, false); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrganizationNotFound
		}
		return err
	}
	s.resolver.Invalidate()
	configslog.SLog.Infof("organization %q deactivated", key)
	return nil
}

func (s *CatalogService) GetActiveOrganizations(ctx context.Context) ([]models.Organization, error) {
	return s.catalogRepo.FindAllActive(ctx)
}

func (s *CatalogService) GetActiveCauses(ctx context.Context) ([]models.Cause, error) {
	return s.catalogRepo.FindActiveCauses(ctx)
}

var _ ICatalogService = (*CatalogService)(nil)
