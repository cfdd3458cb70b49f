package repositories

import (
	"context"
	"errors"

	"anneta.link/configs"
	"anneta.link/configs/configslog"
	"anneta.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IOrganizationRepository is the catalog side of the dual-store design:
// organizations and causes live here, the ledger references them only by
// external key.
type IOrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	Update(ctx context.Context, org *models.Organization) error
	FindByKey(ctx context.Context, key string) (*models.Organization, error)
	FindManyByKeys(ctx context.Context, keys []string) ([]models.Organization, error)
	FindAllActive(ctx context.Context) ([]models.Organization, error)
	DeleteByKey(ctx context.Context, key string) error
	SetActive(ctx context.Context, key string, active bool) error
	FindActiveCauses(ctx context.Context) ([]models.Cause, error)
	FindCauseByKey(ctx context.Context, key string) (*models.Cause, error)
}

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository() IOrganizationRepository {
	return &OrganizationRepository{db: configs.GetDB()}
}

// NewOrganizationRepositoryTx binds the repository to an open transaction.
func NewOrganizationRepositoryTx(tx *gorm.DB) IOrganizationRepository {
	return &OrganizationRepository{db: tx}
}

func (r *OrganizationRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	if org == nil || org.Key == "" {
		return errors.New("organization needs a key")
	}
	return r.getDB(ctx).Create(org).Error
}

func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	if org == nil || org.ID == 0 {
		return errors.New("organization has no ID")
	}
	return r.getDB(ctx).Save(org).Error
}

func (r *OrganizationRepository) FindByKey(ctx context.Context, key string) (*models.Organization, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var org models.Organization
	err := r.getDB(ctx).Where("key = ?", key).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("OrganizationRepository.FindByKey: DB error", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &org, nil
}

// FindManyByKeys returns the organizations that exist; unknown keys are
// simply absent from the result, not an error.
func (r *OrganizationRepository) FindManyByKeys(ctx context.Context, keys []string) ([]models.Organization, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var orgs []models.Organization
	err := r.getDB(ctx).Where("key IN ?", keys).Find(&orgs).Error
	if err != nil {
		configslog.Log.Error("OrganizationRepository.FindManyByKeys: DB error", zap.Error(err))
		return nil, err
	}
	return orgs, nil
}

func (r *OrganizationRepository) FindAllActive(ctx context.Context) ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.getDB(ctx).Where("active = ?", true).Order("name").Find(&orgs).Error
	return orgs, err
}

func (r *OrganizationRepository) DeleteByKey(ctx context.Context, key string) error {
	if key == "" {
		return ErrNotFound
	}
	result := r.getDB(ctx).Where("key = ?", key).Delete(&models.Organization{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrganizationRepository) SetActive(ctx context.Context, key string, active bool) error {
	if key == "" {
		return ErrNotFound
	}
	result := r.getDB(ctx).Model(&models.Organization{}).
		Where("key = ?", key).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrganizationRepository) FindActiveCauses(ctx context.Context) ([]models.Cause, error) {
	var causes []models.Cause
	err := r.getDB(ctx).Preload("Organizations").
		Where("active = ?", true).Order("id").Find(&causes).Error
	if err != nil {
		configslog.Log.Error("OrganizationRepository.FindActiveCauses: DB error", zap.Error(err))
		return nil, err
	}
	return causes, nil
}

func (r *OrganizationRepository) FindCauseByKey(ctx context.Context, key string) (*models.Cause, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var cause models.Cause
	err := r.getDB(ctx).Preload("Organizations").Where("key = ?", key).First(&cause).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cause, nil
}

var _ IOrganizationRepository = (*OrganizationRepository)(nil)
