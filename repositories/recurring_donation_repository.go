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

// IRecurringDonationRepository persists recurring templates and their
// splits. Templates are deactivated, never deleted.
type IRecurringDonationRepository interface {
	Create(ctx context.Context, recurring *models.RecurringDonation) error
	FindByID(ctx context.Context, id uint) (*models.RecurringDonation, error)
	FindActiveByDonorID(ctx context.Context, donorID uint) ([]models.RecurringDonation, error)
	Deactivate(ctx context.Context, id uint) error
	ReplaceSplits(ctx context.Context, recurringID uint, splits []models.OrganizationRecurringDonation) error
	CountSplitsByOrganizationKey(ctx context.Context, key string) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type RecurringDonationRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.RecurringDonation]
}

func NewRecurringDonationRepository() IRecurringDonationRepository {
	db := configs.GetDB()
	return &RecurringDonationRepository{db: db, base: NewBaseRepository[models.RecurringDonation](db)}
}

// NewRecurringDonationRepositoryTx binds the repository to an open transaction.
func NewRecurringDonationRepositoryTx(tx *gorm.DB) IRecurringDonationRepository {
	return &RecurringDonationRepository{db: tx, base: NewBaseRepository[models.RecurringDonation](tx)}
}

func (r *RecurringDonationRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *RecurringDonationRepository) Create(ctx context.Context, recurring *models.RecurringDonation) error {
	if recurring == nil {
		return errors.New("nil recurring donation")
	}
	return r.getDB(ctx).Create(recurring).Error
}

func (r *RecurringDonationRepository) FindByID(ctx context.Context, id uint) (*models.RecurringDonation, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var recurring models.RecurringDonation
	err := r.getDB(ctx).Preload("Donor").Preload("Splits").First(&recurring, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("RecurringDonationRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &recurring, nil
}

func (r *RecurringDonationRepository) FindActiveByDonorID(ctx context.Context, donorID uint) ([]models.RecurringDonation, error) {
	var recurrings []models.RecurringDonation
	err := r.getDB(ctx).Preload("Splits").
		Where("donor_id = ? AND active = ?", donorID, true).
		Find(&recurrings).Error
	if err != nil {
		configslog.Log.Error("RecurringDonationRepository.FindActiveByDonorID: DB error",
			zap.Uint("donorID", donorID), zap.Error(err))
		return nil, err
	}
	return recurrings, nil
}

// Deactivate clears the active flag; idempotent, missing rows are reported.
func (r *RecurringDonationRepository) Deactivate(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	result := r.getDB(ctx).Model(&models.RecurringDonation{}).
		Where("id = ?", id).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceSplits swaps the template's split set in one transaction.
func (r *RecurringDonationRepository) ReplaceSplits(ctx context.Context, recurringID uint, splits []models.OrganizationRecurringDonation) error {
	if recurringID == 0 {
		return ErrNotFound
	}
	return r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recurring_donation_id = ?", recurringID).Delete(&models.OrganizationRecurringDonation{}).Error; err != nil {
			return err
		}
		for i := range splits {
			splits[i].ID = 0
			splits[i].RecurringDonationID = recurringID
		}
		if len(splits) == 0 {
			return nil
		}
		return tx.Create(&splits).Error
	})
}

func (r *RecurringDonationRepository) CountSplitsByOrganizationKey(ctx context.Context, key string) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.OrganizationRecurringDonation{}).
		Where("organization_key = ?", key).Count(&count).Error
	return count, err
}

func (r *RecurringDonationRepository) CountAll(ctx context.Context) (int64, error) {
	return r.base.CountAll(ctx)
}

var _ IRecurringDonationRepository = (*RecurringDonationRepository)(nil)
