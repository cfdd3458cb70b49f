package repositories

import (
	"context"
	"errors"

	"anneta.link/configs"
	"anneta.link/models"

	"gorm.io/gorm"
)

// IDonationTransferRepository persists transfer batches.
type IDonationTransferRepository interface {
	Create(ctx context.Context, transfer *models.DonationTransfer) error
	FindByID(ctx context.Context, id uint) (*models.DonationTransfer, error)
	FindAll(ctx context.Context) ([]models.DonationTransfer, error)
	Delete(ctx context.Context, id uint) error
}

type DonationTransferRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.DonationTransfer]
}

func NewDonationTransferRepository() IDonationTransferRepository {
	db := configs.GetDB()
	return &DonationTransferRepository{db: db, base: NewBaseRepository[models.DonationTransfer](db)}
}

// NewDonationTransferRepositoryTx binds the repository to an open transaction.
func NewDonationTransferRepositoryTx(tx *gorm.DB) IDonationTransferRepository {
	return &DonationTransferRepository{db: tx, base: NewBaseRepository[models.DonationTransfer](tx)}
}

func (r *DonationTransferRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *DonationTransferRepository) Create(ctx context.Context, transfer *models.DonationTransfer) error {
	if transfer == nil {
		return errors.New("nil transfer")
	}
	return r.getDB(ctx).Create(transfer).Error
}

func (r *DonationTransferRepository) FindByID(ctx context.Context, id uint) (*models.DonationTransfer, error) {
	return r.base.FindByID(ctx, id)
}

func (r *DonationTransferRepository) FindAll(ctx context.Context) ([]models.DonationTransfer, error) {
	var transfers []models.DonationTransfer
	err := r.getDB(ctx).Order("date DESC").Find(&transfers).Error
	return transfers, err
}

// Delete removes the batch row. The reference guard lives in the service;
// this is a plain delete.
func (r *DonationTransferRepository) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	result := r.getDB(ctx).Delete(&models.DonationTransfer{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ IDonationTransferRepository = (*DonationTransferRepository)(nil)
