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

// IDonorRepository covers donor persistence. Donors are upserted on every
// donation and never deleted.
type IDonorRepository interface {
	Create(ctx context.Context, donor *models.Donor) error
	Update(ctx context.Context, donor *models.Donor) error
	FindByID(ctx context.Context, id uint) (*models.Donor, error)
	FindByIDCode(ctx context.Context, idCode string) (*models.Donor, error)
	FindByEmail(ctx context.Context, email string) (*models.Donor, error)
	CountAll(ctx context.Context) (int64, error)
}

type DonorRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.Donor]
}

func NewDonorRepository() IDonorRepository {
	db := configs.GetDB()
	return &DonorRepository{db: db, base: NewBaseRepository[models.Donor](db)}
}

// NewDonorRepositoryTx binds the repository to an open transaction.
func NewDonorRepositoryTx(tx *gorm.DB) IDonorRepository {
	return &DonorRepository{db: tx, base: NewBaseRepository[models.Donor](tx)}
}

func (r *DonorRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *DonorRepository) Create(ctx context.Context, donor *models.Donor) error {
	if donor == nil {
		return errors.New("nil donor")
	}
	return r.getDB(ctx).Create(donor).Error
}

func (r *DonorRepository) Update(ctx context.Context, donor *models.Donor) error {
	if donor == nil || donor.ID == 0 {
		return errors.New("donor has no ID")
	}
	return r.getDB(ctx).Save(donor).Error
}

func (r *DonorRepository) FindByID(ctx context.Context, id uint) (*models.Donor, error) {
	return r.base.FindByID(ctx, id)
}

func (r *DonorRepository) FindByIDCode(ctx context.Context, idCode string) (*models.Donor, error) {
	if idCode == "" {
		return nil, ErrNotFound
	}
	var donor models.Donor
	err := r.getDB(ctx).Where("id_code = ?", idCode).First(&donor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("DonorRepository.FindByIDCode: DB error", zap.Error(err))
		return nil, err
	}
	return &donor, nil
}

// FindByEmail matches donors without an ID code only; a donor identified by
// ID code is never matched by email alone.
func (r *DonorRepository) FindByEmail(ctx context.Context, email string) (*models.Donor, error) {
	if email == "" {
		return nil, ErrNotFound
	}
	var donor models.Donor
	err := r.getDB(ctx).Where("email = ? AND id_code = ''", email).First(&donor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("DonorRepository.FindByEmail: DB error", zap.Error(err))
		return nil, err
	}
	return &donor, nil
}

func (r *DonorRepository) CountAll(ctx context.Context) (int64, error) {
	return r.base.CountAll(ctx)
}

var _ IDonorRepository = (*DonorRepository)(nil)
