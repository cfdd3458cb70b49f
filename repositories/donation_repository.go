package repositories

import (
	"context"
	"errors"
	"time"

	"anneta.link/configs"
	"anneta.link/configs/configslog"
	"anneta.link/models"
	"anneta.link/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrAlreadyFinalized reports a finalize attempt on a donation whose
// finalized flag is already set. It is the store-level face of the
// webhook idempotency gate.
var ErrAlreadyFinalized = errors.New("donation already finalized")

// StatsFilter bounds the finalized-donation aggregations.
type StatsFilter struct {
	From                    *time.Time
	To                      *time.Time
	ExcludeOrganizationKeys []string
	External                *bool
}

// IDonationRepository is the ledger-side persistence of donations and their
// organization splits.
type IDonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	FindByID(ctx context.Context, id uint) (*models.Donation, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Donation, int64, error)
	ReplaceSplits(ctx context.Context, donationID uint, splits []models.OrganizationDonation) error
	Finalize(ctx context.Context, id uint, payerIBAN, paymentMethod string) error
	CountSplitsByOrganizationKey(ctx context.Context, key string) (int64, error)
	AssignTransferByDateRange(ctx context.Context, transferID uint, from, to time.Time) (int64, error)
	CountByTransferID(ctx context.Context, transferID uint) (int64, error)
	MarkSentToOrganization(ctx context.Context, ids []uint) (int64, error)
	SumFinalized(ctx context.Context, filter StatsFilter) (int64, error)
	CountFinalized(ctx context.Context, filter StatsFilter) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type DonationRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.Donation]
}

func NewDonationRepository() IDonationRepository {
	db := configs.GetDB()
	return &DonationRepository{db: db, base: NewBaseRepository[models.Donation](db)}
}

// NewDonationRepositoryTx binds the repository to an open transaction.
func NewDonationRepositoryTx(tx *gorm.DB) IDonationRepository {
	return &DonationRepository{db: tx, base: NewBaseRepository[models.Donation](tx)}
}

func (r *DonationRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	if donation == nil {
		return errors.New("nil donation")
	}
	return r.getDB(ctx).Create(donation).Error
}

func (r *DonationRepository) FindByID(ctx context.Context, id uint) (*models.Donation, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var donation models.Donation
	err := r.getDB(ctx).Preload("Donor").Preload("Splits").First(&donation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("DonationRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &donation, nil
}

func (r *DonationRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Donation, int64, error) {
	var donations []models.Donation
	var totalCount int64
	db := r.getDB(ctx)

	query := db.Model(&models.Donation{})
	if params.Status != "" {
		query = query.Where("finalized = ?", params.Status == "true")
	}

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("DonationRepository.Count (Paginated): DB error", zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return donations, 0, nil
	}

	allowedSortColumns := map[string]string{
		"id":         "id",
		"created_at": "created_at",
		"amount":     "amount",
		"finalized":  "finalized",
	}
	orderColumn, ok := allowedSortColumns[params.SortBy]
	if !ok {
		orderColumn = "created_at"
	}

	err := query.
		Preload("Donor").Preload("Splits").
		Order(orderColumn + " " + params.OrderBy).
		Limit(params.PerPage).Offset(params.CalculateOffset()).
		Find(&donations).Error
	if err != nil {
		configslog.Log.Error("DonationRepository.Find (Paginated): DB error", zap.Error(err))
		return nil, totalCount, err
	}
	return donations, totalCount, nil
}

// ReplaceSplits swaps a donation's split set wholesale: delete then insert
// inside one transaction, so no reader ever observes a partial set.
func (r *DonationRepository) ReplaceSplits(ctx context.Context, donationID uint, splits []models.OrganizationDonation) error {
	if donationID == 0 {
		return ErrNotFound
	}
	return r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("donation_id = ?", donationID).Delete(&models.OrganizationDonation{}).Error; err != nil {
			return err
		}
		for i := range splits {
			splits[i].ID = 0
			splits[i].DonationID = donationID
		}
		if len(splits) == 0 {
			return nil
		}
		return tx.Create(&splits).Error
	})
}

// Finalize flips the finalized flag and records the payment metadata in a
// single conditional update. Two concurrent webhook deliveries for the same
// donation see exactly one success; the loser gets ErrAlreadyFinalized.
func (r *DonationRepository) Finalize(ctx context.Context, id uint, payerIBAN, paymentMethod string) error {
	if id == 0 {
		return ErrNotFound
	}
	db := r.getDB(ctx)

	result := db.Model(&models.Donation{}).
		Where("id = ? AND finalized = ?", id, false).
		Updates(map[string]interface{}{
			"finalized":      true,
			"payer_iban":     payerIBAN,
			"payment_method": paymentMethod,
		})
	if result.Error != nil {
		configslog.Log.Error("DonationRepository.Finalize: DB error", zap.Uint("id", id), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Zero rows: either the donation does not exist or it was finalized
	// by an earlier delivery. Tell the two apart for the caller.
	var count int64
	if err := db.Model(&models.Donation{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadyFinalized
}

func (r *DonationRepository) CountSplitsByOrganizationKey(ctx context.Context, key string) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.OrganizationDonation{}).
		Where("organization_key = ?", key).Count(&count).Error
	return count, err
}

// AssignTransferByDateRange attaches every finalized, still-unassigned
// donation in [from, to) to the transfer batch and returns how many rows
// were claimed.
func (r *DonationRepository) AssignTransferByDateRange(ctx context.Context, transferID uint, from, to time.Time) (int64, error) {
	result := r.getDB(ctx).Model(&models.Donation{}).
		Where("finalized = ? AND transfer_id IS NULL AND created_at >= ? AND created_at < ?", true, from, to).
		Update("transfer_id", transferID)
	if result.Error != nil {
		configslog.Log.Error("DonationRepository.AssignTransferByDateRange: DB error",
			zap.Uint("transferID", transferID), zap.Error(result.Error))
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *DonationRepository) CountByTransferID(ctx context.Context, transferID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Donation{}).
		Where("transfer_id = ?", transferID).Count(&count).Error
	return count, err
}

func (r *DonationRepository) MarkSentToOrganization(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.getDB(ctx).Model(&models.Donation{}).
		Where("id IN ?", ids).
		Update("sent_to_organization", true)
	return result.RowsAffected, result.Error
}

// SumFinalized sums finalized money through the split table so that
// individual organization keys can be excluded; without exclusions the
// result equals the sum of the donations themselves, since splits always
// sum to their donation.
func (r *DonationRepository) SumFinalized(ctx context.Context, filter StatsFilter) (int64, error) {
	query := r.getDB(ctx).Model(&models.OrganizationDonation{}).
		Joins("JOIN donations ON donations.id = organization_donations.donation_id").
		Where("donations.finalized = ?", true)
	query = applyStatsFilter(query, filter)

	var total *int64
	if err := query.Select("SUM(organization_donations.amount)").Scan(&total).Error; err != nil {
		configslog.Log.Error("DonationRepository.SumFinalized: DB error", zap.Error(err))
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *DonationRepository) CountFinalized(ctx context.Context, filter StatsFilter) (int64, error) {
	query := r.getDB(ctx).Model(&models.Donation{}).Where("donations.finalized = ?", true)
	if filter.From != nil {
		query = query.Where("donations.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("donations.created_at < ?", *filter.To)
	}
	if filter.External != nil {
		query = query.Where("donations.external = ?", *filter.External)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func applyStatsFilter(query *gorm.DB, filter StatsFilter) *gorm.DB {
	if filter.From != nil {
		query = query.Where("donations.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("donations.created_at < ?", *filter.To)
	}
	if filter.External != nil {
		query = query.Where("donations.external = ?", *filter.External)
	}
	if len(filter.ExcludeOrganizationKeys) > 0 {
		query = query.Where("organization_donations.organization_key NOT IN ?", filter.ExcludeOrganizationKeys)
	}
	return query
}

func (r *DonationRepository) CountAll(ctx context.Context) (int64, error) {
	return r.base.CountAll(ctx)
}

var _ IDonationRepository = (*DonationRepository)(nil)
