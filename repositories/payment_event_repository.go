package repositories

import (
	"context"
	"errors"

	"anneta.link/configs"
	"anneta.link/models"

	"gorm.io/gorm"
)

// IPaymentEventRepository is the insert-only webhook audit trail.
type IPaymentEventRepository interface {
	Create(ctx context.Context, event *models.PaymentEvent) error
	FindByDonationID(ctx context.Context, donationID uint) ([]models.PaymentEvent, error)
}

type PaymentEventRepository struct {
	db *gorm.DB
}

func NewPaymentEventRepository() IPaymentEventRepository {
	return &PaymentEventRepository{db: configs.GetDB()}
}

// NewPaymentEventRepositoryTx binds the repository to an open transaction.
func NewPaymentEventRepositoryTx(tx *gorm.DB) IPaymentEventRepository {
	return &PaymentEventRepository{db: tx}
}

func (r *PaymentEventRepository) Create(ctx context.Context, event *models.PaymentEvent) error {
	if event == nil || event.DonationID == 0 {
		return errors.New("payment event needs a donation reference")
	}
	return dbFromContext(ctx, r.db).Create(event).Error
}

func (r *PaymentEventRepository) FindByDonationID(ctx context.Context, donationID uint) ([]models.PaymentEvent, error) {
	var events []models.PaymentEvent
	err := dbFromContext(ctx, r.db).
		Where("donation_id = ?", donationID).Order("id").Find(&events).Error
	return events, err
}

var _ IPaymentEventRepository = (*PaymentEventRepository)(nil)
