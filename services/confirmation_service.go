package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"anneta.link/configs"
	"anneta.link/configs/configslog"
	"anneta.link/models"
	"anneta.link/repositories"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ConfirmationServiceError are the webhook-processing failures.
type ConfirmationServiceError string

func (e ConfirmationServiceError) Error() string { return string(e) }

const (
	ErrPaymentNotPaid           ConfirmationServiceError = "payment status is not PAID"
	ErrBadMerchantReference     ConfirmationServiceError = "merchant reference carries no donation id"
	ErrDonationAlreadyProcessed ConfirmationServiceError = "donation was already finalized"
)

// DonationReceipt is what Decode returns for receipt display: the donation
// with donor, plus the catalog records of every organization in its splits.
type DonationReceipt struct {
	Donation      *models.Donation               `json:"donation"`
	Organizations map[string]models.Organization `json:"organizations"`
}

// IConfirmationService drives the donation state machine from provider
// callbacks.
type IConfirmationService interface {
	Confirm(ctx context.Context, token string) (*models.Donation, error)
	Decode(ctx context.Context, token string) (*DonationReceipt, error)
}

// ConfirmationService finalizes donations exactly once. The idempotency
// gate is the repository's conditional update, not a read-then-write.
type ConfirmationService struct {
	gateway      IPaymentGateway
	donationRepo repositories.IDonationRepository
	eventRepo    repositories.IPaymentEventRepository
	resolver     IOrganizationResolver
	notifier     INotificationService
}

func NewConfirmationService(cfg *configs.AppConfig) IConfirmationService {
	return &ConfirmationService{
		gateway:      NewPaymentGateway(cfg.Payment),
		donationRepo: repositories.NewDonationRepository(),
		eventRepo:    repositories.NewPaymentEventRepository(),
		resolver:     NewOrganizationResolver(),
		notifier:     NewLogNotificationService(),
	}
}

// donationIDFromReference parses the trailing integer of a merchant
// reference like "donation 1042".
func donationIDFromReference(reference string) (uint, error) {
	fields := strings.Fields(reference)
	if len(fields) == 0 {
		return 0, ErrBadMerchantReference
	}
	id, err := strconv.ParseUint(fields[len(fields)-1], 10, 64)
	if err != nil || id == 0 {
		return 0, ErrBadMerchantReference
	}
	return uint(id), nil
}

// Confirm verifies the callback token and finalizes the referenced
// donation. Repeated deliveries of the same token finalize once; every
// later call returns ErrDonationAlreadyProcessed and sends no email.
func (s *ConfirmationService) Confirm(ctx context.Context, token string) (*models.Donation, error) {
	callback, err := s.gateway.DecodeCallback(token)
	if err != nil {
		return nil, err
	}
	if callback.Status != PaymentStatusPaid {
		configslog.SLog.Warnf("callback with status %q ignored (reference %q)", callback.Status, callback.Reference)
		return nil, ErrPaymentNotPaid
	}

	donationID, err := donationIDFromReference(callback.Reference)
	if err != nil {
		return nil, err
	}

	err = s.donationRepo.Finalize(ctx, donationID, callback.CustomerIBAN, callback.PaymentMethodName)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrDonationNotFound
		case errors.Is(err, repositories.ErrAlreadyFinalized):
			return nil, ErrDonationAlreadyProcessed
		default:
			return nil, err
		}
	}

	s.recordEvent(ctx, donationID, callback)

	donation, err := s.donationRepo.FindByID(ctx, donationID)
	if err != nil {
		// Finalization already happened; a read failure here must not
		// pretend otherwise.
		configslog.Log.Error("finalized donation could not be re-read",
			zap.Uint("donationID", donationID), zap.Error(err))
		return nil, err
	}

	s.dispatchEmails(ctx, donation)

	configslog.SLog.Infof("donation %d finalized via %s", donation.ID, donation.PaymentMethod)
	return donation, nil
}

// Decode verifies the token and assembles the receipt. It never mutates
// finalization state.
func (s *ConfirmationService) Decode(ctx context.Context, token string) (*DonationReceipt, error) {
	callback, err := s.gateway.DecodeCallback(token)
	if err != nil {
		return nil, err
	}
	donationID, err := donationIDFromReference(callback.Reference)
	if err != nil {
		return nil, err
	}

	donation, err := s.donationRepo.FindByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}

	keys := make([]string, 0, len(donation.Splits))
	for _, sp := range donation.Splits {
		keys = append(keys, sp.OrganizationKey)
	}
	orgs, err := s.resolver.FindManyByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}

	return &DonationReceipt{Donation: donation, Organizations: orgs}, nil
}

func (s *ConfirmationService) recordEvent(ctx context.Context, donationID uint, callback *PaymentCallback) {
	payload, err := json.Marshal(callback.Raw)
	if err != nil {
		payload = []byte("{}")
	}
	event := &models.PaymentEvent{
		DonationID: donationID,
		Status:     callback.Status,
		Payload:    datatypes.JSON(payload),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		// Audit only; the finalization stands.
		configslog.Log.Error("payment event could not be recorded",
			zap.Uint("donationID", donationID), zap.Error(err))
	}
}

// dispatchEmails sends exactly one confirmation (template chosen by the
// external flag) and, when a dedication address exists, exactly one
// dedication email. Failures are logged, never retried.
func (s *ConfirmationService) dispatchEmails(ctx context.Context, donation *models.Donation) {
	var err error
	if donation.External {
		err = s.notifier.SendExternalConfirmation(ctx, donation.ID)
	} else {
		err = s.notifier.SendConfirmation(ctx, donation.ID)
	}
	if err != nil {
		configslog.Log.Error("confirmation email dispatch failed",
			zap.Uint("donationID", donation.ID), zap.Error(err))
	}

	if donation.DedicationEmail != "" {
		if err := s.notifier.SendDedication(ctx, donation.ID); err != nil {
			configslog.Log.Error("dedication email dispatch failed",
				zap.Uint("donationID", donation.ID), zap.Error(err))
		}
	}
}

var _ IConfirmationService = (*ConfirmationService)(nil)
