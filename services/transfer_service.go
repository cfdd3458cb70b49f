package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anneta.link/configs/configslog"
	"anneta.link/models"
	"anneta.link/repositories"
)

// TransferServiceError are the transfer-batch failures.
type TransferServiceError string

func (e TransferServiceError) Error() string { return string(e) }

const (
	ErrTransferNotFound   TransferServiceError = "transfer batch not found"
	ErrTransferReferenced TransferServiceError = "transfer batch still has assigned donations"
	ErrBadDateRange       TransferServiceError = "date range is empty or inverted"
)

// ITransferService manages transfer batches: operator-invoked, no
// background scheduling.
type ITransferService interface {
	CreateTransfer(ctx context.Context, date time.Time, recipient, notes string) (*models.DonationTransfer, error)
	AssignByDateRange(ctx context.Context, transferID uint, from, to time.Time) (int64, error)
	DeleteTransfer(ctx context.Context, id uint) error
	MarkSentToOrganization(ctx context.Context, donationIDs []uint) (int64, error)
	GetTransfers(ctx context.Context) ([]models.DonationTransfer, error)
}

type TransferService struct {
	transferRepo repositories.IDonationTransferRepository
	donationRepo repositories.IDonationRepository
}

func NewTransferService() ITransferService {
	return &TransferService{
		transferRepo: repositories.NewDonationTransferRepository(),
		donationRepo: repositories.NewDonationRepository(),
	}
}

func (s *TransferService) CreateTransfer(ctx context.Context, date time.Time, recipient, notes string) (*models.DonationTransfer, error) {
	transfer := &models.DonationTransfer{Date: date, Recipient: recipient, Notes: notes}
	if err := s.transferRepo.Create(ctx, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// AssignByDateRange bulk-assigns finalized, unassigned donations created in
// [from, to) to the batch and returns the number claimed.
func (s *TransferService) AssignByDateRange(ctx context.Context, transferID uint, from, to time.Time) (int64, error) {
	if !from.Before(to) {
		return 0, ErrBadDateRange
	}
	if _, err := s.transferRepo.FindByID(ctx, transferID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrTransferNotFound
		}
		return 0, err
	}

	assigned, err := s.donationRepo.AssignTransferByDateRange(ctx, transferID, from, to)
	if err != nil {
		return 0, err
	}
	configslog.SLog.Infof("transfer %d: %d donations assigned (%s to %s)",
		transferID, assigned, from.Format(time.DateOnly), to.Format(time.DateOnly))
	return assigned, nil
}

// DeleteTransfer removes an empty batch. A batch with assigned donations is
// kept; unassign or re-batch them first.
func (s *TransferService) DeleteTransfer(ctx context.Context, id uint) error {
	count, err := s.donationRepo.CountByTransferID(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d donations", ErrTransferReferenced, count)
	}
	if err := s.transferRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTransferNotFound
		}
		return err
	}
	configslog.SLog.Infof("transfer %d deleted", id)
	return nil
}

func (s *TransferService) MarkSentToOrganization(ctx context.Context, donationIDs []uint) (int64, error) {
	return s.donationRepo.MarkSentToOrganization(ctx, donationIDs)
}

func (s *TransferService) GetTransfers(ctx context.Context) ([]models.DonationTransfer, error) {
	return s.transferRepo.FindAll(ctx)
}

var _ ITransferService = (*TransferService)(nil)
