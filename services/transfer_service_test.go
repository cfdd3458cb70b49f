package services

import (
	"context"
	"testing"
	"time"

	"anneta.link/models"
	"anneta.link/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestTransferService(db *gorm.DB) *TransferService {
	return &TransferService{
		transferRepo: repositories.NewDonationTransferRepositoryTx(db),
		donationRepo: repositories.NewDonationRepositoryTx(db),
	}
}

func TestAssignByDateRangeClaimsOnlyFinalized(t *testing.T) {
	db := newTestDB(t)
	svc := newTestTransferService(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	finalized := &models.Donation{Amount: 1000, Finalized: true}
	pending := &models.Donation{Amount: 500}
	require.NoError(t, db.Create(finalized).Error)
	require.NoError(t, db.Create(pending).Error)
	require.NoError(t, db.Model(finalized).Update("created_at", base.AddDate(0, 0, 3)).Error)
	require.NoError(t, db.Model(pending).Update("created_at", base.AddDate(0, 0, 3)).Error)

	transfer, err := svc.CreateTransfer(ctx, base.AddDate(0, 1, 0), "MTU Anneta", "May batch")
	require.NoError(t, err)

	assigned, err := svc.AssignByDateRange(ctx, transfer.ID, base, base.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), assigned)

	var stored models.Donation
	require.NoError(t, db.First(&stored, finalized.ID).Error)
	require.NotNil(t, stored.TransferID)
	assert.Equal(t, transfer.ID, *stored.TransferID)

	require.NoError(t, db.First(&stored, pending.ID).Error)
	assert.Nil(t, stored.TransferID)
}

func TestAssignByDateRangeRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	svc := newTestTransferService(db)
	ctx := context.Background()

	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.AssignByDateRange(ctx, 1, day, day)
	assert.ErrorIs(t, err, ErrBadDateRange)

	_, err = svc.AssignByDateRange(ctx, 999, day, day.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, ErrTransferNotFound)
}

func TestDeleteTransferGuardedByReferences(t *testing.T) {
	db := newTestDB(t)
	svc := newTestTransferService(db)
	ctx := context.Background()

	transfer, err := svc.CreateTransfer(ctx, time.Now(), "MTU Anneta", "")
	require.NoError(t, err)

	donation := &models.Donation{Amount: 1000, Finalized: true, TransferID: &transfer.ID}
	require.NoError(t, db.Create(donation).Error)

	err = svc.DeleteTransfer(ctx, transfer.ID)
	assert.ErrorIs(t, err, ErrTransferReferenced)

	require.NoError(t, db.Model(donation).Update("transfer_id", nil).Error)
	require.NoError(t, svc.DeleteTransfer(ctx, transfer.ID))

	err = svc.DeleteTransfer(ctx, transfer.ID)
	assert.ErrorIs(t, err, ErrTransferNotFound)
}

func TestMarkSentToOrganization(t *testing.T) {
	db := newTestDB(t)
	svc := newTestTransferService(db)
	ctx := context.Background()

	donation := &models.Donation{Amount: 1000, Finalized: true}
	require.NoError(t, db.Create(donation).Error)

	marked, err := svc.MarkSentToOrganization(ctx, []uint{donation.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	var stored models.Donation
	require.NoError(t, db.First(&stored, donation.ID).Error)
	assert.True(t, stored.SentToOrganization)
}
