package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"anneta.link/configs"
	"anneta.link/configs/configslog"
	"anneta.link/models"
	"anneta.link/repositories"

	"gorm.io/gorm"
)

// LedgerDump is the migration format: the complete ledger as one JSON
// document, primary keys included, so history can be moved between
// deployments byte-exactly.
type LedgerDump struct {
	Donors             []models.Donor                         `json:"donors"`
	Donations          []models.Donation                      `json:"donations"`
	RecurringDonations []models.RecurringDonation             `json:"recurring_donations"`
	RecurringSplits    []models.OrganizationRecurringDonation `json:"recurring_splits"`
	Transfers          []models.DonationTransfer              `json:"transfers"`
}

// IExportService exports and imports the whole ledger. Operator-invoked
// through the CLI; not part of the request path.
type IExportService interface {
	Export(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, r io.Reader) error
}

type ExportService struct {
	db *gorm.DB
}

func NewExportService() IExportService {
	return &ExportService{db: configs.GetDB()}
}

func (s *ExportService) Export(ctx context.Context, w io.Writer) error {
	var dump LedgerDump
	db := s.db.WithContext(ctx)

	if err := db.Order("id").Find(&dump.Donors).Error; err != nil {
		return err
	}
	if err := db.Preload("Splits").Order("id").Find(&dump.Donations).Error; err != nil {
		return err
	}
	if err := db.Order("id").Find(&dump.RecurringDonations).Error; err != nil {
		return err
	}
	if err := db.Order("id").Find(&dump.RecurringSplits).Error; err != nil {
		return err
	}
	if err := db.Order("id").Find(&dump.Transfers).Error; err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&dump); err != nil {
		return err
	}
	configslog.SLog.Infof("ledger exported: %d donors, %d donations, %d recurring donations",
		len(dump.Donors), len(dump.Donations), len(dump.RecurringDonations))
	return nil
}

// Import loads a dump into an empty ledger. It refuses to run on top of
// existing rows; migration is all-or-nothing inside one transaction.
func (s *ExportService) Import(ctx context.Context, r io.Reader) error {
	var dump LedgerDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return fmt.Errorf("ledger dump is not valid JSON: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		donationRepoTx := repositories.NewDonationRepositoryTx(tx)
		existing, err := donationRepoTx.CountAll(ctx)
		if err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("ledger already contains %d donations, refusing to import", existing)
		}

		if len(dump.Donors) > 0 {
			if err := tx.CreateInBatches(&dump.Donors, 500).Error; err != nil {
				return err
			}
		}
		if len(dump.Transfers) > 0 {
			if err := tx.CreateInBatches(&dump.Transfers, 500).Error; err != nil {
				return err
			}
		}
		if len(dump.RecurringDonations) > 0 {
			if err := tx.CreateInBatches(&dump.RecurringDonations, 500).Error; err != nil {
				return err
			}
		}
		if len(dump.RecurringSplits) > 0 {
			if err := tx.CreateInBatches(&dump.RecurringSplits, 500).Error; err != nil {
				return err
			}
		}
		if len(dump.Donations) > 0 {
			// Splits ride along through the association.
			if err := tx.CreateInBatches(&dump.Donations, 200).Error; err != nil {
				return err
			}
		}
		configslog.SLog.Infof("ledger imported: %d donors, %d donations", len(dump.Donors), len(dump.Donations))
		return nil
	})
}

var _ IExportService = (*ExportService)(nil)
