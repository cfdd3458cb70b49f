package migrations

import (
	"anneta.link/configs/configslog"
	"anneta.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateDonorsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating donors table...")
	if err := db.AutoMigrate(&models.Donor{}); err != nil {
		configslog.Log.Error("Failed to migrate donors table", zap.Error(err))
		return err
	}
	return nil
}

func MigrateDonationsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating donations tables...")
	if err := db.AutoMigrate(&models.Donation{}, &models.OrganizationDonation{}); err != nil {
		configslog.Log.Error("Failed to migrate donations tables", zap.Error(err))
		return err
	}
	return nil
}

func MigrateRecurringDonationsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating recurring donations tables...")
	if err := db.AutoMigrate(&models.RecurringDonation{}, &models.OrganizationRecurringDonation{}); err != nil {
		configslog.Log.Error("Failed to migrate recurring donations tables", zap.Error(err))
		return err
	}
	return nil
}

func MigrateDonationTransfersTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating donation transfers table...")
	if err := db.AutoMigrate(&models.DonationTransfer{}); err != nil {
		configslog.Log.Error("Failed to migrate donation transfers table", zap.Error(err))
		return err
	}
	return nil
}

func MigratePaymentEventsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating payment events table...")
	if err := db.AutoMigrate(&models.PaymentEvent{}); err != nil {
		configslog.Log.Error("Failed to migrate payment events table", zap.Error(err))
		return err
	}
	return nil
}
