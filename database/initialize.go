package database

import (
	"anneta.link/configs/configslog"
	"anneta.link/database/migrations"
	"anneta.link/database/seeders"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Initialize runs migrations and seeders inside one transaction. Either
// flag may be false; with both false it is a no-op.
func Initialize(db *gorm.DB, migrate bool, seed bool) {
	if !migrate && !seed {
		configslog.SLog.Info("Neither migrate nor seed requested, nothing to do.")
		return
	}

	tx := db.Begin()
	if tx.Error != nil {
		configslog.Log.Fatal("Failed to begin database transaction", zap.Error(tx.Error))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			configslog.Log.Fatal("Database initialization panicked", zap.Any("panic_info", r))
		} else if err := tx.Error; err != nil && err != gorm.ErrInvalidTransaction {
			configslog.SLog.Warn("Rolling back after initialization error.", zap.Error(err))
			rbErr := tx.Rollback().Error
			if rbErr != nil && rbErr != gorm.ErrInvalidTransaction {
				configslog.Log.Error("Rollback itself failed", zap.Error(rbErr))
			}
		}
	}()

	configslog.SLog.Info("Database initialization starting...")

	if migrate {
		if err := RunMigrationsInOrder(tx); err != nil {
			configslog.Log.Error("Migration failed", zap.Error(err))
			return
		}
		configslog.SLog.Info("Migrations complete.")
	}

	if seed {
		if err := CheckAndRunSeeders(tx); err != nil {
			configslog.Log.Error("Seeding failed", zap.Error(err))
			return
		}
		configslog.SLog.Info("Seeders complete.")
	}

	if err := tx.Commit().Error; err != nil {
		tx.Error = err
		configslog.Log.Error("Commit failed", zap.Error(err))
		return
	}

	configslog.SLog.Info("Database initialization finished successfully")
}

// RunMigrationsInOrder migrates tables parents first so foreign keys
// resolve.
func RunMigrationsInOrder(db *gorm.DB) error {
	steps := []struct {
		name string
		run  func(*gorm.DB) error
	}{
		{"users", migrations.MigrateUsersTable},
		{"catalog", migrations.MigrateCatalogTables},
		{"donors", migrations.MigrateDonorsTable},
		{"recurring donations", migrations.MigrateRecurringDonationsTables},
		{"donation transfers", migrations.MigrateDonationTransfersTable},
		{"donations", migrations.MigrateDonationsTables},
		{"payment events", migrations.MigratePaymentEventsTable},
	}
	for _, step := range steps {
		configslog.SLog.Infof(" -> Migrating %s...", step.name)
		if err := step.run(db); err != nil {
			configslog.Log.Error("Migration step failed", zap.String("step", step.name), zap.Error(err))
			return err
		}
	}
	return nil
}

func CheckAndRunSeeders(db *gorm.DB) error {
	configslog.SLog.Info(" -> Seeding system user...")
	if err := seeders.SeedSystemUser(db); err != nil {
		return err
	}

	configslog.SLog.Info(" -> Seeding causes...")
	if err := seeders.SeedCauses(db); err != nil {
		return err
	}

	return nil
}
