package migrations

import (
	"anneta.link/configs/configslog"
	"anneta.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateCatalogTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating catalog tables...")
	if err := db.AutoMigrate(&models.Organization{}, &models.Cause{}, &models.CauseOrganization{}); err != nil {
		configslog.Log.Error("Failed to migrate catalog tables", zap.Error(err))
		return err
	}
	return nil
}

func MigrateUsersTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating users table...")
	if err := db.AutoMigrate(&models.User{}); err != nil {
		configslog.Log.Error("Failed to migrate users table", zap.Error(err))
		return err
	}
	return nil
}
