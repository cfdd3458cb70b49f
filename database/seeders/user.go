package seeders

import (
	"errors"
	"os"

	"anneta.link/configs/configslog"
	"anneta.link/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedSystemUser creates or refreshes the administrative system user. The
// password comes from SYSTEM_USER_PASSWORD so it never lives in the tree.
func SeedSystemUser(db *gorm.DB) error {
	email := os.Getenv("SYSTEM_USER_EMAIL")
	password := os.Getenv("SYSTEM_USER_PASSWORD")
	if email == "" || password == "" {
		configslog.SLog.Warn("SYSTEM_USER_EMAIL or SYSTEM_USER_PASSWORD not set, skipping system user seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		configslog.Log.Error("Failed to hash system user password", zap.Error(err))
		return err
	}

	var existing models.User
	result := db.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		existing.PasswordHash = string(hash)
		existing.IsSystem = true
		if err := db.Save(&existing).Error; err != nil {
			configslog.Log.Error("Failed to update system user", zap.Error(err))
			return err
		}
		configslog.SLog.Infof("System user %s updated.", email)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Failed to look up system user", zap.Error(result.Error))
		return result.Error
	}

	user := models.User{
		Name:         "System",
		Email:        email,
		PasswordHash: string(hash),
		IsSystem:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		configslog.Log.Error("Failed to create system user", zap.Error(err))
		return err
	}
	configslog.SLog.Infof("System user %s created (ID: %d).", email, user.ID)
	return nil
}
