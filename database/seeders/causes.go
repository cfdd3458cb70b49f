package seeders

import (
	"errors"
	"fmt"
	"os"

	"anneta.link/configs/configslog"
	"anneta.link/models"
	"anneta.link/pkg/allocator"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type seedOrganization struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Homepage    string `yaml:"homepage"`
	Proportion  int64  `yaml:"proportion"`
}

type seedCause struct {
	Key           string             `yaml:"key"`
	Name          string             `yaml:"name"`
	Proportion    int64              `yaml:"proportion"`
	Organizations []seedOrganization `yaml:"organizations"`
}

type seedFile struct {
	Causes []seedCause `yaml:"causes"`
}

// SeedCauses loads the cause/organization tree from the YAML file named by
// CAUSE_SEED_FILE and inserts any causes not present yet. Existing causes
// are left untouched; editing live proportions is a manual operation.
func SeedCauses(db *gorm.DB) error {
	path := os.Getenv("CAUSE_SEED_FILE")
	if path == "" {
		configslog.SLog.Info("CAUSE_SEED_FILE not set, skipping cause seed")
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading cause seed file: %w", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing cause seed file: %w", err)
	}

	for _, cause := range file.Causes {
		if err := validateSeedCause(cause); err != nil {
			return err
		}
	}

	var created int
	for _, cause := range file.Causes {
		var existing models.Cause
		result := db.Where("key = ?", cause.Key).First(&existing)
		if result.Error == nil {
			configslog.SLog.Debugf("Cause %q already present, skipping.", cause.Key)
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		record := models.Cause{
			Key:        cause.Key,
			Name:       cause.Name,
			Proportion: cause.Proportion,
			Active:     true,
		}
		for _, org := range cause.Organizations {
			if err := ensureOrganization(db, org); err != nil {
				return err
			}
			record.Organizations = append(record.Organizations, models.CauseOrganization{
				OrganizationKey: org.Key,
				Proportion:      org.Proportion,
			})
		}
		if err := db.Create(&record).Error; err != nil {
			return err
		}
		created++
	}

	if created > 0 {
		configslog.SLog.Infof("Seeded %d new causes.", created)
	} else {
		configslog.SLog.Info("All causes already present.")
	}
	return nil
}

// validateSeedCause rejects trees whose organization proportions do not
// cover the cause exactly. A bad seed would make every allocation leak.
func validateSeedCause(cause seedCause) error {
	if cause.Key == "" || cause.Name == "" {
		return fmt.Errorf("cause seed entry missing key or name")
	}
	if len(cause.Organizations) == 0 {
		return fmt.Errorf("cause %q has no organizations", cause.Key)
	}
	var sum int64
	for _, org := range cause.Organizations {
		if org.Key == "" {
			return fmt.Errorf("cause %q has an organization without a key", cause.Key)
		}
		if org.Proportion < 0 {
			return fmt.Errorf("cause %q organization %q has a negative proportion", cause.Key, org.Key)
		}
		sum += org.Proportion
	}
	if sum != allocator.Denominator {
		return fmt.Errorf("cause %q organization proportions sum to %d, want %d", cause.Key, sum, allocator.Denominator)
	}
	return nil
}

func ensureOrganization(db *gorm.DB, org seedOrganization) error {
	var existing models.Organization
	result := db.Where("key = ?", org.Key).First(&existing)
	if result.Error == nil {
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return db.Create(&models.Organization{
		Key:         org.Key,
		Name:        org.Name,
		Description: org.Description,
		Homepage:    org.Homepage,
		Active:      true,
	}).Error
}
