package models

// Organization is a catalog record for a beneficiary. The ledger references
// it only through Key, never through the numeric ID, so catalog rows can be
// renumbered or migrated without breaking history. An organization with
// ledger history may be deactivated but never deleted.
type Organization struct {
	BaseModel
	Key         string `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Homepage    string `gorm:"type:varchar(500)" json:"homepage"`
	Active      bool   `gorm:"default:true;index" json:"active"`
}

// Cause groups organizations under a theme and carries its default share
// of an unspecified donation, out of allocator.Denominator.
type Cause struct {
	BaseModel
	Key        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Name       string `gorm:"type:varchar(255);not null" json:"name"`
	Proportion int64  `gorm:"not null" json:"proportion"`
	Active     bool   `gorm:"default:true;index" json:"active"`

	Organizations []CauseOrganization `gorm:"foreignKey:CauseID" json:"organizations,omitempty"`
}

// CauseOrganization fixes an organization's share within its cause, out of
// allocator.Denominator.
type CauseOrganization struct {
	BaseModel
	CauseID         uint   `gorm:"index;not null" json:"cause_id"`
	OrganizationKey string `gorm:"type:varchar(100);index;not null" json:"organization_key"`
	Proportion      int64  `gorm:"not null" json:"proportion"`
}
