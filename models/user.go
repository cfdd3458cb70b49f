package models

// User is an operator account. Nothing in the donation flow reads it; the
// seeded system user exists for administrative tooling.
type User struct {
	BaseModel
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	IsSystem     bool   `gorm:"default:false" json:"is_system"`
}
