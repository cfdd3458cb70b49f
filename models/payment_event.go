package models

import "gorm.io/datatypes"

// PaymentEvent is the audit trail of accepted provider callbacks: one row
// per finalization, insert-only, holding the decoded callback payload.
type PaymentEvent struct {
	BaseModel
	DonationID uint           `gorm:"index;not null" json:"donation_id"`
	Status     string         `gorm:"type:varchar(50);not null" json:"status"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload"`
}
