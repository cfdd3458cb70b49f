package models

import "time"

// DonationTransfer is a batch of finalized donations forwarded to the
// recipient organizations on a given date. Donations are assigned to it in
// bulk by date range; the batch can only be deleted while nothing
// references it.
type DonationTransfer struct {
	BaseModel
	Date      time.Time `gorm:"index;type:timestamptz;not null" json:"date"`
	Recipient string    `gorm:"type:varchar(255)" json:"recipient"`
	Notes     string    `gorm:"type:text" json:"notes"`
}
