package models

// Donation is one incoming payment. It is created unfinalized; the payment
// provider's callback flips Finalized exactly once. After that only
// transfer-batch assignment and sent-to-organization bookkeeping may touch
// the row. Amount is in minor units (cents) and always equals the sum of
// the donation's splits.
type Donation struct {
	BaseModel
	DonorID *uint  `gorm:"index" json:"donor_id"` // nullable: legacy/anonymous rows
	Donor   *Donor `gorm:"foreignKey:DonorID" json:"donor,omitempty"`

	Amount        int64  `gorm:"not null" json:"amount"`
	Finalized     bool   `gorm:"default:false;index" json:"finalized"`
	PaymentMethod string `gorm:"type:varchar(100)" json:"payment_method"`
	PayerIBAN     string `gorm:"type:varchar(34)" json:"payer_iban"`
	Comment       string `gorm:"type:text" json:"comment"`

	RecurringDonationID *uint `gorm:"index" json:"recurring_donation_id"`
	TransferID          *uint `gorm:"index" json:"transfer_id"`

	DedicationName    string `gorm:"type:varchar(255)" json:"dedication_name"`
	DedicationEmail   string `gorm:"type:varchar(255)" json:"dedication_email"`
	DedicationMessage string `gorm:"type:text" json:"dedication_message"`

	External           bool `gorm:"default:false;index" json:"external"`
	SentToOrganization bool `gorm:"default:false" json:"sent_to_organization"`

	Splits []OrganizationDonation `gorm:"foreignKey:DonationID" json:"splits,omitempty"`
}

// OrganizationDonation allocates part of a donation to one catalog
// organization, referenced only by its stable external key. Split sets are
// replaced wholesale, never patched row by row.
type OrganizationDonation struct {
	BaseModel
	DonationID      uint   `gorm:"index;not null" json:"donation_id"`
	OrganizationKey string `gorm:"type:varchar(100);index;not null" json:"organization_key"`
	Amount          int64  `gorm:"not null" json:"amount"`
}
