package models

// RecurringDonation is the template of a donor's standing order: the
// intended per-period amount and its intended allocation. Incoming bank
// payments that match it are instantiated into concrete Donations, resized
// when the received amount differs from the template. Cancelled templates
// are deactivated, never deleted.
type RecurringDonation struct {
	BaseModel
	DonorID *uint  `gorm:"index" json:"donor_id"`
	Donor   *Donor `gorm:"foreignKey:DonorID" json:"donor,omitempty"`

	Amount int64 `gorm:"not null" json:"amount"` // minor units per period
	Active bool  `gorm:"default:true;index" json:"active"`

	Bank        string `gorm:"type:varchar(50)" json:"bank"` // donor-chosen bank for the standing-order deep link
	CompanyName string `gorm:"type:varchar(255)" json:"company_name"`
	CompanyCode string `gorm:"type:varchar(50)" json:"company_code"`
	Comment     string `gorm:"type:text" json:"comment"`

	Splits []OrganizationRecurringDonation `gorm:"foreignKey:RecurringDonationID" json:"splits,omitempty"`
}

// OrganizationRecurringDonation is a recurring template's split toward one
// organization, same semantics as OrganizationDonation.
type OrganizationRecurringDonation struct {
	BaseModel
	RecurringDonationID uint   `gorm:"index;not null" json:"recurring_donation_id"`
	OrganizationKey     string `gorm:"type:varchar(100);index;not null" json:"organization_key"`
	Amount              int64  `gorm:"not null" json:"amount"`
}
