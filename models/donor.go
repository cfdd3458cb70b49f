package models

// Donor is a person (or company contact) who has donated at least once.
// Identity is the national ID code when present, otherwise the email.
// Donors are upserted on every donation and never deleted; ledger history
// points at them.
type Donor struct {
	BaseModel
	IDCode    string `gorm:"type:varchar(11);index" json:"id_code"`
	Name      string `gorm:"type:varchar(255)" json:"name"`
	Email     string `gorm:"type:varchar(255);index" json:"email"`
	Recurring bool   `gorm:"default:false" json:"recurring"`
}
