package models

import "time"

// BaseModel is embedded by every persisted model. The ledger never deletes
// rows, so there is no soft-delete column here.
type BaseModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
