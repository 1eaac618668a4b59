package models

import "time"

// Base carries the surrogate key and the audit timestamps shared by the
// users and partenaires tables. Column names follow the existing schema.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:date_creation" json:"dateCreation"`
	UpdatedAt time.Time `gorm:"column:date_modification" json:"dateModification"`
}
