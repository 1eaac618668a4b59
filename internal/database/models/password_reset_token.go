package models

import "time"

// PasswordResetToken is a one-time credential for the forgot-password flow.
// Only a bcrypt hash of the raw token is stored, plus TokenLookup, a short
// non-secret digest prefix used to find candidate rows without scanning the
// whole table. UserID is a plain reference: the row does not own the user.
type PasswordResetToken struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	TokenLookup string    `gorm:"column:token_lookup;size:16;not null;index" json:"-"`
	TokenHash   string    `gorm:"column:token_hash;not null" json:"-"`
	ExpiresAt   int64     `gorm:"column:expires_at;not null;index" json:"expires_at"` // epoch milliseconds
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_token"
}

// Expired reports whether the token is no longer usable at now.
func (t PasswordResetToken) Expired(now time.Time) bool {
	return t.ExpiresAt <= now.UnixMilli()
}
