package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/hugh/hr-manager/internal/database/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

const lookupKeyLength = 16

// ResetTokenStore persists password-reset tokens. Raw tokens never reach
// the database: rows hold a bcrypt hash and a short SHA-256 prefix that
// narrows verification to a handful of candidate rows.
type ResetTokenStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewResetTokenStore(db *gorm.DB) *ResetTokenStore {
	return &ResetTokenStore{db: db, now: time.Now}
}

func lookupKey(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])[:lookupKeyLength]
}

func (s *ResetTokenStore) Create(ctx context.Context, userID uint, rawToken string, expiresAt time.Time) (*models.PasswordResetToken, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing reset token: %w", err)
	}

	record := models.PasswordResetToken{
		UserID:      userID,
		TokenLookup: lookupKey(rawToken),
		TokenHash:   string(hash),
		ExpiresAt:   expiresAt.UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("storing reset token: %w", err)
	}
	return &record, nil
}

// Verify returns the live record matching rawToken, or
// ErrInvalidOrExpiredToken.
func (s *ResetTokenStore) Verify(ctx context.Context, rawToken string) (*models.PasswordResetToken, error) {
	if rawToken == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	var candidates []models.PasswordResetToken
	if err := s.db.WithContext(ctx).
		Where("token_lookup = ? AND expires_at > ?", lookupKey(rawToken), s.now().UnixMilli()).
		Order("id").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("loading reset tokens: %w", err)
	}

	for i := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].TokenHash), []byte(rawToken)) == nil {
			return &candidates[i], nil
		}
	}

	return nil, ErrInvalidOrExpiredToken
}

// Consume deletes the token only if it is still unexpired, in one
// statement, so a concurrent sweep or a second reset cannot both win.
func (s *ResetTokenStore) Consume(tx *gorm.DB, id uint) error {
	result := tx.Where("id = ? AND expires_at > ?", id, s.now().UnixMilli()).
		Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return fmt.Errorf("consuming reset token: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return ErrInvalidOrExpiredToken
	}
	return nil
}

func (s *ResetTokenStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.PasswordResetToken{}, id).Error
}

// DeleteExpired removes every token whose expiry has passed and reports how
// many rows went away.
func (s *ResetTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now().UnixMilli()).
		Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("deleting expired reset tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// WithClock replaces the time source used for expiry checks.
func (s *ResetTokenStore) WithClock(now func() time.Time) *ResetTokenStore {
	s.now = now
	return s
}
