package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/hugh/hr-manager/pkg/crypto"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordRequired   = errors.New("new password is required")
	ErrMailDispatch       = errors.New("dispatching reset email")
)

// Responses that must not vary with account existence or outcome.
const (
	ForgotPasswordMessage = "If that account exists, we sent a password reset email."
	ResetPasswordMessage  = "Password reset successful"
)

const resetTokenBytes = 32

// ResetMailer delivers the password-reset link.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

type ServiceConfig struct {
	// FrontendURL is the base of the reset link, without trailing slash.
	FrontendURL string
	ResetTTL    time.Duration
}

type Service struct {
	db     *gorm.DB
	jwt    *JWTService
	tokens *ResetTokenStore
	mailer ResetMailer
	logger *slog.Logger
	cfg    ServiceConfig
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces the time source for reset-token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.tokens.WithClock(now)
	}
}

func NewService(db *gorm.DB, jwt *JWTService, mailer ResetMailer, logger *slog.Logger, cfg ServiceConfig, opts ...Option) *Service {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	s := &Service{
		db:     db,
		jwt:    jwt,
		tokens: NewResetTokenStore(db),
		mailer: mailer,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type LoginInput struct {
	Email    string
	Password string
}

// UserProfile is the user as shown to the user themselves: no hash.
type UserProfile struct {
	ID        uint        `json:"id"`
	Nom       string      `json:"nom"`
	Prenom    string      `json:"prenom"`
	Email     string      `json:"email"`
	Telephone string      `json:"telephone,omitempty"`
	Role      models.Role `json:"role"`
	Active    bool        `json:"active"`
}

func ProfileOf(u *models.User) UserProfile {
	return UserProfile{
		ID:        u.ID,
		Nom:       u.Nom,
		Prenom:    u.Prenom,
		Email:     u.Email,
		Telephone: u.Telephone,
		Role:      u.Role,
		Active:    u.Active,
	}
}

type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      UserProfile
}

// SessionUser is the identity attached to an authenticated request.
type SessionUser struct {
	ID     uint        `json:"id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	Active bool        `json:"active"`
}

// Login checks credentials and issues a session token. An unknown email, a
// wrong password and a deactivated account all yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := models.NormalizeEmail(input.Email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			burnPasswordCheck(input.Password)
			s.logger.Info("login rejected", "reason", "unknown_email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		s.logger.Info("login rejected", "reason", "bad_password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		s.logger.Info("login rejected", "reason", "inactive", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Active)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: s.jwt.Expiry(),
		User:      ProfileOf(&user),
	}, nil
}

// ValidateToken verifies a session token and then re-reads the user, so a
// deleted or deactivated account loses access before its token expires.
func (s *Service) ValidateToken(ctx context.Context, token string) (*SessionUser, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).
		Select("id", "email", "role", "active").
		Where("id = ?", claims.UserID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading session user: %w", err)
	}

	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	return &SessionUser{
		ID:     user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Active: user.Active,
	}, nil
}

// ForgotPassword issues a reset token and mails it when the account exists.
// The returned message is the same either way; a non-nil error is for the
// caller's logs only.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = models.NormalizeEmail(email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return ForgotPasswordMessage, nil
		}
		return ForgotPasswordMessage, fmt.Errorf("looking up user: %w", err)
	}

	rawToken, err := crypto.GenerateHexToken(resetTokenBytes)
	if err != nil {
		return ForgotPasswordMessage, fmt.Errorf("generating reset token: %w", err)
	}

	record, err := s.tokens.Create(ctx, user.ID, rawToken, s.now().Add(s.cfg.ResetTTL))
	if err != nil {
		return ForgotPasswordMessage, err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, s.ResetURL(rawToken)); err != nil {
		return ForgotPasswordMessage, fmt.Errorf("%w: %v", ErrMailDispatch, err)
	}

	s.logger.Info("password reset issued", "user_id", user.ID, "token_id", record.ID)
	return ForgotPasswordMessage, nil
}

// ResetURL builds the link the user follows from the email.
func (s *Service) ResetURL(rawToken string) string {
	return s.cfg.FrontendURL + "/reset-password?token=" + url.QueryEscape(rawToken)
}

// ResetPassword replaces the password of the token's owner and consumes the
// token. Consumption and the password write commit together.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) (string, error) {
	if newPassword == "" {
		return "", ErrPasswordRequired
	}

	record, err := s.tokens.Verify(ctx, rawToken)
	if err != nil {
		return "", err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tokens.Consume(tx, record.ID); err != nil {
			return err
		}

		result := tx.Model(&models.User{}).
			Where("id = ?", record.UserID).
			Update("password_hash", hash)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Owner no longer exists; the token is worthless.
			return ErrInvalidOrExpiredToken
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			return "", err
		}
		return "", fmt.Errorf("resetting password: %w", err)
	}

	s.logger.Info("password reset completed", "user_id", record.UserID)
	return ResetPasswordMessage, nil
}
