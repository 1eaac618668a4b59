// Package users manages staff accounts on behalf of administrators.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// Inviter starts the reset flow for a freshly created account so its owner
// can choose a password.
type Inviter interface {
	ForgotPassword(ctx context.Context, email string) (string, error)
}

// Summary is the listing projection of a user.
type Summary struct {
	ID        uint        `json:"id"`
	Nom       string      `json:"nom"`
	Prenom    string      `json:"prenom"`
	Email     string      `json:"email"`
	Telephone string      `json:"telephone,omitempty"`
	Role      models.Role `json:"role"`
	Active    bool        `json:"active"`
}

func summaryOf(u *models.User) Summary {
	return Summary{
		ID:        u.ID,
		Nom:       u.Nom,
		Prenom:    u.Prenom,
		Email:     u.Email,
		Telephone: u.Telephone,
		Role:      u.Role,
		Active:    u.Active,
	}
}

type CreateInput struct {
	Nom        string
	Prenom     string
	Email      string
	Telephone  string
	Role       models.Role
	SendInvite bool
}

// EditInput selects a user by Email. Only the non-nil fields are applied.
type EditInput struct {
	Email     string
	Nom       *string
	Prenom    *string
	Telephone *string
	Role      *models.Role
}

type Service struct {
	db      *gorm.DB
	inviter Inviter
	logger  *slog.Logger
	now     func() time.Time
}

// NewService returns a users service. inviter may be nil, in which case
// invitations are skipped.
func NewService(db *gorm.DB, inviter Inviter, logger *slog.Logger) *Service {
	return &Service{
		db:      db,
		inviter: inviter,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	out := make([]Summary, len(users))
	for i := range users {
		out[i] = summaryOf(&users[i])
	}
	return out, nil
}

// Create adds an active account with an unusable random password.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Summary, error) {
	email := models.NormalizeEmail(input.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := auth.RandomPasswordHash()
	if err != nil {
		return nil, fmt.Errorf("generating initial password: %w", err)
	}

	user := models.User{
		Nom:          strings.TrimSpace(input.Nom),
		Prenom:       strings.TrimSpace(input.Prenom),
		Email:        email,
		Telephone:    strings.TrimSpace(input.Telephone),
		Role:         input.Role,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)

	if input.SendInvite && s.inviter != nil {
		if _, err := s.inviter.ForgotPassword(ctx, user.Email); err != nil {
			s.logger.Warn("failed to send invitation", "user_id", user.ID, "error", err)
		}
	}

	summary := summaryOf(&user)
	return &summary, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return &user, nil
}

// Edit applies the allowed profile fields to the user with the given email.
func (s *Service) Edit(ctx context.Context, input EditInput) (*Summary, error) {
	user, err := s.findByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"date_modification": s.now(),
	}
	if input.Nom != nil {
		updates["nom"] = strings.TrimSpace(*input.Nom)
	}
	if input.Prenom != nil {
		updates["prenom"] = strings.TrimSpace(*input.Prenom)
	}
	if input.Telephone != nil {
		updates["telephone"] = strings.TrimSpace(*input.Telephone)
	}
	if input.Role != nil {
		updates["role"] = *input.Role
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return s.reload(ctx, user.ID)
}

// ChangeStatus activates or deactivates the user with the given email.
// Deactivation takes effect on the user's next request.
func (s *Service) ChangeStatus(ctx context.Context, email string, active bool) (*Summary, error) {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"active":            active,
		"date_modification": s.now(),
	}).Error; err != nil {
		return nil, fmt.Errorf("updating user status: %w", err)
	}

	s.logger.Info("user status changed", "user_id", user.ID, "active", active)
	return s.reload(ctx, user.ID)
}

func (s *Service) reload(ctx context.Context, id uint) (*Summary, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("reloading user: %w", err)
	}
	summary := summaryOf(&user)
	return &summary, nil
}
