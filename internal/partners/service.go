// Package partners manages partner companies and their contacts.
package partners

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hugh/hr-manager/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("partenaire not found")
	ErrSirenTaken = errors.New("siren already registered")
)

type CreateInput struct {
	NomCompagnie string
	Siren        string
	NumeroTva    string
	Contacts     []models.Contact
	Activites    []string
	Adresse      *string
}

// EditInput selects a partner by Siren. Only the non-nil fields are
// applied; NewSiren moves the partner to another SIREN.
type EditInput struct {
	Siren        string
	NomCompagnie *string
	NewSiren     *string
	NumeroTva    *string
	Contacts     *[]models.Contact
	Activites    *[]string
	Adresse      *string
}

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]models.Partner, error) {
	var partners []models.Partner
	if err := s.db.WithContext(ctx).Order("id").Find(&partners).Error; err != nil {
		return nil, fmt.Errorf("listing partenaires: %w", err)
	}
	return partners, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Partner, error) {
	partner := models.Partner{
		NomCompagnie: strings.TrimSpace(input.NomCompagnie),
		Siren:        models.NormalizeSiren(input.Siren),
		NumeroTva:    models.NormalizeTva(input.NumeroTva),
		Contacts:     models.NormalizeContacts(input.Contacts),
		Activites:    models.NormalizeActivities(input.Activites),
		Adresse:      trimmedPtr(input.Adresse),
		Active:       true,
	}

	taken, err := s.sirenTaken(ctx, partner.Siren, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSirenTaken
	}

	if err := s.db.WithContext(ctx).Create(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSirenTaken
		}
		return nil, fmt.Errorf("creating partenaire: %w", err)
	}

	s.logger.Info("partenaire created", "partenaire_id", partner.ID)
	return &partner, nil
}

// Edit applies the allowed fields to the partner with the given SIREN. An
// unknown SIREN is ErrNotFound; nothing is created.
func (s *Service) Edit(ctx context.Context, input EditInput) (*models.Partner, error) {
	partner, err := s.findBySiren(ctx, input.Siren)
	if err != nil {
		return nil, err
	}

	if input.NomCompagnie != nil {
		partner.NomCompagnie = strings.TrimSpace(*input.NomCompagnie)
	}
	if input.NewSiren != nil {
		siren := models.NormalizeSiren(*input.NewSiren)
		if siren != partner.Siren {
			taken, err := s.sirenTaken(ctx, siren, partner.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrSirenTaken
			}
			partner.Siren = siren
		}
	}
	if input.NumeroTva != nil {
		partner.NumeroTva = models.NormalizeTva(*input.NumeroTva)
	}
	if input.Contacts != nil {
		partner.Contacts = models.NormalizeContacts(*input.Contacts)
	}
	if input.Activites != nil {
		partner.Activites = models.NormalizeActivities(*input.Activites)
	}
	if input.Adresse != nil {
		partner.Adresse = trimmedPtr(input.Adresse)
	}

	if err := s.save(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

func (s *Service) ChangeStatus(ctx context.Context, siren string, active bool) (*models.Partner, error) {
	partner, err := s.findBySiren(ctx, siren)
	if err != nil {
		return nil, err
	}

	partner.Active = active
	if err := s.save(ctx, partner); err != nil {
		return nil, err
	}

	s.logger.Info("partenaire status changed", "partenaire_id", partner.ID, "active", active)
	return partner, nil
}

func (s *Service) findBySiren(ctx context.Context, siren string) (*models.Partner, error) {
	siren = models.NormalizeSiren(siren)
	if siren == "" {
		return nil, ErrNotFound
	}

	var partner models.Partner
	if err := s.db.WithContext(ctx).Where("siren = ?", siren).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading partenaire: %w", err)
	}
	return &partner, nil
}

func (s *Service) sirenTaken(ctx context.Context, siren string, exceptID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Partner{}).Where("siren = ?", siren)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking siren: %w", err)
	}
	return count > 0, nil
}

// save writes an existing row. Updates with Select("*") never falls back to
// an insert the way Save does for a missing primary key.
func (s *Service) save(ctx context.Context, partner *models.Partner) error {
	result := s.db.WithContext(ctx).Model(partner).Select("*").Omit("id", "date_creation").Updates(partner)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrSirenTaken
		}
		return fmt.Errorf("saving partenaire: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
