package dto

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hugh/hr-manager/internal/api/validation"
	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/hugh/hr-manager/internal/partners"
)

const (
	invalidCompanyMsg = "Company name can only contain letters, numbers, spaces, and common business punctuation"
	invalidSirenMsg   = "SIREN must be exactly 9 digits"
	invalidTvaMsg     = "VAT number must start with 2 letters followed by 8-13 alphanumeric characters"
)

type CreatePartnerRequest struct {
	NomCompagnie string           `json:"nomCompagnie"`
	Siren        string           `json:"siren"`
	NumeroTva    string           `json:"numeroTva"`
	Contacts     []models.Contact `json:"contacts"`
	Activites    []string         `json:"activites"`
	Adresse      *string          `json:"adresse"`
}

func (r *CreatePartnerRequest) Normalize() {
	r.NomCompagnie = strings.TrimSpace(r.NomCompagnie)
	r.Siren = models.NormalizeSiren(r.Siren)
	r.NumeroTva = models.NormalizeTva(r.NumeroTva)
	r.Contacts = models.NormalizeContacts(r.Contacts)
	r.Activites = models.NormalizeActivities(r.Activites)
	r.Adresse = sanitizedPtr(r.Adresse)
}

func (r CreatePartnerRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.NomCompagnie == "" {
		errors["nomCompagnie"] = "Company name is required"
	} else if !validation.IsValidCompanyName(r.NomCompagnie) {
		errors["nomCompagnie"] = invalidCompanyMsg
	}
	if !validation.IsValidSiren(r.Siren) {
		errors["siren"] = invalidSirenMsg
	}
	if !validation.IsValidTva(r.NumeroTva) {
		errors["numeroTva"] = invalidTvaMsg
	}
	if r.Contacts == nil {
		errors["contacts"] = "Contacts must be a list"
	}
	validateContacts(r.Contacts, errors)
	if len(r.Activites) == 0 {
		errors["activites"] = "At least one activity is required"
	}

	return errors
}

func (r CreatePartnerRequest) Input() partners.CreateInput {
	return partners.CreateInput{
		NomCompagnie: r.NomCompagnie,
		Siren:        r.Siren,
		NumeroTva:    r.NumeroTva,
		Contacts:     r.Contacts,
		Activites:    r.Activites,
		Adresse:      r.Adresse,
	}
}

// EditPartnerRequest identifies the partner by siren; newSiren renames it.
// Absent fields are left unchanged; unknown fields are ignored.
type EditPartnerRequest struct {
	Siren        string            `json:"siren"`
	NewSiren     *string           `json:"newSiren"`
	NomCompagnie *string           `json:"nomCompagnie"`
	NumeroTva    *string           `json:"numeroTva"`
	Contacts     *[]models.Contact `json:"contacts"`
	Activites    *[]string         `json:"activites"`
	Adresse      *string           `json:"adresse"`
}

func (r *EditPartnerRequest) Normalize() {
	r.Siren = models.NormalizeSiren(r.Siren)
	if r.NewSiren != nil {
		s := models.NormalizeSiren(*r.NewSiren)
		r.NewSiren = &s
	}
	trimPtr(r.NomCompagnie)
	if r.NumeroTva != nil {
		s := models.NormalizeTva(*r.NumeroTva)
		r.NumeroTva = &s
	}
	if r.Contacts != nil {
		c := models.NormalizeContacts(*r.Contacts)
		r.Contacts = &c
	}
	if r.Activites != nil {
		a := models.NormalizeActivities(*r.Activites)
		r.Activites = &a
	}
	r.Adresse = sanitizedPtr(r.Adresse)
}

func (r EditPartnerRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if !validation.IsValidSiren(r.Siren) {
		errors["siren"] = invalidSirenMsg
	}
	if r.NewSiren != nil && !validation.IsValidSiren(*r.NewSiren) {
		errors["newSiren"] = invalidSirenMsg
	}
	if r.NomCompagnie != nil {
		if utf8.RuneCountInString(*r.NomCompagnie) < 2 || !validation.IsValidCompanyName(*r.NomCompagnie) {
			errors["nomCompagnie"] = invalidCompanyMsg
		}
	}
	if r.NumeroTva != nil && !validation.IsValidTva(*r.NumeroTva) {
		errors["numeroTva"] = invalidTvaMsg
	}
	if r.Contacts != nil {
		if len(*r.Contacts) == 0 {
			errors["contacts"] = "At least one contact is required"
		}
		validateContacts(*r.Contacts, errors)
	}
	if r.Activites != nil && len(*r.Activites) == 0 {
		errors["activites"] = "At least one activity is required"
	}

	return errors
}

func (r EditPartnerRequest) Input() partners.EditInput {
	return partners.EditInput{
		Siren:        r.Siren,
		NomCompagnie: r.NomCompagnie,
		NewSiren:     r.NewSiren,
		NumeroTva:    r.NumeroTva,
		Contacts:     r.Contacts,
		Activites:    r.Activites,
		Adresse:      r.Adresse,
	}
}

type ChangePartnerStatusRequest struct {
	Siren  string `json:"siren"`
	Active *bool  `json:"active"`
}

func (r ChangePartnerStatusRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if models.NormalizeSiren(r.Siren) == "" {
		errors["siren"] = "SIREN is required"
	}
	if r.Active == nil {
		errors["active"] = "Active must be a boolean"
	}

	return errors
}

type PartnersResponse struct {
	Message     string           `json:"message"`
	Partenaires []models.Partner `json:"partenaires"`
}

type PartnerResponse struct {
	Message    string          `json:"message"`
	Partenaire *models.Partner `json:"partenaire"`
}

// validateContacts checks the fields each contact actually carries.
func validateContacts(contacts []models.Contact, errors map[string]string) {
	for i, c := range contacts {
		prefix := fmt.Sprintf("contacts[%d].", i)
		if c.Nom != "" && !validation.IsValidName(c.Nom) {
			errors[prefix+"nom"] = "Last name " + invalidNameMsg
		}
		if c.Prenom != "" && !validation.IsValidName(c.Prenom) {
			errors[prefix+"prenom"] = "First name " + invalidNameMsg
		}
		if c.Email != "" && !validation.IsValidEmail(c.Email) {
			errors[prefix+"email"] = "Email must be a valid email address"
		}
		if c.Telephone != "" && !validation.IsValidPhone(c.Telephone) {
			errors[prefix+"telephone"] = invalidPhoneMsg
		}
	}
}

func sanitizedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(validation.SanitizeString(*s))
	return &v
}
