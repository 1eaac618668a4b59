package dto

import (
	"strings"

	"github.com/hugh/hr-manager/internal/api/validation"
	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/hugh/hr-manager/internal/users"
)

const (
	invalidNameMsg  = "can only contain letters, spaces, hyphens, and apostrophes (at least 2 characters)"
	invalidPhoneMsg = "Phone must be in E.164 format (+[country code][number])"
	invalidRoleMsg  = "Role must be one of: Ressource, Gestionnaire, Super Admin"
)

type CreateUserRequest struct {
	Nom        string `json:"nom"`
	Prenom     string `json:"prenom"`
	Email      string `json:"email"`
	Telephone  string `json:"telephone"`
	Role       string `json:"role"`
	SendInvite bool   `json:"sendInvite"`
}

func (r *CreateUserRequest) Normalize() {
	r.Nom = strings.TrimSpace(r.Nom)
	r.Prenom = strings.TrimSpace(r.Prenom)
	r.Email = models.NormalizeEmail(r.Email)
	r.Telephone = strings.TrimSpace(r.Telephone)
}

func (r CreateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if !validation.IsValidName(r.Nom) {
		errors["nom"] = "Last name " + invalidNameMsg
	}
	if !validation.IsValidName(r.Prenom) {
		errors["prenom"] = "First name " + invalidNameMsg
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email must be a valid email address"
	}
	if r.Telephone != "" && !validation.IsValidPhone(r.Telephone) {
		errors["telephone"] = invalidPhoneMsg
	}
	if !models.Role(r.Role).Valid() {
		errors["role"] = invalidRoleMsg
	}

	return errors
}

func (r CreateUserRequest) Input() users.CreateInput {
	return users.CreateInput{
		Nom:        r.Nom,
		Prenom:     r.Prenom,
		Email:      r.Email,
		Telephone:  r.Telephone,
		Role:       models.Role(r.Role),
		SendInvite: r.SendInvite,
	}
}

// EditUserRequest identifies the user by email. Absent fields are left
// unchanged; unknown fields are ignored.
type EditUserRequest struct {
	Email     string  `json:"email"`
	Nom       *string `json:"nom"`
	Prenom    *string `json:"prenom"`
	Telephone *string `json:"telephone"`
	Role      *string `json:"role"`
}

func (r *EditUserRequest) Normalize() {
	r.Email = models.NormalizeEmail(r.Email)
	trimPtr(r.Nom)
	trimPtr(r.Prenom)
	trimPtr(r.Telephone)
}

func (r EditUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email must be a valid email address"
	}
	if r.Nom != nil && !validation.IsValidName(*r.Nom) {
		errors["nom"] = "Last name " + invalidNameMsg
	}
	if r.Prenom != nil && !validation.IsValidName(*r.Prenom) {
		errors["prenom"] = "First name " + invalidNameMsg
	}
	if r.Telephone != nil && !validation.IsValidPhone(*r.Telephone) {
		errors["telephone"] = invalidPhoneMsg
	}
	if r.Role != nil && !models.Role(*r.Role).Valid() {
		errors["role"] = invalidRoleMsg
	}

	return errors
}

func (r EditUserRequest) Input() users.EditInput {
	input := users.EditInput{
		Email:     r.Email,
		Nom:       r.Nom,
		Prenom:    r.Prenom,
		Telephone: r.Telephone,
	}
	if r.Role != nil {
		role := models.Role(*r.Role)
		input.Role = &role
	}
	return input
}

type ChangeUserStatusRequest struct {
	Email  string `json:"email"`
	Active *bool  `json:"active"`
}

func (r ChangeUserStatusRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Email) == "" {
		errors["email"] = "Email is required"
	}
	if r.Active == nil {
		errors["active"] = "Active must be a boolean"
	}

	return errors
}

type UsersResponse struct {
	Message string          `json:"message"`
	Users   []users.Summary `json:"users"`
}

type UserResponse struct {
	Message string         `json:"message"`
	User    *users.Summary `json:"user"`
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
