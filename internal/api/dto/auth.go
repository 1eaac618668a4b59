package dto

import (
	"strings"

	"github.com/hugh/hr-manager/internal/api/validation"
	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Email) == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type LoginStatus struct {
	User auth.UserProfile `json:"user"`
}

type LoginResponse struct {
	Message string      `json:"message"`
	Status  LoginStatus `json:"status"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Normalize() {
	r.Email = models.NormalizeEmail(r.Email)
}

func (r ForgotPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email must be a valid email address"
	}

	return errors
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Token == "" {
		errors["token"] = "Token is required"
	}
	if r.NewPassword == "" {
		errors["newPassword"] = "New password is required"
	} else if ok, msg := validation.IsValidPassword(r.NewPassword); !ok {
		errors["newPassword"] = msg
	}

	return errors
}

type SessionUserDTO struct {
	ID    uint        `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type SessionResponse struct {
	IsAuthenticated bool           `json:"isAuthenticated"`
	User            SessionUserDTO `json:"user"`
}
