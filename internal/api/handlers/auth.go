package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugh/hr-manager/internal/api/dto"
	"github.com/hugh/hr-manager/internal/api/middleware"
	"github.com/hugh/hr-manager/internal/auth"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
}

type AuthHandler struct {
	authService auth.Authenticator
	cookie      CookieConfig
	logger      *slog.Logger
}

func NewAuthHandler(authService auth.Authenticator, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = auth.SessionCookieName
	}
	return &AuthHandler{authService: authService, cookie: cookie, logger: logger}
}

func (h *AuthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "running"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
			return
		}
		h.logger.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		return
	}

	http.SetCookie(w, h.sessionCookie(resp.Token, int(resp.ExpiresIn.Seconds())))

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Message: "Login successful",
		Status:  dto.LoginStatus{User: resp.User},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logout successful"})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Domain:   h.cookie.Domain,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// Session reports the user attached by the session guard.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetSessionUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		IsAuthenticated: true,
		User: dto.SessionUserDTO{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

// ForgotPassword answers with the same message whether or not the account
// exists, and whether or not the email could be dispatched.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Normalize()
	if details := req.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	message, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("forgot password failed", "error", err)
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: message})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	message, err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidOrExpiredToken):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid or expired token"})
		case errors.Is(err, auth.ErrPasswordRequired):
			writeValidationError(w, map[string]string{"newPassword": "New password is required"})
		default:
			h.logger.Error("password reset failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Password reset failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: message})
}
