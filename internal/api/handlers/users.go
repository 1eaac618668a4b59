package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugh/hr-manager/internal/api/dto"
	"github.com/hugh/hr-manager/internal/users"
)

// UserService is the users surface the handlers need.
type UserService interface {
	List(ctx context.Context) ([]users.Summary, error)
	Create(ctx context.Context, input users.CreateInput) (*users.Summary, error)
	Edit(ctx context.Context, input users.EditInput) (*users.Summary, error)
	ChangeStatus(ctx context.Context, email string, active bool) (*users.Summary, error)
}

type UserHandler struct {
	service UserService
	logger  *slog.Logger
}

func NewUserHandler(service UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("listing users failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch users"})
		return
	}

	writeJSON(w, http.StatusOK, dto.UsersResponse{
		Message: "Users retrieved successfully",
		Users:   list,
	})
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Normalize()
	if details := req.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	user, err := h.service.Create(r.Context(), req.Input())
	if err != nil {
		h.writeServiceError(w, err, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserResponse{
		Message: "User created successfully",
		User:    user,
	})
}

func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req dto.EditUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Normalize()
	if details := req.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	user, err := h.service.Edit(r.Context(), req.Input())
	if err != nil {
		h.writeServiceError(w, err, "Failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, dto.UserResponse{
		Message: "User updated successfully",
		User:    user,
	})
}

func (h *UserHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangeUserStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	user, err := h.service.ChangeStatus(r.Context(), req.Email, *req.Active)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update user status")
		return
	}

	writeJSON(w, http.StatusOK, dto.UserResponse{
		Message: "User status updated successfully",
		User:    user,
	})
}

func (h *UserHandler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
	case errors.Is(err, users.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Email already in use"})
	default:
		h.logger.Error(fallback, "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: fallback})
	}
}
