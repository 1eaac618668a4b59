package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugh/hr-manager/internal/api/dto"
	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/hugh/hr-manager/internal/partners"
)

// PartnerService is the partners surface the handlers need.
type PartnerService interface {
	List(ctx context.Context) ([]models.Partner, error)
	Create(ctx context.Context, input partners.CreateInput) (*models.Partner, error)
	Edit(ctx context.Context, input partners.EditInput) (*models.Partner, error)
	ChangeStatus(ctx context.Context, siren string, active bool) (*models.Partner, error)
}

type PartnerHandler struct {
	service PartnerService
	logger  *slog.Logger
}

func NewPartnerHandler(service PartnerService, logger *slog.Logger) *PartnerHandler {
	return &PartnerHandler{service: service, logger: logger}
}

func (h *PartnerHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("listing partenaires failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch partenaires"})
		return
	}

	writeJSON(w, http.StatusOK, dto.PartnersResponse{
		Message:     "Partenaires retrieved successfully",
		Partenaires: list,
	})
}

func (h *PartnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePartnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Normalize()
	if details := req.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	partner, err := h.service.Create(r.Context(), req.Input())
	if err != nil {
		h.writeServiceError(w, err, "Failed to create partenaire")
		return
	}

	writeJSON(w, http.StatusCreated, dto.PartnerResponse{
		Message:    "Partenaire created successfully",
		Partenaire: partner,
	})
}

func (h *PartnerHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req dto.EditPartnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Normalize()
	if details := req.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	partner, err := h.service.Edit(r.Context(), req.Input())
	if err != nil {
		h.writeServiceError(w, err, "Failed to update partenaire")
		return
	}

	writeJSON(w, http.StatusOK, dto.PartnerResponse{
		Message:    "Partenaire updated successfully",
		Partenaire: partner,
	})
}

func (h *PartnerHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePartnerStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	partner, err := h.service.ChangeStatus(r.Context(), req.Siren, *req.Active)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update partenaire status")
		return
	}

	writeJSON(w, http.StatusOK, dto.PartnerResponse{
		Message:    "Partenaire status updated successfully",
		Partenaire: partner,
	})
}

func (h *PartnerHandler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, partners.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Partenaire not found"})
	case errors.Is(err, partners.ErrSirenTaken):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "SIREN already registered"})
	default:
		h.logger.Error(fallback, "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: fallback})
	}
}
