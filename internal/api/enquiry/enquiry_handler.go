package enquiry

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kristinefung/personal-website-sub000/app/observability/metrics"
	"github.com/kristinefung/personal-website-sub000/internal/api"
	"github.com/kristinefung/personal-website-sub000/internal/api/auth"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

// CreateEnquiryResponse acknowledges a contact submission.
type CreateEnquiryResponse struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

type EnquiryHandler struct {
	repo   EnquiryRepo
	logger *slog.Logger
}

func NewEnquiryHandler(repo EnquiryRepo, logger *slog.Logger) *EnquiryHandler {
	return &EnquiryHandler{
		repo:   repo,
		logger: logger,
	}
}

// Create godoc
// @Summary      Submit enquiry
// @Description  Public contact form endpoint. Name, subject and message
//
//	are required; email and phone are optional. Unknown JSON
//	fields are rejected.
//
// @Tags         Enquiry
// @Accept       json
// @Produce      json
// @Param        enquiry body CreateEnquiryParams true "Enquiry"
// @Success      201 {object} CreateEnquiryResponse
// @Failure      400 {object} types.Response "Invalid Input"
// @Router       /enquiries [post]
func (h *EnquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Create"))

	var params CreateEnquiryParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	enquiry, err := h.repo.Create(ctx, params)
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Name, subject and message are required")
			return
		}
		l.ErrorContext(ctx, "Failed to create enquiry", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to submit enquiry")
		return
	}

	metrics.Get().EnquiriesCreatedTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Enquiry received", slog.String("enquiryID", enquiry.ID.String()))

	api.WriteJSONResponse(w, r, http.StatusCreated, CreateEnquiryResponse{
		Message: "Enquiry submitted",
		ID:      enquiry.ID,
	})
}

// GetAll godoc
// @Summary      List enquiries
// @Description  Pass includeDeleted=true to include soft-deleted rows.
// @Tags         Enquiry
// @Produce      json
// @Param        includeDeleted query bool false "Include soft-deleted enquiries"
// @Success      200 {array} types.Enquiry
// @Security     BearerAuth
// @Router       /enquiries [get]
func (h *EnquiryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetAll"))

	includeDeleted := r.URL.Query().Get("includeDeleted") == "true"

	enquiries, err := h.repo.GetAll(ctx, includeDeleted)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list enquiries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve enquiries")
		return
	}
	if enquiries == nil {
		enquiries = []types.Enquiry{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, enquiries)
}

// GetByID godoc
// @Summary      Get enquiry
// @Tags         Enquiry
// @Produce      json
// @Param        id path string true "Enquiry ID"
// @Success      200 {object} types.Enquiry
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /enquiries/{id} [get]
func (h *EnquiryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetByID"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid enquiry ID")
		return
	}

	enquiry, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Enquiry not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch enquiry", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve enquiry")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, enquiry)
}

// Delete godoc
// @Summary      Soft-delete enquiry
// @Tags         Enquiry
// @Produce      json
// @Param        id path string true "Enquiry ID"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /enquiries/{id} [delete]
func (h *EnquiryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Delete"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid enquiry ID")
		return
	}

	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	actor, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.repo.SoftDelete(ctx, id, actor); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Enquiry not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete enquiry", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete enquiry")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Enquiry deleted"})
}
