package journey

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kristinefung/personal-website-sub000/internal/api"
	"github.com/kristinefung/personal-website-sub000/internal/api/auth"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

type JourneyHandler struct {
	repo   JourneyRepo
	logger *slog.Logger
}

func NewJourneyHandler(repo JourneyRepo, logger *slog.Logger) *JourneyHandler {
	return &JourneyHandler{
		repo:   repo,
		logger: logger,
	}
}

// GetAll godoc
// @Summary      List journeys
// @Description  Career timeline entries, newest first.
// @Tags         Journey
// @Produce      json
// @Success      200 {array} types.Journey
// @Router       /journeys [get]
func (h *JourneyHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetAll"))

	journeys, err := h.repo.GetAll(ctx, false)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list journeys", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve journeys")
		return
	}
	if journeys == nil {
		journeys = []types.Journey{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, journeys)
}

// GetByID godoc
// @Summary      Get journey
// @Tags         Journey
// @Produce      json
// @Param        id path string true "Journey ID"
// @Success      200 {object} types.Journey
// @Failure      404 {object} types.Response "Not Found"
// @Router       /journeys/{id} [get]
func (h *JourneyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetByID"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid journey ID")
		return
	}

	journey, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Journey not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch journey", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve journey")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, journey)
}

// Create godoc
// @Summary      Create journey
// @Tags         Journey
// @Accept       json
// @Produce      json
// @Param        journey body CreateJourneyParams true "Journey"
// @Success      201 {object} types.Journey
// @Failure      400 {object} types.Response "Invalid Input"
// @Security     BearerAuth
// @Router       /journeys [post]
func (h *JourneyHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Create"))

	var params CreateJourneyParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	journey, err := h.repo.Create(ctx, params, actorID(r))
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Title is required and month must be between 1 and 12")
			return
		}
		l.ErrorContext(ctx, "Failed to create journey", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create journey")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, journey)
}

// Update godoc
// @Summary      Update journey
// @Tags         Journey
// @Accept       json
// @Produce      json
// @Param        id path string true "Journey ID"
// @Param        journey body UpdateJourneyParams true "Fields to update"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /journeys/{id} [patch]
func (h *JourneyHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Update"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid journey ID")
		return
	}

	var params UpdateJourneyParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	actor := actorID(r)
	if actor == nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.repo.Update(ctx, id, params, *actor); err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Journey not found")
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, "No valid fields to update")
		default:
			l.ErrorContext(ctx, "Failed to update journey", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update journey")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Journey updated"})
}

// Delete godoc
// @Summary      Soft-delete journey
// @Tags         Journey
// @Produce      json
// @Param        id path string true "Journey ID"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /journeys/{id} [delete]
func (h *JourneyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Delete"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid journey ID")
		return
	}

	actor := actorID(r)
	if actor == nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.repo.SoftDelete(ctx, id, *actor); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Journey not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete journey", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete journey")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Journey deleted"})
}

// actorID returns the authenticated user id for audit stamping, or nil
// on public routes.
func actorID(r *http.Request) *uuid.UUID {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		return nil
	}
	id, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil
	}
	return &id
}
