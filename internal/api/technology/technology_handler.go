package technology

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

type CreateTechnologyRequest struct {
	Name string `json:"name"`
}

type UpdateTechnologyRequest struct {
	Name string `json:"name"`
}

type TechnologyHandler struct {
	repo   TechnologyRepo
	logger *slog.Logger
}

func NewTechnologyHandler(repo TechnologyRepo, logger *slog.Logger) *TechnologyHandler {
	return &TechnologyHandler{
		repo:   repo,
		logger: logger,
	}
}

// GetAll godoc
// @Summary      List technologies
// @Tags         Technology
// @Produce      json
// @Success      200 {array} types.Technology
// @Router       /technologies [get]
func (h *TechnologyHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetAll"))

	techs, err := h.repo.GetAll(ctx, false)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list technologies", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve technologies")
		return
	}
	if techs == nil {
		techs = []types.Technology{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, techs)
}

// Create godoc
// @Summary      Create technology
// @Tags         Technology
// @Accept       json
// @Produce      json
// @Param        technology body CreateTechnologyRequest true "Technology"
// @Success      201 {object} types.Technology
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      409 {object} types.Response "Duplicate Name"
// @Security     BearerAuth
// @Router       /technologies [post]
func (h *TechnologyHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Create"))

	var req CreateTechnologyRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Name is required")
		return
	}

	actor := actorID(r)
	tech, err := h.repo.Create(ctx, req.Name, actor)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Technology already exists")
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Name is required")
		default:
			l.ErrorContext(ctx, "Failed to create technology", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create technology")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, tech)
}

// Update godoc
// @Summary      Rename technology
// @Tags         Technology
// @Accept       json
// @Produce      json
// @Param        id path string true "Technology ID"
// @Param        technology body UpdateTechnologyRequest true "Technology"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /technologies/{id} [patch]
func (h *TechnologyHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Update"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid technology ID")
		return
	}

	var req UpdateTechnologyRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	actor := actorID(r)
	if actor == nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.repo.Update(ctx, id, req.Name, *actor); err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Technology not found")
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Technology already exists")
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Name is required")
		default:
			l.ErrorContext(ctx, "Failed to update technology", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update technology")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Technology updated"})
}

// Delete godoc
// @Summary      Soft-delete technology
// @Tags         Technology
// @Produce      json
// @Param        id path string true "Technology ID"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /technologies/{id} [delete]
func (h *TechnologyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Delete"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid technology ID")
		return
	}

	actor := actorID(r)
	if actor == nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.repo.SoftDelete(ctx, id, *actor); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Technology not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete technology", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete technology")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Technology deleted"})
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
