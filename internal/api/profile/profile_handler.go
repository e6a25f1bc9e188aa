package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kristinefung/personal-website-sub000/internal/api"
	"github.com/kristinefung/personal-website-sub000/internal/api/auth"
	"github.com/kristinefung/personal-website-sub000/internal/api/technology"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

type ProfileHandler struct {
	repo     ProfileRepo
	techRepo technology.TechnologyRepo
	logger   *slog.Logger
}

func NewProfileHandler(repo ProfileRepo, techRepo technology.TechnologyRepo, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		repo:     repo,
		techRepo: techRepo,
		logger:   logger,
	}
}

// GetAll godoc
// @Summary      List profiles
// @Tags         Profile
// @Produce      json
// @Success      200 {array} types.Profile
// @Router       /profiles [get]
func (h *ProfileHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetAll"))

	profiles, err := h.repo.GetAll(ctx, false)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list profiles", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve profiles")
		return
	}
	if profiles == nil {
		profiles = []types.Profile{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, profiles)
}

// GetByID godoc
// @Summary      Get profile
// @Tags         Profile
// @Produce      json
// @Param        id path string true "Profile ID"
// @Success      200 {object} types.Profile
// @Failure      404 {object} types.Response "Not Found"
// @Router       /profiles/{id} [get]
func (h *ProfileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetByID"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid profile ID")
		return
	}

	profile, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Profile not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, profile)
}

// Create godoc
// @Summary      Create profile
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Param        profile body CreateProfileParams true "Profile"
// @Success      201 {object} types.Profile
// @Failure      400 {object} types.Response "Invalid Input"
// @Security     BearerAuth
// @Router       /profiles [post]
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Create"))

	var params CreateProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	actor := actorID(r)
	techIDs, techs, err := h.resolveTechnologies(ctx, params.Technologies, actor)
	if err != nil {
		l.ErrorContext(ctx, "Failed to resolve technologies", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	profile, err := h.repo.Create(ctx, params, techIDs, actor)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create profile")
		return
	}
	profile.Technologies = techs

	api.WriteJSONResponse(w, r, http.StatusCreated, profile)
}

// Update godoc
// @Summary      Update profile
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Param        id path string true "Profile ID"
// @Param        profile body UpdateProfileParams true "Fields to update"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /profiles/{id} [patch]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Update"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid profile ID")
		return
	}

	var params UpdateProfileParams
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
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Profile not found")
			return
		}
		l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	if params.Technologies != nil {
		techIDs, _, err := h.resolveTechnologies(ctx, *params.Technologies, actor)
		if err != nil {
			l.ErrorContext(ctx, "Failed to resolve technologies", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		if err := h.repo.ReplaceTechnologies(ctx, id, techIDs); err != nil {
			l.ErrorContext(ctx, "Failed to replace technologies", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Profile updated"})
}

// Delete godoc
// @Summary      Soft-delete profile
// @Tags         Profile
// @Produce      json
// @Param        id path string true "Profile ID"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /profiles/{id} [delete]
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Delete"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid profile ID")
		return
	}

	actor := actorID(r)
	if actor == nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.repo.SoftDelete(ctx, id, *actor); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Profile not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Profile deleted"})
}

func (h *ProfileHandler) resolveTechnologies(ctx context.Context, names []string, actor *uuid.UUID) ([]uuid.UUID, []types.Technology, error) {
	if len(names) == 0 {
		return nil, nil, nil
	}
	techs, err := h.techRepo.EnsureByNames(ctx, names, actor)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uuid.UUID, 0, len(techs))
	for _, t := range techs {
		ids = append(ids, t.ID)
	}
	return ids, techs, nil
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
