package project

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

type ProjectHandler struct {
	service ProjectService
	logger  *slog.Logger
}

func NewProjectHandler(service ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		logger:  logger,
	}
}

// GetAll godoc
// @Summary      List projects
// @Description  Returns projects ordered by sort order, newest first
//
//	within a tie. Pass includeDeleted=true (admin only) to
//	include soft-deleted rows.
//
// @Tags         Project
// @Produce      json
// @Param        includeDeleted query bool false "Include soft-deleted projects"
// @Success      200 {array} types.Project
// @Router       /projects [get]
func (h *ProjectHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetAll"))

	includeDeleted := r.URL.Query().Get("includeDeleted") == "true"
	if includeDeleted {
		if _, ok := auth.GetUserIDFromContext(ctx); !ok {
			includeDeleted = false
		}
	}

	projects, err := h.service.GetAll(ctx, includeDeleted)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list projects", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve projects")
		return
	}
	if projects == nil {
		projects = []types.Project{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, projects)
}

// GetByID godoc
// @Summary      Get project
// @Tags         Project
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} types.Project
// @Failure      404 {object} types.Response "Not Found"
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetByID"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := h.service.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Project not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch project", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve project")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, project)
}

// Create godoc
// @Summary      Create project
// @Tags         Project
// @Accept       json
// @Produce      json
// @Param        project body CreateProjectParams true "Project"
// @Success      201 {object} types.Project
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      409 {object} types.Response "Duplicate Name"
// @Security     BearerAuth
// @Router       /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Create"))

	var params CreateProjectParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.service.Create(ctx, params, actorID(r))
	if err != nil {
		switch {
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Project name is required")
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Project name already exists")
		default:
			l.ErrorContext(ctx, "Failed to create project", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create project")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, project)
}

// Update godoc
// @Summary      Update project
// @Description  Partial update; only the provided fields change. A
//
//	technologies list replaces the whole mapping set.
//
// @Tags         Project
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        project body UpdateProjectParams true "Fields to update"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /projects/{id} [patch]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Update"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var params UpdateProjectParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	actor := actorID(r)
	if actor == nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.Update(ctx, id, params, *actor); err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Project not found")
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Project name already exists")
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, "No valid fields to update")
		default:
			l.ErrorContext(ctx, "Failed to update project", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update project")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Project updated"})
}

// Delete godoc
// @Summary      Soft-delete project
// @Tags         Project
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Delete"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	actor := actorID(r)
	if actor == nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.Delete(ctx, id, *actor); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Project not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete project", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete project")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Project deleted"})
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
