package image

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kristinefung/personal-website-sub000/internal/api"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

type UploadResponse struct {
	Path string `json:"path"`
}

type ImageHandler struct {
	store       *ImageStore
	logger      *slog.Logger
	maxUploadMB int64
}

func NewImageHandler(store *ImageStore, maxUploadMB int64, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		store:       store,
		logger:      logger,
		maxUploadMB: maxUploadMB,
	}
}

// Upload godoc
// @Summary      Upload image
// @Tags         Image
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Image file"
// @Success      201 {object} UploadResponse
// @Failure      400 {object} types.Response "Invalid Upload"
// @Security     BearerAuth
// @Router       /images/upload [post]
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Upload"))

	maxBytes := h.maxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	path, err := h.store.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid filename")
			return
		}
		l.ErrorContext(ctx, "Failed to store image", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to store image")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, UploadResponse{Path: path})
}

// Serve godoc
// @Summary      Serve image
// @Tags         Image
// @Produce      image/png
// @Param        path path string true "Image path"
// @Success      200 {file} binary
// @Failure      400 {object} types.Response "Path Escape"
// @Failure      404 {object} types.Response "Not Found"
// @Router       /images/{path} [get]
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Serve"))

	requested := chi.URLParam(r, "*")
	if requested == "" {
		api.ErrorResponse(w, r, http.StatusNotFound, "Image not found")
		return
	}

	f, err := h.store.Open(requested)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid image path")
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Image not found")
		default:
			l.ErrorContext(ctx, "Failed to open image", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to serve image")
		}
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", ContentType(requested))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		l.WarnContext(ctx, "Interrupted while serving image", slog.Any("error", err))
	}
}
