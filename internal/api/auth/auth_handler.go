package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/kristinefung/personal-website-sub000/app/observability/metrics"
	"github.com/kristinefung/personal-website-sub000/internal/api"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

// AuthHandler handles HTTP requests for authentication operations
type AuthHandler struct {
	authService AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary      Login
// @Description  Authenticates an admin user and returns a session token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "Login Credentials"
// @Success      200 {object} LoginResponse "Login Successful"
// @Failure      400 {object} LoginResponse "Missing Fields"
// @Failure      401 {object} LoginResponse "Invalid Credentials"
// @Failure      500 {object} LoginResponse "Internal Server Error"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.WriteJSONResponse(w, r, http.StatusBadRequest, LoginResponse{
			Success: false,
			Message: "Invalid request payload",
		})
		return
	}

	if req.Email == "" || req.Password == "" {
		api.WriteJSONResponse(w, r, http.StatusBadRequest, LoginResponse{
			Success: false,
			Message: "Email and password are required",
		})
		return
	}

	token, err := h.authService.Login(ctx, req.Email, req.Password)
	metrics.Get().LoginRequestsTotal.Add(ctx, 1)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			// Same body for unknown email and wrong password.
			api.WriteJSONResponse(w, r, http.StatusUnauthorized, LoginResponse{
				Success: false,
				Message: "Invalid email or password",
			})
			return
		}
		if errors.Is(err, types.ErrBadRequest) {
			api.WriteJSONResponse(w, r, http.StatusBadRequest, LoginResponse{
				Success: false,
				Message: "Email and password are required",
			})
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.WriteJSONResponse(w, r, http.StatusInternalServerError, LoginResponse{
			Success: false,
			Message: "Failed to login",
		})
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, LoginResponse{
		Success:      true,
		Message:      "Login successful",
		SessionToken: token,
	})
}

// Logout godoc
// @Summary      Logout
// @Description  Deletes the session for the presented bearer token.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.Response "Logged Out"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Logout"))

	token, ok := GetSessionTokenFromContext(ctx)
	if !ok || token == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.Logout(ctx, token); err != nil {
		l.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to logout")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Logged out successfully",
	})
}

// LogoutAll godoc
// @Summary      Logout everywhere
// @Description  Deletes every session belonging to the authenticated user.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.Response "Logged Out Everywhere"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "LogoutAll"))

	userID, err := requireUserID(ctx)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.LogoutAll(ctx, userID); err != nil {
		l.ErrorContext(ctx, "Logout-all failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to logout")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Logged out of all sessions",
	})
}

// Me godoc
// @Summary      Current user
// @Description  Returns the authenticated user's id, name and email.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} MeResponse "Current User"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Me"))

	userID, err := requireUserID(ctx)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get current user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, MeResponse{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
	})
}

// requireUserID pulls the authenticated user id out of the context set
// by the Authenticate middleware.
func requireUserID(ctx context.Context) (uuid.UUID, error) {
	userIDStr, ok := GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		return uuid.Nil, types.ErrUnauthenticated
	}
	return uuid.Parse(userIDStr)
}
