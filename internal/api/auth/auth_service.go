package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kristinefung/personal-website-sub000/config"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Login authenticates a user and returns a signed session token.
	// Empty email or password yields types.ErrBadRequest; an unknown
	// email and a wrong password both yield types.ErrUnauthenticated.
	Login(ctx context.Context, email, password string) (string, error)

	// Logout deletes the session row for the presented token.
	Logout(ctx context.Context, token string) error

	// LogoutAll deletes every session belonging to the user.
	LogoutAll(ctx context.Context, userID uuid.UUID) error

	// GetUserByID returns the user for /auth/me.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// IsSessionActive is the authoritative revocation check run by the
	// Authenticate middleware after the signature already verified.
	IsSessionActive(ctx context.Context, token string) (bool, error)

	// SweepExpiredSessions deletes all expired session rows.
	SweepExpiredSessions(ctx context.Context) (int64, error)
}

// AuthServiceImpl implements the AuthService interface
type AuthServiceImpl struct {
	logger *slog.Logger
	cfg    *config.Config
	repo   AuthRepo
}

// NewAuthService creates a new AuthService. It panics when the signing
// key is not configured: the process cannot serve logins without it.
func NewAuthService(repo AuthRepo, cfg *config.Config, logger *slog.Logger) *AuthServiceImpl {
	if cfg.JWT.SecretKey == "" {
		panic("JWT Secret Key cannot be empty")
	}
	return &AuthServiceImpl{
		logger: logger,
		cfg:    cfg,
		repo:   repo,
	}
}

// Login authenticates a user and returns a signed session token.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	l := s.logger.With(slog.String("method", "Login"))

	if email == "" || password == "" {
		return "", fmt.Errorf("email and password are required: %w", types.ErrBadRequest)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Indistinguishable from a wrong password so the response
			// cannot be used to enumerate accounts.
			l.WarnContext(ctx, "Login attempt for unknown email")
			return "", types.ErrUnauthenticated
		}
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		return "", fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		l.WarnContext(ctx, "Login attempt with wrong password", slog.String("userID", user.ID.String()))
		return "", types.ErrUnauthenticated
	}

	token, err := s.issueSessionToken(ctx, user.ID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue session token", slog.Any("error", err))
		return "", fmt.Errorf("login: %w", err)
	}

	l.InfoContext(ctx, "Login successful", slog.String("userID", user.ID.String()))
	return token, nil
}

// issueSessionToken signs an HS256 token with {user_id, iat, exp} and
// persists a session row carrying the same expiry.
func (s *AuthServiceImpl) issueSessionToken(ctx context.Context, userID uuid.UUID) (string, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWT.SessionTTL)

	claims := types.Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.cfg.JWT.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.JWT.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.repo.CreateSession(ctx, userID, signed, now, expiresAt); err != nil {
		return "", err
	}

	return signed, nil
}

// Logout deletes the session row for the presented token.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}

// LogoutAll deletes every session belonging to the user.
func (s *AuthServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	n, err := s.repo.DeleteAllUserSessions(ctx, userID)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Invalidated all user sessions",
		slog.String("userID", userID.String()), slog.Int64("count", n))
	return nil
}

// GetUserByID returns the user for /auth/me.
func (s *AuthServiceImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// IsSessionActive checks the session store for a matching, non-expired row.
func (s *AuthServiceImpl) IsSessionActive(ctx context.Context, token string) (bool, error) {
	return s.repo.IsSessionActive(ctx, token)
}

// SweepExpiredSessions deletes all expired session rows.
func (s *AuthServiceImpl) SweepExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx)
}
