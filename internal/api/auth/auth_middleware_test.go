package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kristinefung/personal-website-sub000/config"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

type mockSessionChecker struct {
	mock.Mock
}

func (m *mockSessionChecker) IsSessionActive(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func signTestToken(t *testing.T, cfg config.JWTConfig, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := types.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
	assert.NoError(t, err)
	return signed
}

func TestAuthenticate(t *testing.T) {
	jwtCfg := config.JWTConfig{
		SecretKey:  "test-secret",
		Issuer:     "test-issuer",
		Audience:   "test-audience",
		SessionTTL: 3 * time.Hour,
	}
	logger := slog.Default()
	userID := uuid.New().String()

	nextCalled := false
	var gotUserID, gotToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		gotUserID, _ = GetUserIDFromContext(r.Context())
		gotToken, _ = GetSessionTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	newRequest := func(authHeader string) (*httptest.ResponseRecorder, *http.Request) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		if authHeader != "" {
			r.Header.Set("Authorization", authHeader)
		}
		return httptest.NewRecorder(), r
	}

	t.Run("Success", func(t *testing.T) {
		nextCalled = false
		sessions := new(mockSessionChecker)
		token := signTestToken(t, jwtCfg, userID, time.Now().Add(time.Hour))
		sessions.On("IsSessionActive", mock.Anything, token).Return(true, nil).Once()

		handler := Authenticate(logger, jwtCfg, sessions)(next)
		w, r := newRequest("Bearer " + token)
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, nextCalled)
		assert.Equal(t, userID, gotUserID)
		assert.Equal(t, token, gotToken)
		sessions.AssertExpectations(t)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		nextCalled = false
		sessions := new(mockSessionChecker)
		handler := Authenticate(logger, jwtCfg, sessions)(next)

		w, r := newRequest("")
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, nextCalled)
		sessions.AssertNotCalled(t, "IsSessionActive")
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		nextCalled = false
		sessions := new(mockSessionChecker)
		handler := Authenticate(logger, jwtCfg, sessions)(next)

		w, r := newRequest("Token abc")
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, nextCalled)
	})

	t.Run("BadSignature", func(t *testing.T) {
		nextCalled = false
		sessions := new(mockSessionChecker)
		otherCfg := jwtCfg
		otherCfg.SecretKey = "some-other-secret"
		token := signTestToken(t, otherCfg, userID, time.Now().Add(time.Hour))

		handler := Authenticate(logger, jwtCfg, sessions)(next)
		w, r := newRequest("Bearer " + token)
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, nextCalled)
		// A forged token never reaches the session store.
		sessions.AssertNotCalled(t, "IsSessionActive")
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		nextCalled = false
		sessions := new(mockSessionChecker)
		token := signTestToken(t, jwtCfg, userID, time.Now().Add(-time.Hour))

		handler := Authenticate(logger, jwtCfg, sessions)(next)
		w, r := newRequest("Bearer " + token)
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
		assert.False(t, nextCalled)
		// Expiry is embedded in the token, so even a lingering session
		// row cannot resurrect it.
		sessions.AssertNotCalled(t, "IsSessionActive")
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		nextCalled = false
		sessions := new(mockSessionChecker)
		otherCfg := jwtCfg
		otherCfg.Issuer = "someone-else"
		token := signTestToken(t, otherCfg, userID, time.Now().Add(time.Hour))

		handler := Authenticate(logger, jwtCfg, sessions)(next)
		w, r := newRequest("Bearer " + token)
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, nextCalled)
	})

	t.Run("RevokedSession", func(t *testing.T) {
		nextCalled = false
		sessions := new(mockSessionChecker)
		token := signTestToken(t, jwtCfg, userID, time.Now().Add(time.Hour))
		sessions.On("IsSessionActive", mock.Anything, token).Return(false, nil).Once()

		handler := Authenticate(logger, jwtCfg, sessions)(next)
		w, r := newRequest("Bearer " + token)
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "revoked")
		assert.False(t, nextCalled)
		sessions.AssertExpectations(t)
	})

	t.Run("SessionStoreError", func(t *testing.T) {
		nextCalled = false
		sessions := new(mockSessionChecker)
		token := signTestToken(t, jwtCfg, userID, time.Now().Add(time.Hour))
		sessions.On("IsSessionActive", mock.Anything, token).Return(false, errors.New("connection refused")).Once()

		handler := Authenticate(logger, jwtCfg, sessions)(next)
		w, r := newRequest("Bearer " + token)
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, nextCalled)
		sessions.AssertExpectations(t)
	})
}
