package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kristinefung/personal-website-sub000/app/observability/metrics"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

// MockAuthService is a mock implementation of the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthService) IsSessionActive(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestLoginHandler(t *testing.T) {
	metrics.InitAppMetrics()
	logger := slog.Default()

	postLogin := func(body []byte) (*httptest.ResponseRecorder, *http.Request) {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		return httptest.NewRecorder(), r
	}

	t.Run("Success", func(t *testing.T) {
		service := new(MockAuthService)
		handler := NewAuthHandler(service, logger)
		service.On("Login", mock.Anything, "admin@example.com", "password123").
			Return("signed.jwt.token", nil).Once()

		body, _ := json.Marshal(LoginRequest{Email: "admin@example.com", Password: "password123"})
		w, r := postLogin(body)
		handler.Login(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp LoginResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "signed.jwt.token", resp.SessionToken)
		service.AssertExpectations(t)
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		service := new(MockAuthService)
		handler := NewAuthHandler(service, logger)

		w, r := postLogin([]byte(`{"email": `))
		handler.Login(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		service.AssertNotCalled(t, "Login")
	})

	t.Run("MissingFields", func(t *testing.T) {
		service := new(MockAuthService)
		handler := NewAuthHandler(service, logger)

		body, _ := json.Marshal(LoginRequest{Email: "admin@example.com"})
		w, r := postLogin(body)
		handler.Login(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		service.AssertNotCalled(t, "Login")
	})

	t.Run("BadCredentials", func(t *testing.T) {
		service := new(MockAuthService)
		handler := NewAuthHandler(service, logger)
		service.On("Login", mock.Anything, "admin@example.com", "wrong").
			Return("", types.ErrUnauthenticated).Once()

		body, _ := json.Marshal(LoginRequest{Email: "admin@example.com", Password: "wrong"})
		w, r := postLogin(body)
		handler.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp LoginResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid email or password", resp.Message)
		assert.Empty(t, resp.SessionToken)
		service.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		service := new(MockAuthService)
		handler := NewAuthHandler(service, logger)
		service.On("Login", mock.Anything, "admin@example.com", "password123").
			Return("", errors.New("connection refused")).Once()

		body, _ := json.Marshal(LoginRequest{Email: "admin@example.com", Password: "password123"})
		w, r := postLogin(body)
		handler.Login(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		// Internal detail must not leak to the client.
		assert.NotContains(t, w.Body.String(), "connection refused")
		service.AssertExpectations(t)
	})
}

func TestLogoutHandler(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		service := new(MockAuthService)
		handler := NewAuthHandler(service, logger)
		service.On("Logout", mock.Anything, "the-token").Return(nil).Once()

		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		ctx := context.WithValue(r.Context(), SessionTokenKey, "the-token")
		w := httptest.NewRecorder()
		handler.Logout(w, r.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("NoToken", func(t *testing.T) {
		service := new(MockAuthService)
		handler := NewAuthHandler(service, logger)

		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		w := httptest.NewRecorder()
		handler.Logout(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		service.AssertNotCalled(t, "Logout")
	})
}

func TestLogoutAllHandler(t *testing.T) {
	logger := slog.Default()
	userID := uuid.New()

	service := new(MockAuthService)
	handler := NewAuthHandler(service, logger)
	service.On("LogoutAll", mock.Anything, userID).Return(nil).Once()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout-all", nil)
	ctx := context.WithValue(r.Context(), UserIDKey, userID.String())
	w := httptest.NewRecorder()
	handler.LogoutAll(w, r.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestMeHandler(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		service := new(MockAuthService)
		handler := NewAuthHandler(service, logger)
		userID := uuid.New()
		service.On("GetUserByID", mock.Anything, userID).Return(&types.User{
			ID:    userID,
			Name:  "Admin",
			Email: "admin@example.com",
		}, nil).Once()

		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		ctx := context.WithValue(r.Context(), UserIDKey, userID.String())
		w := httptest.NewRecorder()
		handler.Me(w, r.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp MeResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, userID.String(), resp.ID)
		assert.Equal(t, "admin@example.com", resp.Email)
		service.AssertExpectations(t)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		service := new(MockAuthService)
		handler := NewAuthHandler(service, logger)

		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		w := httptest.NewRecorder()
		handler.Me(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		service.AssertNotCalled(t, "GetUserByID")
	})
}
