package types

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrForbidden = errors.New("action forbidden")
var ErrBadRequest = errors.New("invalid input")

// ErrSessionRevoked marks a token whose signature still verifies but
// whose session row is gone from the store (logout or sweep).
var ErrSessionRevoked = errors.New("session revoked")

// Generic response for simple success/error messages
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Claims embedded in every session token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Audit carries the created/updated/deleted stamps shared by every
// content table. DeletedAt is the soft-delete marker: rows with a
// non-nil DeletedAt are excluded from default listings.
type Audit struct {
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy *uuid.UUID `json:"deleted_by,omitempty"`
}

type User struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
	Audit
}

type UserSession struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	SessionToken string    `json:"-"`
	LoggedInAt   time.Time `json:"logged_in_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type Technology struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Audit
}

type Profile struct {
	ID           uuid.UUID    `json:"id"`
	Greeting     string       `json:"greeting"`
	Nickname     string       `json:"nickname"`
	Slogan       string       `json:"slogan"`
	AboutMe      string       `json:"about_me"`
	Technologies []Technology `json:"technologies,omitempty"`
	Audit
}

type Project struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	GithubURL    *string      `json:"github_url,omitempty"`
	DemoURL      *string      `json:"demo_url,omitempty"`
	ImagePath    *string      `json:"image_path,omitempty"`
	SortOrder    int          `json:"sort_order"`
	Technologies []Technology `json:"technologies,omitempty"`
	Audit
}

type Journey struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	Audit
}

type Enquiry struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   *string   `json:"email,omitempty"`
	Phone   *string   `json:"phone,omitempty"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	Audit
}
