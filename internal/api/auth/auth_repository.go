package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/kristinefung/personal-website-sub000/app/db"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the contract for credential and session persistence.
type AuthRepo interface {
	// GetUserByEmail returns a non-deleted user by email.
	// Returns types.ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	// GetUserByID returns a non-deleted user by id.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// CreateSession persists a session row for an issued token.
	CreateSession(ctx context.Context, userID uuid.UUID, token string, loggedInAt, expiresAt time.Time) error

	// IsSessionActive reports whether a non-expired session row exists
	// for the token. Pure read, never mutates.
	IsSessionActive(ctx context.Context, token string) (bool, error)

	// DeleteSession removes the session row for the token (logout).
	DeleteSession(ctx context.Context, token string) error

	// DeleteAllUserSessions removes every session belonging to a user.
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpiredSessions removes rows whose expiry has elapsed and
	// returns how many were removed. Run by the maintenance sweeper.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresAuthRepo(db database.DB, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var user types.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
         FROM users
         WHERE email = $1 AND deleted_at IS NULL`,
		email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	var user types.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
         FROM users
         WHERE id = $1 AND deleted_at IS NULL`,
		userID).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching user by id: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &user, nil
}

func (r *PostgresAuthRepo) CreateSession(ctx context.Context, userID uuid.UUID, token string, loggedInAt, expiresAt time.Time) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateSession", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "user_sessions"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	_, err := r.db.Exec(ctx,
		`INSERT INTO user_sessions (user_id, session_token, logged_in_at, expires_at)
         VALUES ($1, $2, $3, $4)`,
		userID, token, loggedInAt, expiresAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to store session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return fmt.Errorf("store session: db insert failed: %w", err)
	}

	span.SetStatus(codes.Ok, "Session stored")
	return nil
}

func (r *PostgresAuthRepo) IsSessionActive(ctx context.Context, token string) (bool, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "IsSessionActive", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "user_sessions"),
	))
	defer span.End()

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
            SELECT 1 FROM user_sessions
            WHERE session_token = $1 AND expires_at > now()
         )`,
		token).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("session lookup: query failed: %w", err)
	}

	span.SetStatus(codes.Ok, "Session checked")
	return exists, nil
}

func (r *PostgresAuthRepo) DeleteSession(ctx context.Context, token string) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "DeleteSession", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "user_sessions"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx,
		`DELETE FROM user_sessions WHERE session_token = $1`, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("delete session: db delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Session already gone (swept or double logout); not an error
		// for the caller but worth a log line.
		r.logger.WarnContext(ctx, "Logout for unknown or already removed session")
	}

	span.SetStatus(codes.Ok, "Session deleted")
	return nil
}

func (r *PostgresAuthRepo) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "DeleteAllUserSessions", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "user_sessions"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx,
		`DELETE FROM user_sessions WHERE user_id = $1`, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return 0, fmt.Errorf("delete user sessions: db delete failed: %w", err)
	}

	span.SetStatus(codes.Ok, "Sessions deleted")
	return tag.RowsAffected(), nil
}

func (r *PostgresAuthRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "DeleteExpiredSessions", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "user_sessions"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx,
		`DELETE FROM user_sessions WHERE expires_at <= now()`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return 0, fmt.Errorf("sweep expired sessions: db delete failed: %w", err)
	}

	span.SetStatus(codes.Ok, "Expired sessions swept")
	return tag.RowsAffected(), nil
}
