package journey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
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

var _ JourneyRepo = (*PostgresJourneyRepo)(nil)

// CreateJourneyParams carries the fields accepted on journey creation.
type CreateJourneyParams struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
}

// UpdateJourneyParams carries optional fields for a partial update.
type UpdateJourneyParams struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Year        *int    `json:"year,omitempty"`
	Month       *int    `json:"month,omitempty"`
}

// JourneyRepo defines the contract for career journey persistence.
// Listings come back newest first (year desc, month desc).
type JourneyRepo interface {
	Create(ctx context.Context, params CreateJourneyParams, createdBy *uuid.UUID) (*types.Journey, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Journey, error)
	GetAll(ctx context.Context, includeDeleted bool) ([]types.Journey, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateJourneyParams, updatedBy uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type PostgresJourneyRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresJourneyRepo(db database.DB, logger *slog.Logger) *PostgresJourneyRepo {
	return &PostgresJourneyRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresJourneyRepo) Create(ctx context.Context, params CreateJourneyParams, createdBy *uuid.UUID) (*types.Journey, error) {
	ctx, span := otel.Tracer("JourneyRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "journeys"),
	))
	defer span.End()

	if params.Title == "" {
		return nil, fmt.Errorf("journey title is required: %w", types.ErrBadRequest)
	}
	if params.Month < 1 || params.Month > 12 {
		return nil, fmt.Errorf("journey month must be between 1 and 12: %w", types.ErrBadRequest)
	}

	var journey types.Journey
	err := r.db.QueryRow(ctx,
		`INSERT INTO journeys (title, description, year, month, created_by, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, now(), now())
         RETURNING id, title, description, year, month, created_at, updated_at`,
		params.Title, params.Description, params.Year, params.Month, createdBy,
	).Scan(&journey.ID, &journey.Title, &journey.Description, &journey.Year,
		&journey.Month, &journey.CreatedAt, &journey.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert journey", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating journey: %w", err)
	}

	span.SetStatus(codes.Ok, "Journey created")
	return &journey, nil
}

func (r *PostgresJourneyRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Journey, error) {
	ctx, span := otel.Tracer("JourneyRepo").Start(ctx, "GetByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "journeys"),
	))
	defer span.End()

	var journey types.Journey
	err := r.db.QueryRow(ctx,
		`SELECT id, title, description, year, month, created_at, updated_at
         FROM journeys
         WHERE id = $1 AND deleted_at IS NULL`,
		id).Scan(&journey.ID, &journey.Title, &journey.Description, &journey.Year,
		&journey.Month, &journey.CreatedAt, &journey.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching journey: %w", err)
	}

	span.SetStatus(codes.Ok, "Journey fetched")
	return &journey, nil
}

func (r *PostgresJourneyRepo) GetAll(ctx context.Context, includeDeleted bool) ([]types.Journey, error) {
	ctx, span := otel.Tracer("JourneyRepo").Start(ctx, "GetAll", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "journeys"),
	))
	defer span.End()

	query := `SELECT id, title, description, year, month, created_at, updated_at, deleted_at
              FROM journeys`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY year DESC, month DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching journeys: %w", err)
	}
	defer rows.Close()

	var journeys []types.Journey
	for rows.Next() {
		var j types.Journey
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.Year, &j.Month,
			&j.CreatedAt, &j.UpdatedAt, &j.DeletedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning journey: %w", err)
		}
		journeys = append(journeys, j)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading journeys: %w", err)
	}

	span.SetStatus(codes.Ok, "Journeys fetched")
	return journeys, nil
}

func (r *PostgresJourneyRepo) Update(ctx context.Context, id uuid.UUID, params UpdateJourneyParams, updatedBy uuid.UUID) error {
	ctx, span := otel.Tracer("JourneyRepo").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "journeys"),
	))
	defer span.End()

	if params.Month != nil && (*params.Month < 1 || *params.Month > 12) {
		return fmt.Errorf("journey month must be between 1 and 12: %w", types.ErrBadRequest)
	}

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *params.Title)
		argID++
	}
	if params.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *params.Description)
		argID++
	}
	if params.Year != nil {
		setClauses = append(setClauses, fmt.Sprintf("year = $%d", argID))
		args = append(args, *params.Year)
		argID++
	}
	if params.Month != nil {
		setClauses = append(setClauses, fmt.Sprintf("month = $%d", argID))
		args = append(args, *params.Month)
		argID++
	}

	if len(setClauses) == 0 {
		return fmt.Errorf("no fields to update: %w", types.ErrBadRequest)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_by = $%d", argID))
	args = append(args, updatedBy)
	argID++
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, id)
	query := fmt.Sprintf("UPDATE journeys SET %s WHERE id = $%d AND deleted_at IS NULL",
		strings.Join(setClauses, ", "), argID)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute update query", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating journey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Journey updated")
	return nil
}

func (r *PostgresJourneyRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	ctx, span := otel.Tracer("JourneyRepo").Start(ctx, "SoftDelete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "journeys"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx,
		`UPDATE journeys SET deleted_at = now(), deleted_by = $1
         WHERE id = $2 AND deleted_at IS NULL`,
		deletedBy, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error soft-deleting journey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Journey soft-deleted")
	return nil
}

func (r *PostgresJourneyRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("JourneyRepo").Start(ctx, "HardDelete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "journeys"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM journeys WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting journey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Journey deleted")
	return nil
}
