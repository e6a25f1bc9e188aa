package technology

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/kristinefung/personal-website-sub000/app/db"
	"github.com/kristinefung/personal-website-sub000/internal/types"
)

var _ TechnologyRepo = (*PostgresTechnologyRepo)(nil)

// TechnologyRepo defines the contract for technology tag persistence.
// Names are unique case-insensitively among non-deleted rows.
type TechnologyRepo interface {
	// Create inserts a technology. Returns types.ErrConflict when a
	// non-deleted row with the same name (any casing) exists.
	Create(ctx context.Context, name string, createdBy *uuid.UUID) (*types.Technology, error)

	GetByID(ctx context.Context, id uuid.UUID) (*types.Technology, error)
	GetAll(ctx context.Context, includeDeleted bool) ([]types.Technology, error)
	Update(ctx context.Context, id uuid.UUID, name string, updatedBy uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error

	// EnsureByNames resolves a list of names to technology rows,
	// creating the missing ones. Lookup is case-insensitive and the
	// input list is de-duplicated, so repeated or re-cased names map
	// to a single row.
	EnsureByNames(ctx context.Context, names []string, createdBy *uuid.UUID) ([]types.Technology, error)
}

type PostgresTechnologyRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresTechnologyRepo(db database.DB, logger *slog.Logger) *PostgresTechnologyRepo {
	return &PostgresTechnologyRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresTechnologyRepo) Create(ctx context.Context, name string, createdBy *uuid.UUID) (*types.Technology, error) {
	ctx, span := otel.Tracer("TechnologyRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "technologies"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Create"), slog.String("name", name))

	name = strings.TrimSpace(name)
	if name == "" {
		span.SetStatus(codes.Error, "Technology name cannot be empty")
		return nil, fmt.Errorf("technology name cannot be empty: %w", types.ErrBadRequest)
	}

	var tech types.Technology
	query := `
        INSERT INTO technologies (name, created_by, created_at, updated_at)
        VALUES ($1, $2, now(), now())
        RETURNING id, name, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, name, createdBy).Scan(
		&tech.ID, &tech.Name, &tech.CreatedAt, &tech.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			l.WarnContext(ctx, "Attempted to create technology with duplicate name", slog.Any("error", err))
			span.SetStatus(codes.Error, "Duplicate technology name")
			return nil, fmt.Errorf("technology %q already exists: %w", name, types.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert technology", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating technology: %w", err)
	}

	span.SetStatus(codes.Ok, "Technology created")
	return &tech, nil
}

func (r *PostgresTechnologyRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Technology, error) {
	ctx, span := otel.Tracer("TechnologyRepo").Start(ctx, "GetByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "technologies"),
	))
	defer span.End()

	var tech types.Technology
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at
         FROM technologies
         WHERE id = $1 AND deleted_at IS NULL`,
		id).Scan(&tech.ID, &tech.Name, &tech.CreatedAt, &tech.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching technology: %w", err)
	}

	span.SetStatus(codes.Ok, "Technology fetched")
	return &tech, nil
}

func (r *PostgresTechnologyRepo) GetAll(ctx context.Context, includeDeleted bool) ([]types.Technology, error) {
	ctx, span := otel.Tracer("TechnologyRepo").Start(ctx, "GetAll", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "technologies"),
	))
	defer span.End()

	query := `SELECT id, name, created_at, updated_at, deleted_at FROM technologies`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching technologies: %w", err)
	}
	defer rows.Close()

	var techs []types.Technology
	for rows.Next() {
		var t types.Technology
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning technology: %w", err)
		}
		techs = append(techs, t)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading technologies: %w", err)
	}

	span.SetStatus(codes.Ok, "Technologies fetched")
	return techs, nil
}

func (r *PostgresTechnologyRepo) Update(ctx context.Context, id uuid.UUID, name string, updatedBy uuid.UUID) error {
	ctx, span := otel.Tracer("TechnologyRepo").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "technologies"),
	))
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("technology name cannot be empty: %w", types.ErrBadRequest)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE technologies SET name = $1, updated_by = $2, updated_at = now()
         WHERE id = $3 AND deleted_at IS NULL`,
		name, updatedBy, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("technology %q already exists: %w", name, types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating technology: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Technology updated")
	return nil
}

func (r *PostgresTechnologyRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	ctx, span := otel.Tracer("TechnologyRepo").Start(ctx, "SoftDelete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "technologies"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx,
		`UPDATE technologies SET deleted_at = now(), deleted_by = $1
         WHERE id = $2 AND deleted_at IS NULL`,
		deletedBy, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error soft-deleting technology: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Technology soft-deleted")
	return nil
}

func (r *PostgresTechnologyRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("TechnologyRepo").Start(ctx, "HardDelete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "technologies"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM technologies WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting technology: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Technology deleted")
	return nil
}

func (r *PostgresTechnologyRepo) EnsureByNames(ctx context.Context, names []string, createdBy *uuid.UUID) ([]types.Technology, error) {
	ctx, span := otel.Tracer("TechnologyRepo").Start(ctx, "EnsureByNames", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "technologies"),
		attribute.Int("technology.count", len(names)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "EnsureByNames"))

	// De-duplicate input case-insensitively, keeping first spelling.
	seen := make(map[string]struct{}, len(names))
	var unique []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, n)
	}

	techs := make([]types.Technology, 0, len(unique))
	for _, name := range unique {
		var tech types.Technology
		err := r.db.QueryRow(ctx,
			`SELECT id, name, created_at, updated_at
             FROM technologies
             WHERE LOWER(name) = LOWER($1) AND deleted_at IS NULL`,
			name).Scan(&tech.ID, &tech.Name, &tech.CreatedAt, &tech.UpdatedAt)
		if err == nil {
			techs = append(techs, tech)
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(err)
			return nil, fmt.Errorf("database error resolving technology %q: %w", name, err)
		}

		created, err := r.Create(ctx, name, createdBy)
		if err != nil {
			// Lost a race with a concurrent insert; re-read the winner.
			if errors.Is(err, types.ErrConflict) {
				err = r.db.QueryRow(ctx,
					`SELECT id, name, created_at, updated_at
                     FROM technologies
                     WHERE LOWER(name) = LOWER($1) AND deleted_at IS NULL`,
					name).Scan(&tech.ID, &tech.Name, &tech.CreatedAt, &tech.UpdatedAt)
				if err == nil {
					techs = append(techs, tech)
					continue
				}
			}
			l.ErrorContext(ctx, "Failed to ensure technology", slog.String("name", name), slog.Any("error", err))
			return nil, err
		}
		techs = append(techs, *created)
	}

	span.SetStatus(codes.Ok, "Technologies ensured")
	return techs, nil
}
