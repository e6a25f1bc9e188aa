package profile

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

var _ ProfileRepo = (*PostgresProfileRepo)(nil)

// ProfileRepo defines the contract for profile persistence.
type ProfileRepo interface {
	// Create inserts a profile and its technology mappings in one
	// transaction.
	Create(ctx context.Context, params CreateProfileParams, techIDs []uuid.UUID, createdBy *uuid.UUID) (*types.Profile, error)

	GetByID(ctx context.Context, id uuid.UUID) (*types.Profile, error)
	GetAll(ctx context.Context, includeDeleted bool) ([]types.Profile, error)

	Update(ctx context.Context, id uuid.UUID, params UpdateProfileParams, updatedBy uuid.UUID) error

	// ReplaceTechnologies swaps the whole mapping set inside one
	// transaction.
	ReplaceTechnologies(ctx context.Context, profileID uuid.UUID, techIDs []uuid.UUID) error

	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type PostgresProfileRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresProfileRepo(db database.DB, logger *slog.Logger) *PostgresProfileRepo {
	return &PostgresProfileRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresProfileRepo) Create(ctx context.Context, params CreateProfileParams, techIDs []uuid.UUID, createdBy *uuid.UUID) (*types.Profile, error) {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "profiles"),
	))
	defer span.End()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var profile types.Profile
	err = tx.QueryRow(ctx,
		`INSERT INTO profiles (greeting, nickname, slogan, about_me, created_by, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, now(), now())
         RETURNING id, greeting, nickname, slogan, about_me, created_at, updated_at`,
		params.Greeting, params.Nickname, params.Slogan, params.AboutMe, createdBy,
	).Scan(&profile.ID, &profile.Greeting, &profile.Nickname, &profile.Slogan,
		&profile.AboutMe, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating profile: %w", err)
	}

	for _, techID := range techIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO profile_technologies (profile_id, technology_id) VALUES ($1, $2)`,
			profile.ID, techID); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error mapping profile technology: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error committing profile: %w", err)
	}

	span.SetStatus(codes.Ok, "Profile created")
	return &profile, nil
}

func (r *PostgresProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Profile, error) {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "GetByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "profiles"),
	))
	defer span.End()

	var profile types.Profile
	err := r.db.QueryRow(ctx,
		`SELECT id, greeting, nickname, slogan, about_me, created_at, updated_at
         FROM profiles
         WHERE id = $1 AND deleted_at IS NULL`,
		id).Scan(&profile.ID, &profile.Greeting, &profile.Nickname, &profile.Slogan,
		&profile.AboutMe, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching profile: %w", err)
	}

	techs, err := r.technologiesFor(ctx, profile.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	profile.Technologies = techs

	span.SetStatus(codes.Ok, "Profile fetched")
	return &profile, nil
}

func (r *PostgresProfileRepo) GetAll(ctx context.Context, includeDeleted bool) ([]types.Profile, error) {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "GetAll", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "profiles"),
	))
	defer span.End()

	query := `SELECT id, greeting, nickname, slogan, about_me, created_at, updated_at, deleted_at
              FROM profiles`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching profiles: %w", err)
	}
	defer rows.Close()

	var profiles []types.Profile
	for rows.Next() {
		var p types.Profile
		if err := rows.Scan(&p.ID, &p.Greeting, &p.Nickname, &p.Slogan, &p.AboutMe,
			&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading profiles: %w", err)
	}

	for i := range profiles {
		techs, err := r.technologiesFor(ctx, profiles[i].ID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		profiles[i].Technologies = techs
	}

	span.SetStatus(codes.Ok, "Profiles fetched")
	return profiles, nil
}

func (r *PostgresProfileRepo) technologiesFor(ctx context.Context, profileID uuid.UUID) ([]types.Technology, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.name, t.created_at, t.updated_at
         FROM technologies t
         JOIN profile_technologies pt ON t.id = pt.technology_id
         WHERE pt.profile_id = $1 AND t.deleted_at IS NULL
         ORDER BY t.name`,
		profileID)
	if err != nil {
		return nil, fmt.Errorf("database error fetching profile technologies: %w", err)
	}
	defer rows.Close()

	var techs []types.Technology
	for rows.Next() {
		var t types.Technology
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning profile technology: %w", err)
		}
		techs = append(techs, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("database error reading profile technologies: %w", err)
	}
	return techs, nil
}

func (r *PostgresProfileRepo) Update(ctx context.Context, id uuid.UUID, params UpdateProfileParams, updatedBy uuid.UUID) error {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "profiles"),
	))
	defer span.End()

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Greeting != nil {
		setClauses = append(setClauses, fmt.Sprintf("greeting = $%d", argID))
		args = append(args, *params.Greeting)
		argID++
	}
	if params.Nickname != nil {
		setClauses = append(setClauses, fmt.Sprintf("nickname = $%d", argID))
		args = append(args, *params.Nickname)
		argID++
	}
	if params.Slogan != nil {
		setClauses = append(setClauses, fmt.Sprintf("slogan = $%d", argID))
		args = append(args, *params.Slogan)
		argID++
	}
	if params.AboutMe != nil {
		setClauses = append(setClauses, fmt.Sprintf("about_me = $%d", argID))
		args = append(args, *params.AboutMe)
		argID++
	}

	if len(setClauses) == 0 {
		span.SetStatus(codes.Ok, "No update fields provided")
		return nil
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_by = $%d", argID))
	args = append(args, updatedBy)
	argID++
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, id)
	query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = $%d AND deleted_at IS NULL",
		strings.Join(setClauses, ", "), argID)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute update query", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Profile updated")
	return nil
}

func (r *PostgresProfileRepo) ReplaceTechnologies(ctx context.Context, profileID uuid.UUID, techIDs []uuid.UUID) error {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "ReplaceTechnologies", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "profile_technologies"),
		attribute.Int("technology.count", len(techIDs)),
	))
	defer span.End()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM profile_technologies WHERE profile_id = $1`, profileID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error clearing profile technologies: %w", err)
	}

	for _, techID := range techIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO profile_technologies (profile_id, technology_id) VALUES ($1, $2)`,
			profileID, techID); err != nil {
			span.RecordError(err)
			return fmt.Errorf("database error inserting profile technology: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error committing technology replacement: %w", err)
	}

	span.SetStatus(codes.Ok, "Technologies replaced")
	return nil
}

func (r *PostgresProfileRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "SoftDelete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "profiles"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET deleted_at = now(), deleted_by = $1
         WHERE id = $2 AND deleted_at IS NULL`,
		deletedBy, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error soft-deleting profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Profile soft-deleted")
	return nil
}

func (r *PostgresProfileRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "HardDelete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "profiles"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Profile deleted")
	return nil
}
